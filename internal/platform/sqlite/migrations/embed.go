// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migrations embeds the SQLite schema.
package migrations

import "embed"

// FS contains the embedded SQLite migrations, applied in file-name order.
//
//go:embed *.sql
var FS embed.FS
