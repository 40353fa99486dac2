// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns shared by the PostgreSQL and
// SQLite repositories, so both backends build their SQL from one definition.
package schema

import (
	"strconv"
	"strings"
)

// List joins column names for SELECT and INSERT clauses.
func List(columns ...string) string {
	return strings.Join(columns, ", ")
}

// Placeholders returns count "?" markers separated by commas.
func Placeholders(count int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

// Rebind rewrites "?" markers as PostgreSQL ordinal parameters. Statements are
// written once with "?" and run as-is on SQLite.
func Rebind(query string) string {
	var builder strings.Builder
	builder.Grow(len(query) + 16)

	ordinal := 0
	for _, char := range query {
		if char == '?' {
			ordinal++
			builder.WriteByte('$')
			builder.WriteString(strconv.Itoa(ordinal))
			continue
		}
		builder.WriteRune(char)
	}
	return builder.String()
}
