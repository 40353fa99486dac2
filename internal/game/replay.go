// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"errors"
	"fmt"

	"github.com/taibuivan/checkmate/internal/rules"
)

// ErrReplayDiverged is returned by [Replay] when the stored log does not
// match what the rules produce.
var ErrReplayDiverged = errors.New("game: move log diverges from replay")

// Replay re-applies moves from the starting position and checks every stored
// field against the oracle. It returns the final position.
//
// Moves must be in ascending move-number order, as [Service.GetGame] returns them.
func Replay(oracle Oracle, moves []*Move) (string, error) {
	position := rules.StartingFEN

	for index, move := range moves {
		expected := index + 1
		if move.Number != expected {
			return "", fmt.Errorf("%w: move %d numbered %d", ErrReplayDiverged, expected, move.Number)
		}

		turn, err := oracle.Turn(position)
		if err != nil {
			return "", fmt.Errorf("%w: move %d: %v", ErrReplayDiverged, expected, err)
		}
		if move.PlayerColor != turn {
			return "", fmt.Errorf("%w: move %d played by %s, expected %s", ErrReplayDiverged, expected, move.PlayerColor, turn)
		}

		candidate := rules.Move{From: move.From, To: move.To}
		if move.Promotion != nil {
			candidate.Promotion = *move.Promotion
		}

		result, err := oracle.Apply(position, candidate)
		if err != nil {
			return "", fmt.Errorf("%w: move %d %s: %v", ErrReplayDiverged, expected, candidate.UCI(), err)
		}
		if result.Position != move.FenAfter {
			return "", fmt.Errorf("%w: move %d position %q, stored %q", ErrReplayDiverged, expected, result.Position, move.FenAfter)
		}

		position = result.Position
	}

	return position, nil
}
