// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rules is the board state oracle: a pure function from a position and a
candidate move to the resulting position, backed by github.com/corentings/chess.

Positions are FEN strings and moves are square pairs with an optional promotion
piece. The oracle keeps no state between calls; every call rebuilds a game
from the FEN it is given.

Because only the FEN is known, draws that depend on history (threefold
repetition) are not detected. Checkmate, stalemate, insufficient material
and the fifty-move rule (halfmove clock of 100) are.
*/
package rules

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/taibuivan/checkmate/internal/platform/constants"
)

// StartingFEN is the standard initial position.
const StartingFEN = constants.StartingFEN

const (
	// FiftyMoveHalfMoves is the halfmove clock at which the game is drawn.
	FiftyMoveHalfMoves = 100

	// DrawOutcome is the result string of a drawn game.
	DrawOutcome = "1/2-1/2"
)

var (
	// ErrIllegalMove is returned when the move is not legal in the position.
	ErrIllegalMove = errors.New("rules: illegal move")

	// ErrInvalidPosition is returned when the position cannot be parsed.
	ErrInvalidPosition = errors.New("rules: invalid position")

	// ErrNoLegalMoves is returned by [Oracle.RandomMove] on a finished position.
	ErrNoLegalMoves = errors.New("rules: no legal moves")
)

// # Types

// Color is a side of the board.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Valid reports whether c is White or Black.
func (c Color) Valid() bool { return c == White || c == Black }

// Move is a candidate move in coordinate form ("e2" to "e4", promotion "q").
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// UCI renders the move in UCI long algebraic form, e.g. "e7e8q".
func (m Move) UCI() string {
	return strings.ToLower(m.From + m.To + m.Promotion)
}

// Result is the outcome of applying a move.
type Result struct {
	// Position is the FEN after the move.
	Position string
	// Move is the move as the engine accepted it (promotion filled in).
	Move Move
	// Mover is the side that made the move.
	Mover Color
	// GameOver reports whether the new position ends the game.
	GameOver bool
	// Outcome is "1-0", "0-1", "1/2-1/2" or "*".
	Outcome string
	// Method names how the game ended (e.g. "Checkmate"), empty while in play.
	Method string
}

// # Oracle

// Oracle validates and applies moves. The zero value is ready to use.
type Oracle struct{}

// NewOracle returns an Oracle.
func NewOracle() *Oracle { return &Oracle{} }

// Apply plays move on position and returns the new position.
//
// A pawn move to the last rank without a promotion piece promotes to a queen.
func (oracle *Oracle) Apply(position string, move Move) (Result, error) {
	if !validSquare(move.From) || !validSquare(move.To) {
		return Result{}, fmt.Errorf("%w: malformed squares %q-%q", ErrIllegalMove, move.From, move.To)
	}
	if move.Promotion != "" && (len(move.Promotion) != 1 || !strings.Contains("qrbn", strings.ToLower(move.Promotion))) {
		return Result{}, fmt.Errorf("%w: unknown promotion piece %q", ErrIllegalMove, move.Promotion)
	}

	game, err := load(position)
	if err != nil {
		return Result{}, err
	}
	if evaluate(game).GameOver {
		return Result{}, fmt.Errorf("%w: the game is over", ErrIllegalMove)
	}
	mover := colorOf(game.Position().Turn())

	// ── 1. Try the move as given ──
	applied, err := play(game, move)
	if err != nil && move.Promotion == "" && isLastRank(move.To) {
		// ── 2. Bare promotion defaults to a queen ──
		move.Promotion = "q"
		applied, err = play(game, move)
	}
	if err != nil {
		return Result{}, err
	}

	result := evaluate(game)
	result.Move = applied
	result.Mover = mover
	return result, nil
}

// Turn returns the side to move in position.
func (oracle *Oracle) Turn(position string) (Color, error) {
	game, err := load(position)
	if err != nil {
		return "", err
	}
	return colorOf(game.Position().Turn()), nil
}

// Evaluate reports whether position is terminal without applying a move.
func (oracle *Oracle) Evaluate(position string) (Result, error) {
	game, err := load(position)
	if err != nil {
		return Result{}, err
	}
	return evaluate(game), nil
}

// RandomMove picks a uniformly random legal move for the side to move.
func (oracle *Oracle) RandomMove(position string) (Move, error) {
	game, err := load(position)
	if err != nil {
		return Move{}, err
	}

	candidates := game.ValidMoves()
	if len(candidates) == 0 || evaluate(game).GameOver {
		return Move{}, ErrNoLegalMoves
	}

	picked := movePointer(candidates[rand.IntN(len(candidates))])
	if picked == nil {
		return Move{}, ErrNoLegalMoves
	}
	return parseUCI(chess.UCINotation{}.Encode(game.Position(), picked)), nil
}

// # Helpers

func load(position string) (*chess.Game, error) {
	option, err := chess.FEN(position)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return chess.NewGame(option), nil
}

// play applies move only if it is one of the position's legal moves. The
// notation decoder and Game.Move accept any well-formed square pair.
func play(game *chess.Game, move Move) (Move, error) {
	uci := move.UCI()
	position := game.Position()

	for _, candidate := range game.ValidMoves() {
		legal := movePointer(candidate)
		if legal == nil || (chess.UCINotation{}).Encode(position, legal) != uci {
			continue
		}
		if err := game.Move(legal, nil); err != nil {
			return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
		}
		return parseUCI(uci), nil
	}
	return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
}

func evaluate(game *chess.Game) Result {
	result := Result{
		Position: game.Position().String(),
		Outcome:  game.Outcome().String(),
	}

	if game.Outcome() != chess.NoOutcome {
		result.GameOver = true
		result.Method = game.Method().String()
		return result
	}

	// A position loaded from FEN may not carry its outcome yet
	if len(game.ValidMoves()) == 0 {
		result.GameOver = true
		result.Method = "NoLegalMoves"
		return result
	}

	if halfMoveClock(result.Position) >= FiftyMoveHalfMoves {
		result.GameOver = true
		result.Outcome = DrawOutcome
		result.Method = "FiftyMoveRule"
	}
	return result
}

// halfMoveClock reads the fifth FEN field; malformed clocks count as zero.
func halfMoveClock(position string) int {
	fields := strings.Fields(position)
	if len(fields) < 5 {
		return 0
	}
	clock, err := strconv.Atoi(fields[4])
	if err != nil {
		return 0
	}
	return clock
}

// movePointer normalises an element of ValidMoves to *chess.Move.
func movePointer(candidate any) *chess.Move {
	switch move := candidate.(type) {
	case *chess.Move:
		return move
	case chess.Move:
		return &move
	}
	return nil
}

func parseUCI(uci string) Move {
	move := Move{From: uci[:2], To: uci[2:4]}
	if len(uci) > 4 {
		move.Promotion = uci[4:]
	}
	return move
}

func colorOf(color chess.Color) Color {
	if color == chess.Black {
		return Black
	}
	return White
}

func validSquare(square string) bool {
	if len(square) != 2 {
		return false
	}
	file, rank := square[0]|0x20, square[1]
	return file >= 'a' && file <= 'h' && rank >= '1' && rank <= '8'
}

func isLastRank(square string) bool {
	return len(square) == 2 && (square[1] == '1' || square[1] == '8')
}
