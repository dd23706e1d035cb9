// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/jingweichess/jingwei/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode returns a new position from a FEN description.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (board.Position, error) {
	// A FEN record contains six fields. The separator between fields is a
	// space. The fields are:

	parts := strings.Split(strings.TrimSpace(fen), " ")
	if len(parts) != 6 {
		return board.Position{}, fmt.Errorf("invalid number of sections in FEN: '%v'", fen)
	}

	// (1) Piece placement (from white's perspective). Each rank is described,
	// starting with rank 8 and ending with rank 1; within each rank, the
	// contents of each square are described from file a through file h.

	var pieces []board.Placement

	sq := board.A8
	for _, r := range parts[0] {
		switch {
		case r == '/':
			// "/" separates ranks. Cosmetic.

		case unicode.IsDigit(r):
			// Blank squares are noted using digits 1 through 8.

			sq += board.Square(r - '0')

		case unicode.IsLetter(r):
			// White pieces are designated using upper-case letters ("PNBRQK")
			// while Black take lowercase ("pnbrqk").

			color, piece, ok := parsePiece(r)
			if !ok {
				return board.Position{}, fmt.Errorf("invalid piece '%v' in FEN: '%v'", string(r), fen)
			}
			pieces = append(pieces, board.Placement{Square: sq, Color: color, Piece: piece})
			sq++

		default:
			return board.Position{}, fmt.Errorf("invalid character in FEN: '%v'", fen)
		}
	}
	if sq != board.NumSquares {
		return board.Position{}, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
	}

	// (2) Active color. "w" means white moves next, "b" means black.

	active, ok := parseColor(parts[1])
	if !ok {
		return board.Position{}, fmt.Errorf("invalid active color in FEN: '%v'", fen)
	}

	// (3) Castling availability. "-" or one or more of "KQkq".

	castling, ok := parseCastling(parts[2])
	if !ok {
		return board.Position{}, fmt.Errorf("invalid castling in FEN: '%v'", fen)
	}

	// (4) En passant target square, or "-". If a pawn has just made a 2-square
	// move, this is the position "behind" the pawn.

	ep := board.NoSquare
	if parts[3] != "-" {
		s, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return board.Position{}, fmt.Errorf("invalid en passant in FEN: '%v'", fen)
		}
		ep = s
	}

	// (5) Halfmove clock: the number of halfmoves since the last pawn advance
	// or capture, for the fifty move rule.

	np, err := strconv.Atoi(parts[4])
	if err != nil || np < 0 {
		return board.Position{}, fmt.Errorf("invalid halfmove in FEN: '%v'", fen)
	}

	// (6) Fullmove number: starts at 1, incremented after Black's move.

	fm, err := strconv.Atoi(parts[5])
	if err != nil || fm < 0 {
		return board.Position{}, fmt.Errorf("invalid full moves in FEN: '%v'", fen)
	}

	return board.NewPosition(pieces, active, castling, ep, np, fm)
}

// Encode encodes the position in FEN notation.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for r := board.ZeroRank; r < board.NumRanks; r++ {
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			color, piece, ok := pos.PieceAt(board.NewSquare(f, r))
			if !ok {
				blanks++
				continue
			}

			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(printPiece(color, piece))
		}

		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r < board.NumRanks-1 {
			sb.WriteString("/")
		}
	}

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), pos.Turn(), pos.Castling(), ep, pos.HalfmoveClock(), pos.FullMoves())
}

func parseCastling(str string) (board.Castling, bool) {
	var ret board.Castling

	if str == "-" {
		return ret, true
	}
	for _, r := range str {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func parseColor(str string) (board.Color, bool) {
	switch str {
	case "w", "W":
		return board.White, true
	case "b", "B":
		return board.Black, true
	default:
		return 0, false
	}
}

func parsePiece(r rune) (board.Color, board.Piece, bool) {
	piece, ok := board.ParsePiece(unicode.ToLower(r))
	if !ok {
		return 0, board.NoPiece, false
	}
	if unicode.IsUpper(r) {
		return board.White, piece, true
	}
	return board.Black, piece, true
}

func printPiece(c board.Color, p board.Piece) rune {
	r := []rune(p.String())[0]
	if c == board.White {
		return unicode.ToUpper(r)
	}
	return r
}
