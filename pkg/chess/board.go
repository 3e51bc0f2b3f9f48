// Package chess implements the standard chess rules used by the codec:
// positions, deterministic legal move generation, move application and
// Standard Algebraic Notation.
package chess

import "fmt"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Letter returns the SAN/FEN letter for the piece type (uppercase, empty for pawns).
func (t PieceType) Letter() string {
	switch t {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

func pieceTypeFromLetter(r byte) (PieceType, bool) {
	switch r {
	case 'P', 'p':
		return Pawn, true
	case 'N', 'n':
		return Knight, true
	case 'B', 'b':
		return Bishop, true
	case 'R', 'r':
		return Rook, true
	case 'Q', 'q':
		return Queen, true
	case 'K', 'k':
		return King, true
	default:
		return NoPieceType, false
	}
}

// Piece is a colored piece. The zero value is an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

func (p Piece) fenLetter() byte {
	letter := byte('P')
	if p.Type != Pawn {
		letter = p.Type.Letter()[0]
	}
	if p.Color == Black {
		letter += 'a' - 'A'
	}
	return letter
}

// Square indexes the board from a1 (0) to h8 (63).
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int {
	return int(s) & 7
}

func (s Square) Rank() int {
	return int(s) >> 3
}

func (s Square) String() string {
	if s < 0 || s > 63 {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.File(), '1'+s.Rank())
}

// offset returns the square df files and dr ranks away, if it is on the board.
func (s Square) offset(df, dr int) (Square, bool) {
	file := s.File() + df
	rank := s.Rank() + dr
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, false
	}
	return NewSquare(file, rank), true
}

func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", text)
	}
	file := int(text[0] - 'a')
	rank := int(text[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %q", text)
	}
	return NewSquare(file, rank), nil
}

// Move is a move in coordinate form. Castling is the king's two-square move.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// String returns the move in UCI long algebraic form, e.g. e2e4 or e7e8q.
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceType {
		s += string(m.Promotion.Letter()[0] + 'a' - 'A')
	}
	return s
}

// Castling holds the four castling rights as a bit set.
type Castling uint8

const (
	WhiteKingSide Castling = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide
)

type direction struct {
	df, dr int
}

var (
	knightSteps = []direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = []direction{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
	bishopRays  = []direction{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
	rookRays    = []direction{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	queenRays   = kingSteps
)

// promotionOrder fixes the enumeration order of promotion choices.
var promotionOrder = []PieceType{Queen, Rook, Bishop, Knight}
