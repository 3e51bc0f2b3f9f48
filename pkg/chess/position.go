package chess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrIllegalMove = errors.New("chess: illegal move")

type Position struct {
	board    [64]Piece
	turn     Color
	castling Castling
	epSquare Square
	halfmove int
	fullmove int
	history  []positionKey
}

// positionKey identifies a position for repetition counting.
type positionKey struct {
	board    [64]Piece
	turn     Color
	castling Castling
	ep       Square
}

// NewPosition returns the standard start position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid fen: %s", fen)
	}
	pos := &Position{epSquare: NoSquare, fullmove: 1}
	if err := parseFENBoard(fields[0], pos); err != nil {
		return nil, err
	}
	switch fields[1] {
	case "w":
		pos.turn = White
	case "b":
		pos.turn = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", fields[1])
	}
	if fields[2] != "-" {
		for _, r := range fields[2] {
			switch r {
			case 'K':
				pos.castling |= WhiteKingSide
			case 'Q':
				pos.castling |= WhiteQueenSide
			case 'k':
				pos.castling |= BlackKingSide
			case 'q':
				pos.castling |= BlackQueenSide
			default:
				return nil, fmt.Errorf("invalid castling rights: %s", fields[2])
			}
		}
	}
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, err
		}
		pos.epSquare = sq
	}
	if len(fields) >= 6 {
		halfmove, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("invalid halfmove clock: %w", err)
		}
		fullmove, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, fmt.Errorf("invalid fullmove number: %w", err)
		}
		pos.halfmove = halfmove
		pos.fullmove = fullmove
	}
	pos.history = []positionKey{pos.key()}
	return pos, nil
}

func parseFENBoard(board string, pos *Position) error {
	ranks := strings.Split(board, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid board ranks: %d", len(ranks))
	}
	for i, rankText := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankText); j++ {
			c := rankText[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			kind, ok := pieceTypeFromLetter(c)
			if !ok {
				return fmt.Errorf("unknown fen piece %c", c)
			}
			if file > 7 {
				return fmt.Errorf("rank %d has too many files", rank+1)
			}
			color := White
			if c >= 'a' && c <= 'z' {
				color = Black
			}
			pos.board[NewSquare(file, rank)] = Piece{Type: kind, Color: color}
			file++
		}
		if file != 8 {
			return fmt.Errorf("rank %d does not have 8 files", rank+1)
		}
	}
	return nil
}

func (p *Position) FEN() string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.board[NewSquare(file, rank)]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteByte(piece.fenLetter())
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}
	turn := "w"
	if p.turn == Black {
		turn = "b"
	}
	castling := ""
	if p.castling&WhiteKingSide != 0 {
		castling += "K"
	}
	if p.castling&WhiteQueenSide != 0 {
		castling += "Q"
	}
	if p.castling&BlackKingSide != 0 {
		castling += "k"
	}
	if p.castling&BlackQueenSide != 0 {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	return fmt.Sprintf("%s %s %s %s %d %d", b.String(), turn, castling, p.epSquare, p.halfmove, p.fullmove)
}

func (p *Position) Clone() *Position {
	clone := *p
	clone.history = make([]positionKey, len(p.history))
	copy(clone.history, p.history)
	return &clone
}

func (p *Position) Turn() Color {
	return p.turn
}

func (p *Position) PieceAt(s Square) Piece {
	if s < 0 || s > 63 {
		return Piece{}
	}
	return p.board[s]
}

// Ply returns the number of half moves played since the start of the game.
func (p *Position) Ply() int {
	ply := (p.fullmove - 1) * 2
	if p.turn == Black {
		ply++
	}
	return ply
}

// Apply plays m in place. m must be one of LegalMoves.
func (p *Position) Apply(m Move) {
	piece := p.board[m.From]
	captured := p.board[m.To]
	forward := pawnForward(p.turn)

	if piece.Type == Pawn && m.To == p.epSquare && captured.IsEmpty() && m.From.File() != m.To.File() {
		victim, _ := m.To.offset(0, -forward)
		p.board[victim] = Piece{}
		captured = Piece{Type: Pawn, Color: p.turn.Other()}
	}
	if piece.Type == King && abs(m.To.File()-m.From.File()) == 2 {
		rank := m.From.Rank()
		if m.To.File() == 6 {
			p.board[NewSquare(5, rank)] = p.board[NewSquare(7, rank)]
			p.board[NewSquare(7, rank)] = Piece{}
		} else {
			p.board[NewSquare(3, rank)] = p.board[NewSquare(0, rank)]
			p.board[NewSquare(0, rank)] = Piece{}
		}
	}

	moved := piece
	if m.Promotion != NoPieceType {
		moved.Type = m.Promotion
	}
	p.board[m.To] = moved
	p.board[m.From] = Piece{}

	p.epSquare = NoSquare
	if piece.Type == Pawn && abs(m.To.Rank()-m.From.Rank()) == 2 {
		p.epSquare, _ = m.From.offset(0, forward)
	}

	if piece.Type == King {
		if p.turn == White {
			p.castling &^= WhiteKingSide | WhiteQueenSide
		} else {
			p.castling &^= BlackKingSide | BlackQueenSide
		}
	}
	p.castling &^= castlingMask(m.From) | castlingMask(m.To)

	irreversible := piece.Type == Pawn || !captured.IsEmpty()
	if irreversible {
		p.halfmove = 0
	} else {
		p.halfmove++
	}
	if p.turn == Black {
		p.fullmove++
	}
	p.turn = p.turn.Other()

	if irreversible {
		p.history = p.history[:0]
	}
	p.history = append(p.history, p.key())
}

func castlingMask(s Square) Castling {
	switch s {
	case NewSquare(0, 0):
		return WhiteQueenSide
	case NewSquare(7, 0):
		return WhiteKingSide
	case NewSquare(0, 7):
		return BlackQueenSide
	case NewSquare(7, 7):
		return BlackKingSide
	default:
		return 0
	}
}

func (p *Position) key() positionKey {
	k := positionKey{board: p.board, turn: p.turn, castling: p.castling, ep: NoSquare}
	if p.epSquare != NoSquare && p.epCapturePossible() {
		k.ep = p.epSquare
	}
	return k
}

// epCapturePossible reports whether a pawn of the side to move stands next
// to the pawn that just made a double step.
func (p *Position) epCapturePossible() bool {
	victim, ok := p.epSquare.offset(0, -pawnForward(p.turn))
	if !ok {
		return false
	}
	for _, df := range []int{-1, 1} {
		sq, ok := victim.offset(df, 0)
		if !ok {
			continue
		}
		if piece := p.board[sq]; piece.Type == Pawn && piece.Color == p.turn {
			return true
		}
	}
	return false
}

// repetitions counts how often the current position occurred since the last
// irreversible move, including now.
func (p *Position) repetitions() int {
	if len(p.history) == 0 {
		return 1
	}
	current := p.history[len(p.history)-1]
	count := 0
	for _, k := range p.history {
		if k == current {
			count++
		}
	}
	return count
}

func (p *Position) InCheck() bool {
	king := p.kingSquare(p.turn)
	if king == NoSquare {
		return false
	}
	return attacked(&p.board, king, p.turn.Other())
}

func (p *Position) kingSquare(c Color) Square {
	return findKing(&p.board, c)
}

func findKing(board *[64]Piece, c Color) Square {
	for sq := Square(0); sq < 64; sq++ {
		if piece := board[sq]; piece.Type == King && piece.Color == c {
			return sq
		}
	}
	return NoSquare
}

type Outcome int

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	SeventyFiveMoves
	FivefoldRepetition
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case InsufficientMaterial:
		return "insufficient material"
	case SeventyFiveMoves:
		return "seventy-five-move rule"
	case FivefoldRepetition:
		return "fivefold repetition"
	default:
		return "ongoing"
	}
}

// Outcome reports whether the game is over and why. Only outcomes that end
// the game without a claim are reported.
func (p *Position) Outcome() Outcome {
	if !p.hasLegalMove() {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if p.insufficientMaterial() {
		return InsufficientMaterial
	}
	if p.halfmove >= 150 {
		return SeventyFiveMoves
	}
	if p.repetitions() >= 5 {
		return FivefoldRepetition
	}
	return Ongoing
}

func (p *Position) IsTerminal() bool {
	return p.Outcome() != Ongoing
}

func (p *Position) insufficientMaterial() bool {
	knights := 0
	bishops := 0
	var bishopShades [2]bool
	for sq := Square(0); sq < 64; sq++ {
		switch p.board[sq].Type {
		case Pawn, Rook, Queen:
			return false
		case Knight:
			knights++
		case Bishop:
			bishops++
			bishopShades[(sq.File()+sq.Rank())&1] = true
		}
	}
	if knights+bishops <= 1 {
		return true
	}
	return knights == 0 && !(bishopShades[0] && bishopShades[1])
}

func pawnForward(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
