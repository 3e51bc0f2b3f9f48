package chess

import (
	"fmt"
	"strings"
)

// SAN returns m in Standard Algebraic Notation, including the check or
// checkmate suffix.
func (p *Position) SAN(m Move) string {
	san := p.sanBase(m, p.LegalMoves())
	next := p.Clone()
	next.Apply(m)
	if next.InCheck() {
		if next.hasLegalMove() {
			san += "+"
		} else {
			san += "#"
		}
	}
	return san
}

// ParseSAN resolves a SAN token against the legal moves. Check marks and
// trailing annotation glyphs are ignored, and 0-0 is accepted for O-O.
func (p *Position) ParseSAN(token string) (Move, error) {
	want := normalizeSAN(token)
	legal := p.LegalMoves()
	for _, m := range legal {
		if p.sanBase(m, legal) == want {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, token)
}

// sanBase renders m without a check suffix. legal must be the legal moves of
// p; it is used for disambiguation.
func (p *Position) sanBase(m Move, legal []Move) string {
	piece := p.board[m.From]
	if piece.Type == King && abs(m.To.File()-m.From.File()) == 2 {
		if m.To.File() == 6 {
			return "O-O"
		}
		return "O-O-O"
	}
	capture := !p.board[m.To].IsEmpty() || (piece.Type == Pawn && m.From.File() != m.To.File())

	var b strings.Builder
	if piece.Type == Pawn {
		if capture {
			b.WriteByte(byte('a' + m.From.File()))
			b.WriteByte('x')
		}
		b.WriteString(m.To.String())
		if m.Promotion != NoPieceType {
			b.WriteByte('=')
			b.WriteString(m.Promotion.Letter())
		}
		return b.String()
	}

	b.WriteString(piece.Type.Letter())
	ambiguous, sameFile, sameRank := false, false, false
	for _, other := range legal {
		if other.To != m.To || other.From == m.From {
			continue
		}
		if p.board[other.From].Type != piece.Type {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	if ambiguous {
		switch {
		case !sameFile:
			b.WriteByte(byte('a' + m.From.File()))
		case !sameRank:
			b.WriteByte(byte('1' + m.From.Rank()))
		default:
			b.WriteString(m.From.String())
		}
	}
	if capture {
		b.WriteByte('x')
	}
	b.WriteString(m.To.String())
	return b.String()
}

func normalizeSAN(token string) string {
	s := strings.TrimRight(strings.TrimSpace(token), "+#!?")
	switch s {
	case "0-0":
		return "O-O"
	case "0-0-0":
		return "O-O-O"
	}
	if n := len(s); n >= 3 && s[0] >= 'a' && s[0] <= 'h' {
		last := s[n-1]
		if strings.IndexByte("QRBN", last) >= 0 && s[n-2] >= '1' && s[n-2] <= '8' {
			s = s[:n-1] + "=" + s[n-1:]
		}
	}
	return s
}
