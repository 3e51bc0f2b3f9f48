package chess

// LegalMoves returns the legal moves of the side to move in canonical order:
// origin squares ascending from a1 to h8, then each piece's direction table
// order, promotions as Q, R, B, N, and castling after the king's steps
// (king side first). The order only depends on the position.
func (p *Position) LegalMoves() []Move {
	king := p.kingSquare(p.turn)
	pseudo := p.pseudoLegalMoves()
	legal := pseudo[:0]
	for _, m := range pseudo {
		if p.leavesKingSafe(m, king) {
			legal = append(legal, m)
		}
	}
	return legal
}

func (p *Position) hasLegalMove() bool {
	king := p.kingSquare(p.turn)
	for _, m := range p.pseudoLegalMoves() {
		if p.leavesKingSafe(m, king) {
			return true
		}
	}
	return false
}

// IsLegal reports whether m is one of the legal moves.
func (p *Position) IsLegal(m Move) bool {
	for _, legal := range p.LegalMoves() {
		if legal == m {
			return true
		}
	}
	return false
}

func (p *Position) pseudoLegalMoves() []Move {
	moves := make([]Move, 0, 64)
	for sq := Square(0); sq < 64; sq++ {
		piece := p.board[sq]
		if piece.IsEmpty() || piece.Color != p.turn {
			continue
		}
		switch piece.Type {
		case Pawn:
			moves = p.pawnMoves(moves, sq)
		case Knight:
			moves = p.stepMoves(moves, sq, knightSteps)
		case Bishop:
			moves = p.slideMoves(moves, sq, bishopRays)
		case Rook:
			moves = p.slideMoves(moves, sq, rookRays)
		case Queen:
			moves = p.slideMoves(moves, sq, queenRays)
		case King:
			moves = p.stepMoves(moves, sq, kingSteps)
			moves = p.castlingMoves(moves, sq)
		}
	}
	return moves
}

func (p *Position) stepMoves(moves []Move, from Square, steps []direction) []Move {
	for _, d := range steps {
		to, ok := from.offset(d.df, d.dr)
		if !ok {
			continue
		}
		if target := p.board[to]; !target.IsEmpty() && target.Color == p.turn {
			continue
		}
		moves = append(moves, Move{From: from, To: to})
	}
	return moves
}

func (p *Position) slideMoves(moves []Move, from Square, rays []direction) []Move {
	for _, d := range rays {
		to := from
		for {
			next, ok := to.offset(d.df, d.dr)
			if !ok {
				break
			}
			to = next
			target := p.board[to]
			if !target.IsEmpty() {
				if target.Color != p.turn {
					moves = append(moves, Move{From: from, To: to})
				}
				break
			}
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (p *Position) pawnMoves(moves []Move, from Square) []Move {
	forward := pawnForward(p.turn)
	startRank, lastRank := 1, 7
	if p.turn == Black {
		startRank, lastRank = 6, 0
	}
	if one, ok := from.offset(0, forward); ok && p.board[one].IsEmpty() {
		moves = appendPawnMove(moves, from, one, lastRank)
		if from.Rank() == startRank {
			if two, ok := from.offset(0, 2*forward); ok && p.board[two].IsEmpty() {
				moves = append(moves, Move{From: from, To: two})
			}
		}
	}
	for _, df := range []int{-1, 1} {
		to, ok := from.offset(df, forward)
		if !ok {
			continue
		}
		target := p.board[to]
		enemy := !target.IsEmpty() && target.Color != p.turn
		enPassant := to == p.epSquare && target.IsEmpty()
		if enemy || enPassant {
			moves = appendPawnMove(moves, from, to, lastRank)
		}
	}
	return moves
}

func appendPawnMove(moves []Move, from, to Square, lastRank int) []Move {
	if to.Rank() != lastRank {
		return append(moves, Move{From: from, To: to})
	}
	for _, promotion := range promotionOrder {
		moves = append(moves, Move{From: from, To: to, Promotion: promotion})
	}
	return moves
}

func (p *Position) castlingMoves(moves []Move, from Square) []Move {
	rank := 0
	kingSide, queenSide := WhiteKingSide, WhiteQueenSide
	if p.turn == Black {
		rank = 7
		kingSide, queenSide = BlackKingSide, BlackQueenSide
	}
	if from != NewSquare(4, rank) || p.castling&(kingSide|queenSide) == 0 {
		return moves
	}
	enemy := p.turn.Other()
	if attacked(&p.board, from, enemy) {
		return moves
	}
	rook := Piece{Type: Rook, Color: p.turn}
	empty := func(file int) bool { return p.board[NewSquare(file, rank)].IsEmpty() }
	safe := func(file int) bool { return !attacked(&p.board, NewSquare(file, rank), enemy) }

	if p.castling&kingSide != 0 && p.board[NewSquare(7, rank)] == rook &&
		empty(5) && empty(6) && safe(5) && safe(6) {
		moves = append(moves, Move{From: from, To: NewSquare(6, rank)})
	}
	if p.castling&queenSide != 0 && p.board[NewSquare(0, rank)] == rook &&
		empty(1) && empty(2) && empty(3) && safe(3) && safe(2) {
		moves = append(moves, Move{From: from, To: NewSquare(2, rank)})
	}
	return moves
}

// leavesKingSafe plays m on a copy of the board and reports whether the
// mover's king is left unattacked.
func (p *Position) leavesKingSafe(m Move, king Square) bool {
	board := p.board
	piece := board[m.From]
	if piece.Type == Pawn && m.To == p.epSquare && board[m.To].IsEmpty() && m.From.File() != m.To.File() {
		victim, _ := m.To.offset(0, -pawnForward(p.turn))
		board[victim] = Piece{}
	}
	board[m.To] = piece
	board[m.From] = Piece{}
	if piece.Type == King {
		king = m.To
	}
	if king == NoSquare {
		return true
	}
	return !attacked(&board, king, p.turn.Other())
}

// attacked reports whether any piece of color by attacks sq.
func attacked(board *[64]Piece, sq Square, by Color) bool {
	back := -pawnForward(by)
	for _, df := range []int{-1, 1} {
		if from, ok := sq.offset(df, back); ok {
			if piece := board[from]; piece.Type == Pawn && piece.Color == by {
				return true
			}
		}
	}
	for _, d := range knightSteps {
		if from, ok := sq.offset(d.df, d.dr); ok {
			if piece := board[from]; piece.Type == Knight && piece.Color == by {
				return true
			}
		}
	}
	for _, d := range kingSteps {
		if from, ok := sq.offset(d.df, d.dr); ok {
			if piece := board[from]; piece.Type == King && piece.Color == by {
				return true
			}
		}
	}
	if slider(board, sq, by, rookRays, Rook) {
		return true
	}
	return slider(board, sq, by, bishopRays, Bishop)
}

func slider(board *[64]Piece, sq Square, by Color, rays []direction, kind PieceType) bool {
	for _, d := range rays {
		at := sq
		for {
			next, ok := at.offset(d.df, d.dr)
			if !ok {
				break
			}
			at = next
			piece := board[at]
			if piece.IsEmpty() {
				continue
			}
			if piece.Color == by && (piece.Type == kind || piece.Type == Queen) {
				return true
			}
			break
		}
	}
	return false
}
