package chess_test

import (
	"testing"

	"chessteg/pkg/chess"
)

func perft(pos *chess.Position, depth int) int {
	moves := pos.LegalMoves()
	if depth == 1 {
		return len(moves)
	}
	nodes := 0
	for _, m := range moves {
		next := pos.Clone()
		next.Apply(m)
		nodes += perft(next, depth-1)
	}
	return nodes
}

func TestPerft(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		nodes []int
	}{
		{"start", chess.StartFEN, []int{20, 400, 8902}},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", []int{48, 2039}},
		{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []int{14, 191, 2812}},
		{"promotions", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []int{6, 264, 9467}},
		{"checks", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []int{44, 1486}},
	}
	for _, tc := range cases {
		pos, err := chess.ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("%s: parse fen: %v", tc.name, err)
		}
		for i, want := range tc.nodes {
			if got := perft(pos, i+1); got != want {
				t.Fatalf("%s: perft(%d) = %d, want %d", tc.name, i+1, got, want)
			}
		}
	}
}

// TestLegalMovesOrder pins the canonical enumeration order of the start position.
func TestLegalMovesOrder(t *testing.T) {
	pos := chess.NewPosition()
	want := []string{
		"b1c3", "b1a3", "g1h3", "g1f3",
		"a2a3", "a2a4", "b2b3", "b2b4", "c2c3", "c2c4", "d2d3", "d2d4",
		"e2e3", "e2e4", "f2f3", "f2f4", "g2g3", "g2g4", "h2h3", "h2h4",
	}
	moves := pos.LegalMoves()
	if len(moves) != len(want) {
		t.Fatalf("unexpected move count: got %d want %d", len(moves), len(want))
	}
	for i, m := range moves {
		if m.String() != want[i] {
			t.Fatalf("move %d: got %s want %s", i, m, want[i])
		}
	}
}

func TestLegalMovesReproducible(t *testing.T) {
	pos, err := chess.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("parse fen: %v", err)
	}
	first := pos.LegalMoves()
	for round := 0; round < 3; round++ {
		again := pos.Clone().LegalMoves()
		if len(again) != len(first) {
			t.Fatalf("round %d: move count changed: %d vs %d", round, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("round %d: move %d changed: %s vs %s", round, i, again[i], first[i])
			}
		}
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		chess.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	for _, fen := range fens {
		pos, err := chess.ParseFEN(fen)
		if err != nil {
			t.Fatalf("parse %s: %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Fatalf("fen mismatch: got %s want %s", got, fen)
		}
	}
}

func TestApplyTracksState(t *testing.T) {
	pos := chess.NewPosition()
	for _, token := range []string{"e4", "d5", "e5", "f5"} {
		m, err := pos.ParseSAN(token)
		if err != nil {
			t.Fatalf("parse %s: %v", token, err)
		}
		pos.Apply(m)
	}
	want := "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3"
	if got := pos.FEN(); got != want {
		t.Fatalf("unexpected fen: got %s want %s", got, want)
	}
	if pos.Turn() != chess.White || pos.Ply() != 4 {
		t.Fatalf("unexpected turn/ply: %s %d", pos.Turn(), pos.Ply())
	}
	m, err := pos.ParseSAN("exf6")
	if err != nil {
		t.Fatalf("en passant: %v", err)
	}
	pos.Apply(m)
	f5, _ := chess.ParseSquare("f5")
	if !pos.PieceAt(f5).IsEmpty() {
		t.Fatalf("en passant left the captured pawn on f5")
	}
	want = "rnbqkbnr/ppp1p1pp/5P2/3p4/8/8/PPPP1PPP/RNBQKBNR b KQkq - 0 3"
	if got := pos.FEN(); got != want {
		t.Fatalf("unexpected fen after en passant: got %s want %s", got, want)
	}
}

func TestCastlingUpdatesRookAndRights(t *testing.T) {
	pos, err := chess.ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("parse fen: %v", err)
	}
	m, err := pos.ParseSAN("O-O")
	if err != nil {
		t.Fatalf("castle: %v", err)
	}
	pos.Apply(m)
	if got, want := pos.FEN(), "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 1 1"; got != want {
		t.Fatalf("unexpected fen: got %s want %s", got, want)
	}
	m, err = pos.ParseSAN("0-0-0")
	if err != nil {
		t.Fatalf("castle long: %v", err)
	}
	pos.Apply(m)
	if got, want := pos.FEN(), "2kr3r/8/8/8/8/8/8/R4RK1 w - - 2 2"; got != want {
		t.Fatalf("unexpected fen: got %s want %s", got, want)
	}
}

func TestCastlingThroughCheckIsIllegal(t *testing.T) {
	pos, err := chess.ParseFEN("4k3/8/8/8/8/8/5r2/R3K2R w KQ - 0 1")
	if err != nil {
		t.Fatalf("parse fen: %v", err)
	}
	if _, err := pos.ParseSAN("O-O"); err == nil {
		t.Fatal("castling through an attacked square should be illegal")
	}
	e1, _ := chess.ParseSquare("e1")
	c1, _ := chess.ParseSquare("c1")
	if !pos.IsLegal(chess.Move{From: e1, To: c1}) {
		t.Fatal("queen-side castling should stay legal")
	}
}
