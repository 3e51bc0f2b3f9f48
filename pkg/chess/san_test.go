package chess_test

import (
	"errors"
	"testing"

	"chessteg/pkg/chess"
)

func mustFEN(t *testing.T, fen string) *chess.Position {
	t.Helper()
	pos, err := chess.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse fen %s: %v", fen, err)
	}
	return pos
}

func findMove(t *testing.T, pos *chess.Position, uci string) chess.Move {
	t.Helper()
	for _, m := range pos.LegalMoves() {
		if m.String() == uci {
			return m
		}
	}
	t.Fatalf("move %s is not legal in %s", uci, pos.FEN())
	return chess.Move{}
}

func TestSAN(t *testing.T) {
	cases := []struct {
		fen  string
		uci  string
		want string
	}{
		{chess.StartFEN, "e2e4", "e4"},
		{chess.StartFEN, "g1f3", "Nf3"},
		{"4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "b1d2", "Nbd2"},
		{"4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "f1d2", "Nfd2"},
		{"4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "a1a3", "R1a3"},
		{"4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "a5a3", "R5a3"},
		{"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5d6", "exd6"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7a8q", "a8=Q+"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7a8n", "a8=N"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", "O-O-O"},
		{"r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4", "h5f7", "Qxf7#"},
	}
	for _, tc := range cases {
		pos := mustFEN(t, tc.fen)
		m := findMove(t, pos, tc.uci)
		if got := pos.SAN(m); got != tc.want {
			t.Fatalf("%s in %s: got %s want %s", tc.uci, tc.fen, got, tc.want)
		}
	}
}

func TestParseSANRoundTrip(t *testing.T) {
	fens := []string{
		chess.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 b kq - 0 1",
	}
	for _, fen := range fens {
		pos := mustFEN(t, fen)
		seen := map[string]chess.Move{}
		for _, m := range pos.LegalMoves() {
			san := pos.SAN(m)
			if prev, ok := seen[san]; ok {
				t.Fatalf("%s: SAN %s names both %s and %s", fen, san, prev, m)
			}
			seen[san] = m
			got, err := pos.ParseSAN(san)
			if err != nil {
				t.Fatalf("%s: parse %s: %v", fen, san, err)
			}
			if got != m {
				t.Fatalf("%s: parse %s: got %s want %s", fen, san, got, m)
			}
		}
	}
}

func TestParseSANTolerance(t *testing.T) {
	pos := mustFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	m, err := pos.ParseSAN("a8Q!")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.String() != "a7a8q" {
		t.Fatalf("unexpected move: %s", m)
	}
}

func TestParseSANIllegal(t *testing.T) {
	pos := chess.NewPosition()
	for _, token := range []string{"e5", "Ke2", "O-O", "Nd2", "xyz"} {
		if _, err := pos.ParseSAN(token); !errors.Is(err, chess.ErrIllegalMove) {
			t.Fatalf("%s: expected ErrIllegalMove, got %v", token, err)
		}
	}
}

func TestOutcome(t *testing.T) {
	cases := []struct {
		fen  string
		want chess.Outcome
	}{
		{chess.StartFEN, chess.Ongoing},
		{"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", chess.Stalemate},
		{"r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4", chess.Checkmate},
		{"8/8/8/4k3/8/8/8/4K3 w - - 0 1", chess.InsufficientMaterial},
		{"8/8/8/4k3/8/8/8/3NK3 w - - 0 1", chess.InsufficientMaterial},
		{"8/8/8/4k3/8/8/8/2B1KB2 w - - 0 1", chess.Ongoing},
		{"8/8/8/4k3/8/8/8/R3K3 w - - 150 100", chess.SeventyFiveMoves},
	}
	for _, tc := range cases {
		pos := mustFEN(t, tc.fen)
		if got := pos.Outcome(); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.fen, got, tc.want)
		}
		if pos.IsTerminal() != (tc.want != chess.Ongoing) {
			t.Fatalf("%s: IsTerminal disagrees with outcome %s", tc.fen, tc.want)
		}
	}
}

func TestFivefoldRepetition(t *testing.T) {
	pos := chess.NewPosition()
	shuffle := []string{"Nf3", "Nf6", "Ng1", "Ng8"}
	for round := 0; round < 4; round++ {
		for _, token := range shuffle {
			if pos.IsTerminal() {
				t.Fatalf("round %d: terminal too early", round)
			}
			m, err := pos.ParseSAN(token)
			if err != nil {
				t.Fatalf("parse %s: %v", token, err)
			}
			pos.Apply(m)
		}
	}
	if got := pos.Outcome(); got != chess.FivefoldRepetition {
		t.Fatalf("got %s want %s", got, chess.FivefoldRepetition)
	}
}
