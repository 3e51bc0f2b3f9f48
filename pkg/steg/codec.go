package steg

import (
	"context"
	"fmt"
	mathbits "math/bits"

	"chessteg/pkg/chess"
)

// Rules is the chess engine the codec drives. LegalMoves must return the
// same order every time it is asked about the same position, since the
// position of a move in that list is what carries the data.
type Rules interface {
	NewPosition() *chess.Position
	LegalMoves(p *chess.Position) []chess.Move
	Apply(p *chess.Position, m chess.Move)
	IsTerminal(p *chess.Position) bool
	Notate(p *chess.Position, m chess.Move) string
	Resolve(p *chess.Position, token string) (chess.Move, error)
}

// Mode selects how a short final bit group is handled.
type Mode int

const (
	// ModeCompatible reads documents produced by the classic encoder. In
	// that format a short final group goes into the move index as a small
	// number, so decoding may misplace the last bits of a chunk and the
	// caller should keep chunks at one byte for exact round trips.
	ModeCompatible Mode = iota
	// ModeStrict left-aligns a short final group, trims each decoded game
	// to whole bytes and fails when a game ends before its chunk is spent.
	ModeStrict
)

func (m Mode) String() string {
	switch m {
	case ModeCompatible:
		return "compatible"
	case ModeStrict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Width is the number of bits a choice among n moves carries,
// floor(log2 n). Zero or one move carries nothing.
func Width(n int) int {
	if n < 2 {
		return 0
	}
	return mathbits.Len(uint(n)) - 1
}

// ChunkStats describes how one chunk was turned into a game.
type ChunkStats struct {
	Index        int
	Bytes        int
	Bits         int
	BitsConsumed int
	Moves        int
	Terminated   bool
	Exhausted    bool
}

// EncodeChunk plays one game from the start position, each move picked by
// the next bits of the chunk. The game stops when the bits run out, when
// the position has at most one legal move, or when the game is over.
func EncodeChunk(ctx context.Context, rules Rules, chunk Chunk, mode Mode, counters *Counters) (Game, ChunkStats, error) {
	bits := BytesToBits(chunk.Data)
	pos := rules.NewPosition()
	stats := ChunkStats{Index: chunk.Index, Bytes: len(chunk.Data), Bits: bits.Len()}
	moves := make([]string, 0, bits.Len()/4+1)

	cursor := 0
	for cursor < bits.Len() {
		if err := ctx.Err(); err != nil {
			return Game{}, stats, err
		}
		legal := rules.LegalMoves(pos)
		width := Width(len(legal))
		take := min(width, bits.Len()-cursor)
		if take == 0 {
			break
		}
		idx := bits.Uint(cursor, take)
		if mode == ModeStrict && take < width {
			idx <<= uint(width - take)
		}
		if last := uint64(len(legal) - 1); idx > last {
			idx = last
		}
		m := legal[idx]
		moves = append(moves, rules.Notate(pos, m))
		rules.Apply(pos, m)
		cursor += take
		counters.addMove()
		if rules.IsTerminal(pos) {
			stats.Terminated = true
			counters.addTerminated()
			break
		}
	}

	stats.Moves = len(moves)
	stats.BitsConsumed = cursor
	stats.Exhausted = cursor < bits.Len()
	if stats.Exhausted && mode == ModeStrict {
		return Game{}, stats, fmt.Errorf("%w: %d of %d bits encoded in %d moves",
			ErrLegalMoveExhaustion, cursor, bits.Len(), len(moves))
	}
	counters.addGame()
	return NewGame(chunk.Index, moves), stats, nil
}

// GameStats describes how one game was turned back into bits.
type GameStats struct {
	Index      int
	Moves      int
	Bits       int
	Terminated bool
}

// DecodeGame replays a game and recovers the bits carried by its moves.
// Every move yields a full-width group.
func DecodeGame(ctx context.Context, rules Rules, game Game, mode Mode, counters *Counters) (Bits, GameStats, error) {
	pos := rules.NewPosition()
	stats := GameStats{Index: game.Index}
	var out Bits

	for ply, token := range game.Moves {
		if err := ctx.Err(); err != nil {
			return Bits{}, stats, err
		}
		legal := rules.LegalMoves(pos)
		if len(legal) == 0 {
			break
		}
		m, err := rules.Resolve(pos, token)
		if err != nil {
			return Bits{}, stats, &GameError{Index: game.Index, Ply: ply + 1, Move: token, Err: ErrUnknownMove}
		}
		idx := indexOf(legal, m)
		if idx < 0 {
			return Bits{}, stats, &GameError{Index: game.Index, Ply: ply + 1, Move: token, Err: ErrUnknownMove}
		}
		out.AppendUint(uint64(idx), Width(len(legal)))
		rules.Apply(pos, m)
		stats.Moves++
		counters.addMove()
	}

	if mode == ModeStrict {
		out.Truncate(out.Len() - out.Len()%8)
	}
	stats.Bits = out.Len()
	stats.Terminated = rules.IsTerminal(pos)
	counters.addGame()
	return out, stats, nil
}

func indexOf(moves []chess.Move, m chess.Move) int {
	for i := range moves {
		if moves[i] == m {
			return i
		}
	}
	return -1
}
