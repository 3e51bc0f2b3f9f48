package steg

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"chessteg/pkg/chess"
)

// Codec encodes byte buffers into PGN documents and back. It is safe for
// concurrent use; Counters reports on the most recently started call.
type Codec struct {
	rules     Rules
	chunks    int
	workers   int
	mode      Mode
	lineWidth int
	logger    *slog.Logger

	current atomic.Pointer[Counters]
}

type Option func(*Codec)

// WithChunks sets how many chunks the input is split into. Values below
// one mean a single chunk.
func WithChunks(n int) Option {
	return func(c *Codec) { c.chunks = n }
}

// WithWorkers bounds the number of chunks processed at once. Zero or
// less means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *Codec) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		c.workers = n
	}
}

func WithMode(m Mode) Option {
	return func(c *Codec) { c.mode = m }
}

func WithRules(r Rules) Option {
	return func(c *Codec) { c.rules = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

func WithLineWidth(n int) Option {
	return func(c *Codec) { c.lineWidth = n }
}

// FromConfig applies every field of cfg.
func FromConfig(cfg Config) Option {
	return func(c *Codec) {
		WithChunks(cfg.Chunks)(c)
		WithWorkers(cfg.Workers)(c)
		WithMode(cfg.Mode())(c)
		WithLineWidth(cfg.LineWidth)(c)
	}
}

func New(opts ...Option) *Codec {
	c := &Codec{
		rules:   chess.Standard{},
		chunks:  1,
		workers: runtime.NumCPU(),
		mode:    ModeCompatible,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Mode() Mode {
	return c.mode
}

// Counters returns the live counters of the latest Encode or Decode call.
func (c *Codec) Counters() Snapshot {
	return c.current.Load().Snapshot()
}

func (c *Codec) begin() *Counters {
	counters := new(Counters)
	c.current.Store(counters)
	return counters
}

type EncodeResult struct {
	RunID    uuid.UUID
	Mode     Mode
	Document string
	Games    []Game
	Chunks   []ChunkStats
	Counters Snapshot
	Digest   Digest
	Elapsed  time.Duration
}

type DecodeResult struct {
	RunID    uuid.UUID
	Mode     Mode
	Data     []byte
	Games    []GameStats
	Counters Snapshot
	Digest   Digest
	Elapsed  time.Duration
}

// Encode splits data into chunks, plays one game per chunk and returns
// the games as a PGN document in chunk order. Empty input yields an empty
// document.
func (c *Codec) Encode(ctx context.Context, data []byte) (*EncodeResult, error) {
	start := time.Now()
	runID := uuid.New()
	counters := c.begin()
	chunks := SplitChunks(data, c.chunks)
	games := make([]Game, len(chunks))
	stats := make([]ChunkStats, len(chunks))

	c.logger.Debug("encode started", "run", runID, "bytes", len(data), "chunks", len(chunks),
		"workers", c.workers, "mode", c.mode)

	err := c.run(ctx, len(chunks), func(ctx context.Context, i int) error {
		game, st, err := EncodeChunk(ctx, c.rules, chunks[i], c.mode, counters)
		stats[i] = st
		if err != nil {
			return &ChunkError{Index: i, Err: err}
		}
		games[i] = game
		c.logger.Debug("chunk encoded", "run", runID, "chunk", i, "bytes", st.Bytes,
			"moves", st.Moves, "bits", st.BitsConsumed, "terminated", st.Terminated)
		if st.Exhausted {
			c.logger.Warn("game ended before chunk was spent", "run", runID, "chunk", i,
				"bits", st.Bits, "encoded", st.BitsConsumed)
		}
		return nil
	})
	if err != nil {
		c.logger.Error("encode failed", "run", runID, "err", err)
		return nil, err
	}

	res := &EncodeResult{
		RunID:    runID,
		Mode:     c.mode,
		Document: FormatDocument(games, WriterOptions{LineWidth: c.lineWidth}),
		Games:    games,
		Chunks:   stats,
		Counters: counters.Snapshot(),
		Digest:   DigestOf(data),
		Elapsed:  time.Since(start),
	}
	c.logger.Info("encoded", "run", runID, "bytes", len(data), "games", res.Counters.Games,
		"moves", res.Counters.Moves, "terminated", res.Counters.Terminated,
		"elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// Decode parses a PGN document and recovers the bytes its games carry.
func (c *Codec) Decode(ctx context.Context, document string) (*DecodeResult, error) {
	games, err := ParseDocument(document)
	if err != nil {
		return nil, err
	}
	return c.DecodeGames(ctx, games)
}

// DecodeReader is Decode for a stream, accepting UTF-8 or ISO-8859-1.
func (c *Codec) DecodeReader(ctx context.Context, r io.Reader) (*DecodeResult, error) {
	games, err := ReadDocument(r)
	if err != nil {
		return nil, err
	}
	return c.DecodeGames(ctx, games)
}

// DecodeGames replays already parsed games. Bits from all games are
// concatenated in document order before regrouping into bytes.
func (c *Codec) DecodeGames(ctx context.Context, games []Game) (*DecodeResult, error) {
	start := time.Now()
	runID := uuid.New()
	counters := c.begin()
	parts := make([]Bits, len(games))
	stats := make([]GameStats, len(games))

	c.logger.Debug("decode started", "run", runID, "games", len(games),
		"workers", c.workers, "mode", c.mode)

	err := c.run(ctx, len(games), func(ctx context.Context, i int) error {
		bits, st, err := DecodeGame(ctx, c.rules, games[i], c.mode, counters)
		stats[i] = st
		if err != nil {
			return err
		}
		parts[i] = bits
		c.logger.Debug("game decoded", "run", runID, "game", i, "moves", st.Moves, "bits", st.Bits)
		return nil
	})
	if err != nil {
		c.logger.Error("decode failed", "run", runID, "err", err)
		return nil, err
	}

	var all Bits
	for _, p := range parts {
		all.Append(p)
	}
	data := BitsToBytes(all)

	res := &DecodeResult{
		RunID:    runID,
		Mode:     c.mode,
		Data:     data,
		Games:    stats,
		Counters: counters.Snapshot(),
		Digest:   DigestOf(data),
		Elapsed:  time.Since(start),
	}
	c.logger.Info("decoded", "run", runID, "games", len(games), "bytes", len(data),
		"moves", res.Counters.Moves, "elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// ---------------------------------------------------------------------------
// Worker pool: n independent jobs, at most c.workers at a time. The first
// failure cancels the remaining jobs and is returned.
// ---------------------------------------------------------------------------

func (c *Codec) run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(c.workers, n)
	jobs := make(chan int, workers*4)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if err := task(ctx, i); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
