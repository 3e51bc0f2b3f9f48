package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"chessteg/pkg/steg"
)

func main() {
	inPath := pflag.StringP("in", "i", "-", "file to encode (- for stdin)")
	outPath := pflag.StringP("out", "o", "-", "output PGN file (- for stdout)")
	configPath := pflag.String("config", "", "config file (default: nearest chessteg.json/.yaml above the working directory)")
	chunks := pflag.Int("chunks", 1, "number of chunks, one game each")
	workers := pflag.Int("workers", 0, "number of parallel workers (0=NumCPU)")
	strict := pflag.Bool("strict", false, "left-align short bit groups and fail on games that end early")
	lineWidth := pflag.Int("line-width", 0, "wrap movetext at this column (0=no wrapping)")
	reportPath := pflag.String("report", "", "write a parquet run report to this file")
	verbose := pflag.BoolP("verbose", "v", false, "log every chunk")
	pflag.Parse()

	logger := newLogger(*verbose)
	cfg, cfgPath, err := steg.ResolveConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if cfgPath != "" {
		logger.Debug("config loaded", "path", cfgPath)
	}
	if pflag.CommandLine.Changed("chunks") {
		cfg.Chunks = *chunks
	}
	if pflag.CommandLine.Changed("workers") {
		cfg.Workers = *workers
	}
	if pflag.CommandLine.Changed("strict") {
		cfg.Strict = *strict
	}
	if pflag.CommandLine.Changed("line-width") {
		cfg.LineWidth = *lineWidth
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	data, err := readInput(*inPath)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	codec := steg.New(steg.FromConfig(cfg), steg.WithLogger(logger))
	res, err := codec.Encode(ctx, data)
	if err != nil {
		fatal(err)
	}
	if err := writeOutput(*outPath, []byte(res.Document)); err != nil {
		fatal(err)
	}
	if *reportPath != "" {
		if err := steg.WriteReportRows(*reportPath, res.ReportRows()); err != nil {
			fatal(err)
		}
	}

	fmt.Fprintf(os.Stderr, "encoded %s into %s games, %s moves (%s terminated early) in %v\n",
		humanize.Bytes(uint64(len(data))), humanize.Comma(res.Counters.Games),
		humanize.Comma(res.Counters.Moves), humanize.Comma(res.Counters.Terminated), res.Elapsed)
	fmt.Fprintf(os.Stderr, "mode: %s, digest: %s\n", res.Mode, res.Digest)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
