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
	inPath := pflag.StringP("in", "i", "-", "PGN file to decode (- for stdin)")
	outPath := pflag.StringP("out", "o", "-", "output file (- for stdout)")
	configPath := pflag.String("config", "", "config file (default: nearest chessteg.json/.yaml above the working directory)")
	workers := pflag.Int("workers", 0, "number of parallel workers (0=NumCPU)")
	strict := pflag.Bool("strict", false, "trim every game to whole bytes")
	reportPath := pflag.String("report", "", "write a parquet run report to this file")
	verbose := pflag.BoolP("verbose", "v", false, "log every game")
	pflag.Parse()

	logger := newLogger(*verbose)
	cfg, cfgPath, err := steg.ResolveConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if cfgPath != "" {
		logger.Debug("config loaded", "path", cfgPath)
	}
	if pflag.CommandLine.Changed("workers") {
		cfg.Workers = *workers
	}
	if pflag.CommandLine.Changed("strict") {
		cfg.Strict = *strict
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	in, closeIn, err := openInput(*inPath)
	if err != nil {
		fatal(err)
	}
	defer closeIn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	codec := steg.New(steg.FromConfig(cfg), steg.WithLogger(logger))
	res, err := codec.DecodeReader(ctx, in)
	if err != nil {
		fatal(err)
	}
	if err := writeOutput(*outPath, res.Data); err != nil {
		fatal(err)
	}
	if *reportPath != "" {
		if err := steg.WriteReportRows(*reportPath, res.ReportRows()); err != nil {
			fatal(err)
		}
	}

	fmt.Fprintf(os.Stderr, "decoded %s games, %s moves into %s in %v\n",
		humanize.Comma(res.Counters.Games), humanize.Comma(res.Counters.Moves),
		humanize.Bytes(uint64(len(res.Data))), res.Elapsed)
	fmt.Fprintf(os.Stderr, "mode: %s, digest: %s\n", res.Mode, res.Digest)
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
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
