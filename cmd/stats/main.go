package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"chessteg/pkg/steg"
)

type runStats struct {
	runID      string
	direction  string
	mode       string
	games      int
	moves      int64
	bits       int64
	bytes      int64
	terminated int
	exhausted  int
	minMoves   int32
	maxMoves   int32
}

func (rs *runStats) Add(row steg.ReportRow) {
	if rs.games == 0 || row.Moves < rs.minMoves {
		rs.minMoves = row.Moves
	}
	if row.Moves > rs.maxMoves {
		rs.maxMoves = row.Moves
	}
	rs.games++
	rs.moves += int64(row.Moves)
	rs.bits += int64(row.Bits)
	rs.bytes += int64(row.Bytes)
	if row.Terminated {
		rs.terminated++
	}
	if row.Exhausted {
		rs.exhausted++
	}
}

func main() {
	reportPath := pflag.StringP("report", "r", "", "input parquet report")
	parallel := pflag.Int64("parallel", 4, "parquet reader parallelism")
	pflag.Parse()

	if *reportPath == "" {
		fatal(fmt.Errorf("specify --report"))
	}
	if *parallel <= 0 {
		fatal(fmt.Errorf("parallel must be > 0"))
	}

	rows, err := steg.ReadReport(*reportPath, *parallel)
	if err != nil {
		fatal(err)
	}

	runs := make(map[string]*runStats)
	var order []string
	for _, row := range rows {
		key := row.RunID + "/" + row.Direction
		rs, ok := runs[key]
		if !ok {
			rs = &runStats{runID: row.RunID, direction: row.Direction, mode: row.Mode}
			runs[key] = rs
			order = append(order, key)
		}
		rs.Add(row)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return runs[order[i]].direction > runs[order[j]].direction
	})

	fmt.Printf("input report: %s\n", *reportPath)
	fmt.Printf("rows: %d, runs: %d\n", len(rows), len(order))
	for _, key := range order {
		rs := runs[key]
		fmt.Printf("%s %s (%s)\n", rs.direction, rs.runID, rs.mode)
		fmt.Printf("  games: %s, moves: %s (min %d, max %d)\n",
			humanize.Comma(int64(rs.games)), humanize.Comma(rs.moves), rs.minMoves, rs.maxMoves)
		fmt.Printf("  payload: %s, bits: %s", humanize.Bytes(uint64(rs.bytes)), humanize.Comma(rs.bits))
		if rs.moves > 0 {
			fmt.Printf(" (%.2f bits/move)", float64(rs.bits)/float64(rs.moves))
		}
		fmt.Println()
		fmt.Printf("  terminated early: %d, exhausted: %d\n", rs.terminated, rs.exhausted)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
