package steg_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessteg/pkg/steg"
)

func TestReportRoundTrip(t *testing.T) {
	ctx := context.Background()
	data := []byte("report me")
	codec := steg.New(steg.WithChunks(3))

	enc, err := codec.Encode(ctx, data)
	require.NoError(t, err)
	dec, err := codec.Decode(ctx, enc.Document)
	require.NoError(t, err)

	rows := append(enc.ReportRows(), dec.ReportRows()...)
	require.Len(t, rows, 6)

	path := filepath.Join(t.TempDir(), "report.parquet")
	require.NoError(t, steg.WriteReportRows(path, rows))

	got, err := steg.ReadReport(path, 2)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	first := got[0]
	assert.Equal(t, enc.RunID.String(), first.RunID)
	assert.Equal(t, steg.DirectionEncode, first.Direction)
	assert.Equal(t, "compatible", first.Mode)
	assert.Equal(t, int32(3), first.Bytes)
	assert.Equal(t, steg.DirectionDecode, got[3].Direction)
}
