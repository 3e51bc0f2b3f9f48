package steg

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// ReportRow is one chunk of an encode run or one game of a decode run.
type ReportRow struct {
	RunID      string `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Direction  string `parquet:"name=direction, type=BYTE_ARRAY, convertedtype=UTF8"`
	Mode       string `parquet:"name=mode, type=BYTE_ARRAY, convertedtype=UTF8"`
	Index      int32  `parquet:"name=index, type=INT32"`
	Bytes      int32  `parquet:"name=bytes, type=INT32"`
	Bits       int32  `parquet:"name=bits, type=INT32"`
	Moves      int32  `parquet:"name=moves, type=INT32"`
	Terminated bool   `parquet:"name=terminated, type=BOOLEAN"`
	Exhausted  bool   `parquet:"name=exhausted, type=BOOLEAN"`
}

const (
	DirectionEncode = "encode"
	DirectionDecode = "decode"
)

func (r *EncodeResult) ReportRows() []ReportRow {
	rows := make([]ReportRow, len(r.Chunks))
	for i, st := range r.Chunks {
		rows[i] = ReportRow{
			RunID:      r.RunID.String(),
			Direction:  DirectionEncode,
			Mode:       r.Mode.String(),
			Index:      int32(st.Index),
			Bytes:      int32(st.Bytes),
			Bits:       int32(st.BitsConsumed),
			Moves:      int32(st.Moves),
			Terminated: st.Terminated,
			Exhausted:  st.Exhausted,
		}
	}
	return rows
}

func (r *DecodeResult) ReportRows() []ReportRow {
	rows := make([]ReportRow, len(r.Games))
	for i, st := range r.Games {
		rows[i] = ReportRow{
			RunID:      r.RunID.String(),
			Direction:  DirectionDecode,
			Mode:       r.Mode.String(),
			Index:      int32(st.Index),
			Bytes:      int32(st.Bits / 8),
			Bits:       int32(st.Bits),
			Moves:      int32(st.Moves),
			Terminated: st.Terminated,
		}
	}
	return rows
}

type ReportSchema struct {
	Name   string        `json:"name"`
	Fields []ReportField `json:"fields"`
}

type ReportField struct {
	Name     string      `json:"name"`
	Type     interface{} `json:"type"`
	Nullable bool        `json:"nullable"`
}

//go:embed report_schema.json
var reportSchemaJSON []byte

// WriteReport drains rows into a SNAPPY-compressed parquet file.
func WriteReport(path string, rows <-chan ReportRow, parallel int64) error {
	schema, err := loadReportSchema()
	if err != nil {
		return err
	}
	if err := validateSchema(schema, ReportRow{}); err != nil {
		return err
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(ReportRow), parallel)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for row := range rows {
		if err := parquetWriter.Write(row); err != nil {
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	return fileWriter.Close()
}

// WriteReportRows is WriteReport for rows already in memory.
func WriteReportRows(path string, rows []ReportRow) error {
	ch := make(chan ReportRow, len(rows))
	for _, row := range rows {
		ch <- row
	}
	close(ch)
	return WriteReport(path, ch, 1)
}

func ReadReport(path string, parallel int64) ([]ReportRow, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(ReportRow), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	rows := make([]ReportRow, 0, num)
	batchSize := 1024
	for offset := 0; offset < num; offset += batchSize {
		if remain := num - offset; remain < batchSize {
			batchSize = remain
		}
		batch := make([]ReportRow, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, err
		}
		rows = append(rows, batch...)
	}
	return rows, nil
}

func loadReportSchema() (ReportSchema, error) {
	var schema ReportSchema
	if err := json.Unmarshal(reportSchemaJSON, &schema); err != nil {
		return ReportSchema{}, fmt.Errorf("report schema: %w", err)
	}
	return schema, nil
}

func validateSchema(schema ReportSchema, sample any) error {
	schemaFields := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		schemaFields[field.Name] = struct{}{}
	}
	structFields := structParquetFieldNames(sample)
	missing := diffKeys(schemaFields, structFields)
	extra := diffKeys(structFields, schemaFields)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("parquet schema mismatch: missing=%v extra=%v", missing, extra)
	}
	return nil
}

func structParquetFieldNames(sample any) map[string]struct{} {
	fields := map[string]struct{}{}
	v := reflect.TypeOf(sample)
	for i := 0; i < v.NumField(); i++ {
		if name := parseParquetName(v.Field(i).Tag.Get("parquet")); name != "" {
			fields[name] = struct{}{}
		}
	}
	return fields
}

func parseParquetName(tag string) string {
	for _, part := range strings.Split(tag, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && kv[0] == "name" {
			return kv[1]
		}
	}
	return ""
}

func diffKeys(a, b map[string]struct{}) []string {
	var diff []string
	for key := range a {
		if _, ok := b[key]; !ok {
			diff = append(diff, key)
		}
	}
	return diff
}
