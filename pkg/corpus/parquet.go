package corpus

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"
)

// ImportParquet bulk-loads a frequency list from a Parquet file into the
// store. The file must carry a "word" string column and a "rank" integer
// column; a "per_million" column is used when present. Returns the number of
// imported rows.
//
// Published frequency lists (SUBTLEX, wordfreq exports) ship in this shape.
func (s *Store) ImportParquet(ctx context.Context, path string) (int, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return 0, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return 0, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return 0, fmt.Errorf("failed to read parquet schema: %w", err)
	}

	wordIndices := schema.FieldIndices("word")
	rankIndices := schema.FieldIndices("rank")
	if len(wordIndices) == 0 || len(rankIndices) == 0 {
		return 0, fmt.Errorf("parquet file must have 'word' and 'rank' columns")
	}
	perMillionIndices := schema.FieldIndices("per_million")

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer table.Release()

	words, err := stringValues(table.Column(wordIndices[0]).Data())
	if err != nil {
		return 0, fmt.Errorf("word column: %w", err)
	}
	ranks, err := intValues(table.Column(rankIndices[0]).Data())
	if err != nil {
		return 0, fmt.Errorf("rank column: %w", err)
	}

	var perMillion []float64
	if len(perMillionIndices) > 0 {
		perMillion, err = floatValues(table.Column(perMillionIndices[0]).Data())
		if err != nil {
			return 0, fmt.Errorf("per_million column: %w", err)
		}
	}

	if len(words) != len(ranks) {
		return 0, fmt.Errorf("column length mismatch: %d words, %d ranks", len(words), len(ranks))
	}

	rows := make([]Rank, 0, len(words))
	for i := range words {
		r := Rank{Word: words[i], Rank: int(ranks[i])}
		if perMillion != nil && i < len(perMillion) {
			r.PerMillion = perMillion[i]
		}
		rows = append(rows, r)
	}

	if err := s.putBatch(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func stringValues(chunked *arrow.Chunked) ([]string, error) {
	values := make([]string, 0, chunked.Len())
	for _, chunk := range chunked.Chunks() {
		col, ok := chunk.(*array.String)
		if !ok {
			return nil, fmt.Errorf("expected string values, got %s", chunk.DataType())
		}
		for i := 0; i < col.Len(); i++ {
			values = append(values, col.Value(i))
		}
	}
	return values, nil
}

func intValues(chunked *arrow.Chunked) ([]int64, error) {
	values := make([]int64, 0, chunked.Len())
	for _, chunk := range chunked.Chunks() {
		switch col := chunk.(type) {
		case *array.Int64:
			for i := 0; i < col.Len(); i++ {
				values = append(values, col.Value(i))
			}
		case *array.Int32:
			for i := 0; i < col.Len(); i++ {
				values = append(values, int64(col.Value(i)))
			}
		default:
			return nil, fmt.Errorf("expected integer values, got %s", chunk.DataType())
		}
	}
	return values, nil
}

func floatValues(chunked *arrow.Chunked) ([]float64, error) {
	values := make([]float64, 0, chunked.Len())
	for _, chunk := range chunked.Chunks() {
		switch col := chunk.(type) {
		case *array.Float64:
			for i := 0; i < col.Len(); i++ {
				values = append(values, col.Value(i))
			}
		case *array.Float32:
			for i := 0; i < col.Len(); i++ {
				values = append(values, float64(col.Value(i)))
			}
		default:
			return nil, fmt.Errorf("expected float values, got %s", chunk.DataType())
		}
	}
	return values, nil
}
