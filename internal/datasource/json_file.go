package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

type drawsDocument struct {
	Data []RawDraw `json:"data"`
}

// DecodeDraws parses {"data":[{"period":"...","date":"...","numbers":[d,d,d]}]}
func DecodeDraws(r io.Reader) ([]RawDraw, error) {
	var doc drawsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return doc.Data, nil
}

// LoadJSONFile reads a draw export from disk
func LoadJSONFile(path string) ([]RawDraw, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewDataSourceError("json_file", ErrCodeNotFound, path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open draws file: %w", err)
	}
	defer f.Close()

	draws, err := DecodeDraws(f)
	if err != nil {
		return nil, NewDataSourceError("json_file", ErrCodeInvalidData, path, err)
	}
	return draws, nil
}

// JSONFileSource serves draws from a local export file
type JSONFileSource struct {
	Path string
}

func (s JSONFileSource) Name() string {
	return "json_file"
}

func (s JSONFileSource) FetchDraws(ctx context.Context) ([]RawDraw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadJSONFile(s.Path)
}
