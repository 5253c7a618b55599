package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// WriteJSON writes benchmark results to a JSON file.
// A ".zst" suffix compresses the file with zstd.
func WriteJSON(filename string, results Results, commandLine string) (err error) {
	results.Timestamp = time.Now().Format(time.RFC3339)
	results.MachineInfo.CommandLine = commandLine

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(filename, ".zst") {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		defer func() {
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}()
		w = zw
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// ReadJSON loads results written by WriteJSON, such as a -compare baseline.
func ReadJSON(filename string) (Results, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Results{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filename, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return Results{}, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	var results Results
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return Results{}, fmt.Errorf("decode %s: %w", filename, err)
	}
	return results, nil
}
