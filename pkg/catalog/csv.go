// Package catalog loads orbital records from a local CSV file.
//
// The file is optional. A missing file (or an empty path) is not an error and
// yields no records, which callers use as the signal to fall back to the
// upstream API.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/Sternrassler/neo-orbit-api/pkg/orbit"
	"github.com/rs/zerolog/log"
)

const utf8BOM = "\ufeff"

// LoadCSV reads every row of the CSV file at path.
func LoadCSV(path string) ([]orbit.Record, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("CSV catalog not found")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Int("rows", len(records)).
		Msg("CSV catalog loaded")

	return records, nil
}

// ReadCSV maps every data row of r through orbit.FromCSVRow. The first row is
// the header. Cells missing from short rows are treated as absent columns;
// extra cells and unknown columns are ignored.
func ReadCSV(r io.Reader) ([]orbit.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []orbit.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		cells := make(map[string]string, len(header))
		for i, col := range header {
			if i >= len(row) {
				break
			}
			cells[col] = row[i]
		}
		records = append(records, orbit.FromCSVRow(cells))
	}

	return records, nil
}
