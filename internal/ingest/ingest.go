// Package ingest reads carrier booking sheets (CSV, XLSX, JSON) into raw
// records for the normalizer, and benchmark CSVs for the store.
package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/model"
)

// ErrUnsupportedFormat is returned for inputs no reader handles, including
// PDF confirmations and email exports.
var ErrUnsupportedFormat = eris.New("unsupported input format")

// Options describes where rows come from.
type Options struct {
	Source model.DataSource // tag stamped on every record; defaults per format
	File   string           // recorded on each record
	Sheet  string           // XLSX sheet name; first sheet when empty
}

// SourceForPath returns the data source a file extension implies.
func SourceForPath(path string) (model.DataSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return model.SourceCSV, nil
	case ".xlsx":
		return model.SourceExcel, nil
	case ".json":
		return model.SourceManual, nil
	case ".pdf":
		return model.SourcePDF, eris.Wrapf(ErrUnsupportedFormat, "ingest: %s: pdf parsing", path)
	case ".eml", ".msg":
		return model.SourceEmail, eris.Wrapf(ErrUnsupportedFormat, "ingest: %s: email parsing", path)
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "ingest: %s", path)
	}
}

// ReadFile reads one booking file, choosing the reader by extension.
func ReadFile(ctx context.Context, path string) ([]model.RawRecord, error) {
	src, err := SourceForPath(path)
	if err != nil {
		return nil, err
	}
	opts := Options{Source: src, File: filepath.Base(path)}

	var records []model.RawRecord
	switch src {
	case model.SourceExcel:
		records, err = ReadXLSX(path, opts)
	default:
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, eris.Wrapf(openErr, "ingest: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		if src == model.SourceManual {
			records, err = ReadJSON(ctx, f, opts)
		} else {
			if strings.EqualFold(filepath.Ext(path), ".tsv") {
				records, err = readDelimited(ctx, f, '\t', opts)
			} else {
				records, err = ReadCSV(ctx, f, opts)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	zap.L().Debug("ingest: file read",
		zap.String("file", path),
		zap.String("source", string(src)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// ReadFiles reads several files in order and concatenates their records.
func ReadFiles(ctx context.Context, paths []string) ([]model.RawRecord, error) {
	var all []model.RawRecord
	for _, p := range paths {
		recs, err := ReadFile(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

// ReadCSV reads a comma-separated booking sheet.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) ([]model.RawRecord, error) {
	return readDelimited(ctx, r, ',', opts)
}

func readDelimited(ctx context.Context, r io.Reader, delimiter rune, opts Options) ([]model.RawRecord, error) {
	if opts.Source == "" {
		opts.Source = model.SourceCSV
	}
	rows, err := collectRows(StreamCSV(ctx, r, delimiter))
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", opts.File)
	}
	return rowsToRecords(rows, opts), nil
}

// ReadXLSX reads a booking sheet from an Excel workbook.
func ReadXLSX(path string, opts Options) ([]model.RawRecord, error) {
	if opts.Source == "" {
		opts.Source = model.SourceExcel
	}
	if opts.File == "" {
		opts.File = filepath.Base(path)
	}
	rows, err := readSheet(path, opts.Sheet)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	return rowsToRecords(rows, opts), nil
}

// ReadJSON reads a JSON array of raw records. Records without a source get
// opts.Source; rows are numbered from 1 when missing.
func ReadJSON(ctx context.Context, r io.Reader, opts Options) ([]model.RawRecord, error) {
	records, err := decodeJSONArray[model.RawRecord](ctx, r)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", opts.File)
	}
	for i := range records {
		if records[i].Source == "" {
			records[i].Source = opts.Source
		}
		if records[i].File == "" {
			records[i].File = opts.File
		}
		if records[i].Row == 0 {
			records[i].Row = i + 1
		}
		if records[i].Rate == "" && records[i].Notes != "" {
			records[i].Rate = RateFromNotes(records[i].Notes)
		}
	}
	return records, nil
}
