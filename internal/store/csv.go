package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/domain"
)

// Sink persists a batch of records to durable storage.
type Sink interface {
	Save(ctx context.Context, records []*domain.Record) error
}

var lineBreaksRe = regexp.MustCompile(`[\r\n\t]+`)
var whitespaceRe = regexp.MustCompile(`\s+`)

const maxFieldLen = 100

// utf8BOM lets spreadsheet tools pick up the encoding; written once when the
// file is created.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter appends records to a date-stamped CSV file. The header row is
// written only when the file does not already exist, so drains within the
// same day — and across repeated runs on the same day — append safely.
type CSVWriter struct {
	dir    string
	prefix string
	now    func() time.Time
}

func NewCSVWriter(dir, prefix string) *CSVWriter {
	return &CSVWriter{dir: dir, prefix: prefix, now: time.Now}
}

// Path returns the output file path for the current run date.
func (w *CSVWriter) Path() string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.csv", w.prefix, w.now().Format("20060102")))
}

// Save appends the records. A batch of zero records is a no-op and does not
// touch the file.
func (w *CSVWriter) Save(_ context.Context, records []*domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	path := w.Path()
	_, statErr := os.Stat(path)
	fileExists := statErr == nil

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if !fileExists {
		if _, err := f.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	if !fileExists {
		if err := cw.Write(domain.CSVHeaders); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, r := range records {
		row := r.Row()
		for i, v := range row {
			row[i] = sanitizeField(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	log.Infof("saved %d new records to %s", len(records), path)
	return nil
}

// sanitizeField collapses embedded line breaks and whitespace runs and caps
// the value length before persistence.
func sanitizeField(v string) string {
	v = lineBreaksRe.ReplaceAllString(v, " ")
	v = strings.TrimSpace(whitespaceRe.ReplaceAllString(v, " "))
	if r := []rune(v); len(r) > maxFieldLen {
		return string(r[:maxFieldLen])
	}
	return v
}
