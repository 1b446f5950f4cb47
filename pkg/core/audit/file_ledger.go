package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileLedger keeps the ledger as a JSON list on disk. Appending re-reads
// and rewrites the whole file, which is only safe for a single writer;
// parallel streams must either share one FileLedger behind their own lock
// or use the Postgres ledger instead.
type FileLedger struct {
	path string
}

var _ Ledger = (*FileLedger)(nil)

// NewFileLedger creates the ledger's directory if needed.
func NewFileLedger(path string) (*FileLedger, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}
	return &FileLedger{path: path}, nil
}

// Append adds one record to the on-disk list.
func (l *FileLedger) Append(ctx context.Context, rec *Record) error {
	records, err := l.read()
	if err != nil {
		return err
	}
	records = append(records, *rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// Stats counts resolution outcomes across the whole ledger.
func (l *FileLedger) Stats(ctx context.Context) (*Stats, error) {
	records, err := l.read()
	if err != nil {
		return nil, err
	}
	return tally(records), nil
}

func (l *FileLedger) read() ([]Record, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("audit log corrupted: %w", err)
	}
	return records, nil
}
