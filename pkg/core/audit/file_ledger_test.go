package audit

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileLedgerAppendAndStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reconciliations.json")
	ledger, err := NewFileLedger(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	resolutions := []Resolution{ResolutionRule, ResolutionRule, ResolutionOracle, ResolutionSkip}
	for _, res := range resolutions {
		rec := NewRecord()
		rec.Row = []string{"货币资金", "七、1", "1,000.00", "900.00"}
		rec.RuleResult = map[string]int{"item_name": 0, "note": 1}
		rec.OracleResult = map[string]int{"item_name": 0, "note": 2}
		rec.OracleConfidence = 0.7
		rec.Resolution = res
		if err := ledger.Append(ctx, rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	stats, err := ledger.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 4 || stats.RuleCount != 2 || stats.OracleCount != 1 || stats.SkipCount != 1 {
		t.Errorf("Stats() = %+v, want total=4 rule=2 oracle=1 skip=1", stats)
	}
}

func TestFileLedgerStatsOnMissingFile(t *testing.T) {
	ledger, err := NewFileLedger(filepath.Join(t.TempDir(), "never_written.json"))
	if err != nil {
		t.Fatal(err)
	}
	stats, err := ledger.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Stats().Total = %d, want 0", stats.Total)
	}
}

func TestNewFileLedgerEmptyPath(t *testing.T) {
	if _, err := NewFileLedger(""); err == nil {
		t.Error("NewFileLedger accepted an empty path")
	}
}

func TestNewRecordIdentity(t *testing.T) {
	a, b := NewRecord(), NewRecord()
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("record IDs not unique: %q vs %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Error("record timestamp not set")
	}
}
