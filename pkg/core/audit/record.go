// Package audit persists every disagreement between the rule classifier
// and the oracle, together with how it was resolved. The ledger is
// append-only: records are never mutated or deleted, and the history is the
// only feedback loop for tuning the heuristics, so write failures are hard
// errors.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Resolution is the outcome recorded for one divergence.
type Resolution string

const (
	ResolutionRule   Resolution = "rule"   // rule result kept
	ResolutionOracle Resolution = "oracle" // oracle result adopted
	ResolutionSkip   Resolution = "skip"   // row dropped entirely
)

// Record snapshots one reconciled disagreement.
type Record struct {
	ID               string         `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	Row              []string       `json:"row"`
	RuleResult       map[string]int `json:"rule_result"`
	OracleResult     map[string]int `json:"oracle_result"`
	OracleConfidence float64        `json:"oracle_confidence"`
	OracleReasoning  string         `json:"oracle_reasoning"`
	Resolution       Resolution     `json:"resolution"`
}

// NewRecord stamps identity and time onto a record.
func NewRecord() *Record {
	return &Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}
}

// Stats aggregates resolution outcomes for post-hoc policy tuning.
type Stats struct {
	Total       int `json:"total"`
	RuleCount   int `json:"rule_count"`
	OracleCount int `json:"oracle_count"`
	SkipCount   int `json:"skip_count"`
}

// Ledger is an append-only store of reconciliation records.
type Ledger interface {
	Append(ctx context.Context, rec *Record) error
	Stats(ctx context.Context) (*Stats, error)
}

func tally(records []Record) *Stats {
	s := &Stats{Total: len(records)}
	for _, r := range records {
		switch r.Resolution {
		case ResolutionRule:
			s.RuleCount++
		case ResolutionOracle:
			s.OracleCount++
		case ResolutionSkip:
			s.SkipCount++
		}
	}
	return s
}
