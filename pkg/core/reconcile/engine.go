package reconcile

import (
	"context"
	"fmt"
	"log"

	"finstruct/pkg/core/audit"
	"finstruct/pkg/core/columns"
	"finstruct/pkg/core/oracle"
)

// Policy controls when the oracle is consulted and how divergences are
// settled. The zero value queries the oracle only on low-confidence rows,
// auto-accepts corroborated results and falls back to the rule result when
// the oracle fails.
type Policy struct {
	AlwaysQueryOracle             bool
	AutoAcceptOnMatch             bool
	FallbackToRuleOnOracleFailure bool
	AllowManualResolution         bool
}

// DefaultPolicy mirrors the recommended production settings.
func DefaultPolicy() Policy {
	return Policy{
		AutoAcceptOnMatch:             true,
		FallbackToRuleOnOracleFailure: true,
	}
}

// Engine orchestrates the rule classifier, the oracle, the comparator and
// the audit ledger into one authoritative role map per row. An Engine
// serves exactly one stream at a time: it owns the classifier's cache and,
// when a session oracle is wired, that session's state.
type Engine struct {
	classifier *columns.Classifier
	oracle     oracle.Classifier
	ledger     audit.Ledger
	resolver   Resolver
	policy     Policy
}

// NewEngine wires the pieces together. oracleClassifier may be nil to run
// rules-only; ledger may be nil when audit persistence is disabled;
// resolver is only consulted when the policy allows manual resolution.
func NewEngine(oracleClassifier oracle.Classifier, ledger audit.Ledger, resolver Resolver, policy Policy) *Engine {
	return &Engine{
		classifier: columns.NewClassifier(),
		oracle:     oracleClassifier,
		ledger:     ledger,
		resolver:   resolver,
		policy:     policy,
	}
}

// Classifier exposes the engine's rule classifier, e.g. for field
// extraction against the maps this engine returns.
func (e *Engine) Classifier() *columns.Classifier { return e.classifier }

// ResetStream drops per-stream state before a new, unrelated row stream.
func (e *Engine) ResetStream() {
	e.classifier.ResetCache()
}

// ClassifyRow returns the authoritative role map for one row.
//
// The common path is cheap: when the rule result is already confident and
// the policy does not force oracle queries, it is returned without any
// network call. A returned error means the audit ledger could not be
// written - every other failure is absorbed into the returned map per the
// configured fallback policy, with an empty map signaling total failure.
func (e *Engine) ClassifyRow(ctx context.Context, row []string) (columns.RoleMap, error) {
	ruleMap := e.classifier.Classify(row, true)

	if e.oracle == nil {
		return ruleMap, nil
	}
	if !e.policy.AlwaysQueryOracle && confidentlyIdentified(ruleMap) {
		return ruleMap, nil
	}

	opinion, err := e.oracle.ClassifyRow(ctx, row)
	if err != nil {
		log.Printf("[reconcile] oracle failed: %v", err)
		if e.policy.FallbackToRuleOnOracleFailure {
			return ruleMap, nil
		}
		return columns.RoleMap{}, nil
	}

	cmp := Compare(ruleMap, opinion.Roles, row)
	if cmp.IsMatch && e.policy.AutoAcceptOnMatch {
		// Two independent classifiers corroborate each other; no audit
		// entry is needed for agreement.
		return ruleMap, nil
	}

	resolution, err := e.resolve(cmp, opinion)
	if err != nil {
		return nil, err
	}

	if err := e.record(ctx, cmp, opinion, resolution); err != nil {
		return nil, err
	}

	switch resolution {
	case audit.ResolutionOracle:
		return opinion.Roles.Clone(), nil
	case audit.ResolutionSkip:
		return columns.RoleMap{}, nil
	default:
		return ruleMap, nil
	}
}

func (e *Engine) resolve(cmp *Comparison, opinion *oracle.Opinion) (audit.Resolution, error) {
	if e.policy.AllowManualResolution && e.resolver != nil {
		resolution, err := e.resolver.Resolve(cmp, opinion)
		if err != nil {
			return "", fmt.Errorf("manual resolution failed: %w", err)
		}
		return resolution, nil
	}
	// Non-interactive default: the rule result stays authoritative.
	log.Printf("[reconcile] resolved by default policy (rule): %s", cmp.Summary)
	return audit.ResolutionRule, nil
}

// record appends the divergence to the ledger. Losing audit history would
// silently break the feedback loop, so a write failure is a hard error.
func (e *Engine) record(ctx context.Context, cmp *Comparison, opinion *oracle.Opinion, resolution audit.Resolution) error {
	if e.ledger == nil {
		return nil
	}

	rec := audit.NewRecord()
	rec.Row = append([]string(nil), cmp.Row...)
	rec.RuleResult = cmp.RuleMap.Strings()
	rec.OracleResult = cmp.OracleMap.Strings()
	rec.OracleConfidence = opinion.Confidence
	rec.OracleReasoning = opinion.Reasoning
	rec.Resolution = resolution

	if err := e.ledger.Append(ctx, rec); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// confidentlyIdentified reports whether the rule result already carries the
// three roles every statement row needs.
func confidentlyIdentified(m columns.RoleMap) bool {
	_, hasItem := m[columns.RoleItemName]
	_, hasCur := m[columns.RoleCurrentPeriod]
	_, hasPrev := m[columns.RolePreviousPeriod]
	return hasItem && hasCur && hasPrev
}
