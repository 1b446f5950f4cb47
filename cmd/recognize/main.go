// Command recognize extracts financial-statement structure from a table
// document: it locates each statement's boundaries, classifies column
// roles row by row, and prints the named fields of every data row.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"finstruct/pkg/core/audit"
	"finstruct/pkg/core/columns"
	"finstruct/pkg/core/config"
	"finstruct/pkg/core/ingest"
	"finstruct/pkg/core/llm"
	"finstruct/pkg/core/oracle"
	"finstruct/pkg/core/prompt"
	"finstruct/pkg/core/reconcile"
	"finstruct/pkg/core/structure"
)

var statementKinds = []structure.StatementKind{
	structure.BalanceSheet,
	structure.IncomeStatement,
	structure.CashFlow,
}

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	inputPath := flag.String("input", "", "HTML or Markdown document containing statement tables")
	kindFlag := flag.String("kind", "", "statement kind: balance_sheet, income_statement or cash_flow (auto-detect when empty)")
	promptsPath := flag.String("prompts", "resources/prompts", "prompt library directory")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: recognize -input <document.html|document.md> [-config config.yaml] [-kind balance_sheet]")
		os.Exit(1)
	}

	godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := prompt.LoadFromDirectory(*promptsPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to hardcoded prompts")
	} else {
		fmt.Printf("[PROMPT] Loaded %d prompts from %s\n", prompt.Get().Count(), *promptsPath)
	}

	tables, err := loadTables(*inputPath)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[INGEST] %s: %d table(s)\n", *inputPath, len(tables))

	ctx := context.Background()

	oracleClassifier, cleanup, err := buildOracle(ctx, cfg)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ledger, err := buildLedger(ctx, cfg)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}

	policy := reconcile.Policy{
		AlwaysQueryOracle:             cfg.Reconciliation.AlwaysQueryOracle,
		AutoAcceptOnMatch:             cfg.Reconciliation.AutoAcceptOnMatch,
		FallbackToRuleOnOracleFailure: cfg.Reconciliation.FallbackToRuleOnOracleFailure,
		AllowManualResolution:         cfg.Reconciliation.AllowManualResolution,
	}
	resolver := &reconcile.ConsoleResolver{In: os.Stdin, Out: os.Stdout}

	for i, table := range tables {
		kind, result := identify(table.Rows, *kindFlag)
		if result == nil {
			fmt.Printf("[TABLE %d] no statement kind matched, skipping\n", i+1)
			continue
		}
		fmt.Printf("[TABLE %d] kind=%s valid=%t confidence=%.2f header=%d range=[%d,%d]\n",
			i+1, kind, result.IsValid, result.Confidence, result.HeaderRow, result.StartRow, result.EndRow)
		if len(result.MissingKeys) > 0 {
			fmt.Printf("[TABLE %d] missing anchors: %s\n", i+1, strings.Join(result.MissingKeys, ", "))
		}

		// Each table is an independent stream with its own engine state.
		engine := reconcile.NewEngine(oracleClassifier, ledger, resolver, policy)
		processRows(ctx, engine, table.Rows, result)
	}

	printStats(ctx, ledger)
}

// identify picks the statement kind for a table: the forced kind when
// given, otherwise the kind with the highest identification confidence.
func identify(rows [][]string, forced string) (structure.StatementKind, *structure.Result) {
	if forced != "" {
		id := structure.NewIdentifier(structure.StatementKind(forced))
		if id == nil {
			fmt.Printf("[ERROR] unknown statement kind %q\n", forced)
			os.Exit(1)
		}
		r := id.Identify(rows)
		return id.Kind(), &r
	}

	var bestKind structure.StatementKind
	var best *structure.Result
	for _, kind := range statementKinds {
		r := structure.NewIdentifier(kind).Identify(rows)
		if len(r.KeyPositions) == 0 {
			continue
		}
		if best == nil || r.Confidence > best.Confidence {
			bestKind, best = kind, &r
		}
	}
	return bestKind, best
}

func processRows(ctx context.Context, engine *reconcile.Engine, rows [][]string, result *structure.Result) {
	start, end := result.StartRow, result.EndRow
	if !result.IsValid || start < 0 {
		// Fall back to the whole table when segmentation failed.
		start, end = 0, len(rows)-1
	}
	if end >= len(rows) {
		end = len(rows) - 1
	}

	for rowIdx := start; rowIdx <= end; rowIdx++ {
		if rowIdx == result.HeaderRow {
			continue
		}
		row := rows[rowIdx]

		roleMap, err := engine.ClassifyRow(ctx, row)
		if err != nil {
			fmt.Printf("[ERROR] row %d: %v\n", rowIdx, err)
			os.Exit(1)
		}
		if len(roleMap) == 0 {
			continue
		}

		fields := columns.ExtractFields(row, roleMap)
		if fields.ItemName == "" {
			continue
		}
		fmt.Printf("  %-24s current=%-14s previous=%-14s note=%s\n",
			fields.ItemName, fields.CurrentPeriod, fields.PreviousPeriod, fields.Note)
	}
}

func loadTables(path string) ([]ingest.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ingest.TablesFromHTML(f)
	case ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ingest.TablesFromMarkdown(data), nil
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .html or .md)", filepath.Ext(path))
	}
}

// buildOracle constructs the configured oracle classifier, or nil when
// rules-only operation is configured. The returned cleanup releases any
// session resources.
func buildOracle(ctx context.Context, cfg *config.Config) (oracle.Classifier, func(), error) {
	noop := func() {}
	if !cfg.Reconciliation.EnableOracle {
		return nil, noop, nil
	}

	retry := llm.RetryPolicy{
		Timeout:    time.Duration(cfg.Reconciliation.OracleTimeoutSeconds) * time.Second,
		MaxRetries: cfg.Reconciliation.OracleMaxRetries,
	}

	switch cfg.Provider.Name {
	case "openai":
		base := cfg.Provider.BaseURL
		if base == "" {
			base = "https://api.openai.com"
		}
		return oracle.NewAgent(&llm.OpenAICompatProvider{
			BaseURL:     base,
			Model:       cfg.Provider.Model,
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   cfg.Provider.MaxTokens,
			Temperature: cfg.Provider.Temperature,
			Retry:       retry,
		}), noop, nil
	case "deepseek":
		base := cfg.Provider.BaseURL
		if base == "" {
			base = "https://api.deepseek.com"
		}
		return oracle.NewAgent(&llm.OpenAICompatProvider{
			BaseURL:     base,
			Model:       cfg.Provider.Model,
			APIKeyEnv:   "DEEPSEEK_API_KEY",
			MaxTokens:   cfg.Provider.MaxTokens,
			Temperature: cfg.Provider.Temperature,
			Retry:       retry,
		}), noop, nil
	case "anthropic":
		base := cfg.Provider.BaseURL
		if base == "" {
			base = "https://api.anthropic.com"
		}
		return oracle.NewAgent(&llm.AnthropicProvider{
			BaseURL:     base,
			Model:       cfg.Provider.Model,
			APIKeyEnv:   "ANTHROPIC_API_KEY",
			MaxTokens:   cfg.Provider.MaxTokens,
			Temperature: cfg.Provider.Temperature,
			Retry:       retry,
		}), noop, nil
	case "gemini":
		return oracle.NewAgent(&llm.GeminiProvider{Model: cfg.Provider.Model}), noop, nil
	case "gemini-session":
		session, err := oracle.NewSessionOracle(ctx, cfg.Provider.Model)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to start oracle session: %w", err)
		}
		return session, func() { session.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

// buildLedger picks Postgres when DATABASE_URL is set, the JSON file
// ledger otherwise.
func buildLedger(ctx context.Context, cfg *config.Config) (audit.Ledger, error) {
	if !cfg.Reconciliation.PersistAuditLog {
		return nil, nil
	}

	if os.Getenv("DATABASE_URL") != "" {
		if err := audit.InitDB(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect audit database: %w", err)
		}
		fmt.Println("[AUDIT] Using Postgres ledger")
		return audit.NewPGLedger(audit.GetPool()), nil
	}

	ledger, err := audit.NewFileLedger(cfg.Reconciliation.AuditLogPath)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[AUDIT] Using file ledger at %s\n", cfg.Reconciliation.AuditLogPath)
	return ledger, nil
}

func printStats(ctx context.Context, ledger audit.Ledger) {
	if ledger == nil {
		return
	}
	stats, err := ledger.Stats(ctx)
	if err != nil {
		fmt.Printf("[WARNING] Failed to read ledger stats: %v\n", err)
		return
	}
	fmt.Printf("[AUDIT] %d recorded resolutions (rule=%d oracle=%d skip=%d)\n",
		stats.Total, stats.RuleCount, stats.OracleCount, stats.SkipCount)
}
