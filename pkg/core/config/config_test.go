package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
reconciliation:
  enableOracle: true
  alwaysQueryOracle: true
  auditLogPath: /tmp/ledger.json
provider:
  name: anthropic
  model: claude-sonnet-4-20250514
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Reconciliation.EnableOracle || !cfg.Reconciliation.AlwaysQueryOracle {
		t.Errorf("oracle switches not applied: %+v", cfg.Reconciliation)
	}
	if cfg.Reconciliation.AuditLogPath != "/tmp/ledger.json" {
		t.Errorf("auditLogPath = %q", cfg.Reconciliation.AuditLogPath)
	}
	// Untouched keys keep their defaults.
	if cfg.Reconciliation.OracleTimeoutSeconds != 30 {
		t.Errorf("oracleTimeoutSeconds = %d, want default 30", cfg.Reconciliation.OracleTimeoutSeconds)
	}
	if cfg.Provider.Name != "anthropic" {
		t.Errorf("provider name = %q", cfg.Provider.Name)
	}
	if cfg.Provider.MaxTokens != 1024 {
		t.Errorf("max_tokens = %d, want default 1024", cfg.Provider.MaxTokens)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
reconciliation:
  enableOracel: true
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadRejectsBadLimits(t *testing.T) {
	path := writeConfig(t, `
reconciliation:
  oracleTimeoutSeconds: 0
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	if cfg.Reconciliation.EnableOracle {
		t.Error("oracle should be disabled by default")
	}
	if !cfg.Reconciliation.FallbackToRuleOnOracleFailure {
		t.Error("fallback to rule should be the default")
	}
	if cfg.Reconciliation.AuditLogPath == "" {
		t.Error("default audit log path is empty")
	}
}
