package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/casedex/internal/model"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeGraph(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "proof.yaml")
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func decodeReport(t *testing.T, out string) model.ValidationReport {
	t.Helper()
	var report model.ValidationReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Expected JSON report on stdout, got %q: %v", out, err)
	}
	return report
}

func TestValidateCommand_Sound(t *testing.T) {
	p := writeGraph(t, `
nodes:
  - {id: E1, kind: evidence}
  - {id: C1, kind: claim}
  - {id: C2, kind: claim}
edges:
  - {source: E1, target: C1}
  - {source: C1, target: C2}
`)
	out, err := execute(t, "validate", p)
	if err != nil {
		t.Fatalf("Expected sound graph to pass, got %v", err)
	}

	report := decodeReport(t, out)
	if !report.IsAcyclic || len(report.UnsupportedClaims) != 0 {
		t.Errorf("Expected acyclic and supported, got %+v", report)
	}
}

func TestValidateCommand_Cycle(t *testing.T) {
	p := writeGraph(t, `
nodes:
  - {id: E1, kind: evidence}
  - {id: C1, kind: claim}
  - {id: C2, kind: claim}
edges:
  - {source: E1, target: C1}
  - {source: C1, target: C2}
  - {source: C2, target: C1}
`)
	out, err := execute(t, "validate", p)
	if err == nil {
		t.Error("Expected a cyclic graph to fail")
	}

	report := decodeReport(t, out)
	if report.IsAcyclic {
		t.Error("Expected is_acyclic false")
	}
	if want := [][]string{{"C1", "C2"}}; !reflect.DeepEqual(report.Cycles, want) {
		t.Errorf("Expected cycles %v, got %v", want, report.Cycles)
	}
}

func TestValidateCommand_SkipInvalid(t *testing.T) {
	p := writeGraph(t, `
nodes:
  - {id: E1, kind: evidence}
  - {id: C1, kind: claim}
edges:
  - {source: E1, target: C1}
  - {source: E1, target: C9}
`)
	if _, err := execute(t, "validate", p); !errors.Is(err, model.ErrMalformedGraph) {
		t.Errorf("Expected ErrMalformedGraph, got %v", err)
	}

	defer func() { skipInvalid = false }()
	if _, err := execute(t, "validate", p, "--skip-invalid"); err != nil {
		t.Errorf("Expected bad edge to be skipped, got %v", err)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".casedex", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected an existing config file to be kept")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Expected valid YAML, got %v", err)
	}
	if !reflect.DeepEqual(cfg, *model.DefaultConfig()) {
		t.Errorf("Expected defaults to round trip, got %+v", cfg)
	}
}

func TestScanThenSearch(t *testing.T) {
	root := t.TempDir()
	for rel, body := range map[string]string{
		"housing/Nnamdi_Okpala_Not_Homeless.pdf": "%PDF-1.4 decision",
		"Compensation_Claim_Evidence.pdf":        "%PDF-1.4 schedule",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	outDir := t.TempDir()
	analysis := filepath.Join(outDir, "tag_analysis.json")
	index := filepath.Join(outDir, "search_index.json")

	if _, err := execute(t, "scan", root, "--analysis", analysis, "--index", index, "--no-cache"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, p := range []string{analysis, index} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s to be written: %v", p, err)
		}
	}

	out, err := execute(t, "search", "housing_denial", "--index", index, "--analysis", analysis)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "housing/Nnamdi_Okpala_Not_Homeless.pdf") {
		t.Errorf("Expected the housing document in %q", out)
	}
	if strings.Contains(out, "Compensation_Claim_Evidence.pdf") {
		t.Errorf("Expected only housing documents in %q", out)
	}

	if _, err := execute(t, "search", "housing_denial AND", "--index", index); !errors.Is(err, model.ErrInvalidQuery) {
		t.Errorf("Expected ErrInvalidQuery, got %v", err)
	}

	defer func() { searchCritical = false }()
	out, err = execute(t, "search", "--critical", "--index", index)
	if err != nil {
		t.Fatalf("search --critical failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 critical document, got %q", out)
	}
	fields := strings.Split(lines[0], "\t")
	if len(fields) != 3 || fields[1] != "Compensation_Claim_Evidence.pdf" || !strings.Contains(fields[2], "critical_evidence") {
		t.Errorf("Expected id, filename and tags for the critical document, got %q", lines[0])
	}
}
