package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseListForm(t *testing.T) {
	raw := []byte(`
groups:
  - id: "11"
    label: Understand
    levels:
      - label: Level 1
        nodes:
          - { code: AC11.01, label: first }
          - { code: AC11.02, label: second }
`)
	tax, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tax.Groups) != 1 || tax.Groups[0].ID != "11" {
		t.Fatalf("groups: got=%+v", tax.Groups)
	}
	if tax.NodeCount() != 2 {
		t.Fatalf("NodeCount: want=2 got=%d", tax.NodeCount())
	}
}

func TestParseKeyedJSONForm(t *testing.T) {
	raw := []byte(`{
  "12": {"nom": "Design", "niveaux": [{"libelle": "N1", "acs": [{"code": "AC12.01", "libelle": "strategy"}]}]},
  "11": {"nom": "Understand", "niveaux": [{"acs": [{"code": "AC11.01", "libelle": "present"}]}]}
}`)
	tax, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tax.Groups) != 2 {
		t.Fatalf("groups: want=2 got=%d", len(tax.Groups))
	}
	if tax.Groups[0].ID != "11" || tax.Groups[1].ID != "12" {
		t.Fatalf("group order: got=%q,%q", tax.Groups[0].ID, tax.Groups[1].ID)
	}
	n := tax.Groups[1].Levels[0].Nodes[0]
	if n.Code != "AC12.01" || n.Label != "strategy" {
		t.Fatalf("node: got=%+v", n)
	}
	if tax.Groups[1].Label != "Design" || tax.Groups[1].Levels[0].Label != "N1" {
		t.Fatalf("labels: got=%+v", tax.Groups[1])
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse([]byte("")); err == nil {
		t.Fatalf("Parse(empty): expected error")
	}
	if _, err := Parse([]byte("- just\n- a list\n")); err == nil {
		t.Fatalf("Parse(list): expected error")
	}
}

func TestLoadDefault(t *testing.T) {
	tax, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tax.NodeCount() == 0 {
		t.Fatalf("default taxonomy has no nodes")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.json")
	if err := os.WriteFile(path, []byte(`{"groups":[{"id":"14","levels":[{"nodes":[{"code":"AC14.01","label":"markup"}]}]}]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tax, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tax.NodeCount() != 1 {
		t.Fatalf("NodeCount: want=1 got=%d", tax.NodeCount())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("Load(missing): expected error")
	}
}
