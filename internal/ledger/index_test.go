package ledger

import (
	"errors"
	"testing"

	"github.com/yungbote/competence-ledger/internal/taxonomy"
)

func TestBuildIndexStampsPlacement(t *testing.T) {
	idx, err := BuildIndex(testTaxonomy())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Len() != 4 {
		t.Fatalf("Len: want=4 got=%d", idx.Len())
	}
	n, err := idx.Lookup("AC21.01")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if n.GroupID != "11" || n.LevelGroupIndex != 1 || n.Label != "audit" || n.GroupLabel != "Understand" {
		t.Fatalf("placement: got=%+v", n)
	}
	if n.Level() != 0 || len(n.History()) != 0 {
		t.Fatalf("initial state: level=%d history=%v", n.Level(), n.History())
	}
	codes := []string{}
	for _, n := range idx.Nodes() {
		codes = append(codes, n.Code)
	}
	want := []string{"AC11.01", "AC11.02", "AC21.01", "AC12.01"}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("order: want=%v got=%v", want, codes)
		}
	}
}

func TestBuildIndexRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		tax  taxonomy.Taxonomy
		code TaxonomyErrorCode
	}{
		{
			name: "duplicate",
			tax: taxonomy.Taxonomy{Groups: []taxonomy.Group{
				{ID: "11", Levels: []taxonomy.LevelGroup{{Nodes: []taxonomy.NodeDef{{Code: "AC11.01"}}}}},
				{ID: "12", Levels: []taxonomy.LevelGroup{{Nodes: []taxonomy.NodeDef{{Code: "AC11.01"}}}}},
			}},
			code: TaxonomyErrorDuplicateCode,
		},
		{
			name: "bad pattern",
			tax: taxonomy.Taxonomy{Groups: []taxonomy.Group{
				{ID: "11", Levels: []taxonomy.LevelGroup{{Nodes: []taxonomy.NodeDef{{Code: "AC1101"}}}}},
			}},
			code: TaxonomyErrorInvalidCode,
		},
		{
			name: "empty",
			tax:  taxonomy.Taxonomy{},
			code: TaxonomyErrorEmpty,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildIndex(tc.tax)
			if !errors.Is(err, ErrMalformedTaxonomy) {
				t.Fatalf("expected ErrMalformedTaxonomy, got=%v", err)
			}
			var te *TaxonomyError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TaxonomyError, got=%T", err)
			}
			if te.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, te.Code)
			}
		})
	}
}

func TestLookupNotFound(t *testing.T) {
	idx, err := BuildIndex(testTaxonomy())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if _, err := idx.Lookup("AC99.99"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup: want ErrNotFound got=%v", err)
	}
}
