// Package taxonomy loads the read-only competency tree (groups -> levels -> nodes)
// that the ledger hydrates onto.
package taxonomy

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

//go:embed default_taxonomy.yaml
var defaultTaxonomyFS embed.FS

const defaultTaxonomyFile = "default_taxonomy.yaml"

type NodeDef struct {
	Code  string `yaml:"code" json:"code"`
	Label string `yaml:"label" json:"label"`
}

type LevelGroup struct {
	Label string    `yaml:"label" json:"label"`
	Nodes []NodeDef `yaml:"nodes" json:"nodes"`
}

type Group struct {
	ID     string       `yaml:"id" json:"id"`
	Label  string       `yaml:"label" json:"label"`
	Levels []LevelGroup `yaml:"levels" json:"levels"`
}

type Taxonomy struct {
	Groups []Group `yaml:"groups" json:"groups"`
}

// NodeCount returns the number of node definitions, duplicates included.
func (t Taxonomy) NodeCount() int {
	n := 0
	for _, g := range t.Groups {
		for _, lg := range g.Levels {
			n += len(lg.Nodes)
		}
	}
	return n
}

// keyedGroup is the alternate file shape: a mapping of group id to group,
// where levels may also be spelled "niveaux" and nodes "acs" with "libelle" labels.
type keyedGroup struct {
	Label   string       `yaml:"label"`
	Nom     string       `yaml:"nom"`
	Levels  []keyedLevel `yaml:"levels"`
	Niveaux []keyedLevel `yaml:"niveaux"`
}

type keyedLevel struct {
	Label   string      `yaml:"label"`
	Libelle string      `yaml:"libelle"`
	Nodes   []keyedNode `yaml:"nodes"`
	ACs     []keyedNode `yaml:"acs"`
}

type keyedNode struct {
	Code    string `yaml:"code"`
	Label   string `yaml:"label"`
	Libelle string `yaml:"libelle"`
}

// Parse decodes a taxonomy from YAML or JSON. Both the list form
// ({"groups": [...]}) and the keyed form ({"<groupId>": {...}}) are accepted.
func Parse(data []byte) (Taxonomy, error) {
	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return Taxonomy{}, fmt.Errorf("decode taxonomy: %w", err)
	}
	if len(top) == 0 {
		return Taxonomy{}, errors.New("decode taxonomy: empty document")
	}
	if _, ok := top["groups"]; ok {
		var t Taxonomy
		if err := yaml.Unmarshal(data, &t); err != nil {
			return Taxonomy{}, fmt.Errorf("decode taxonomy: %w", err)
		}
		return t, nil
	}

	var keyed map[string]keyedGroup
	if err := yaml.Unmarshal(data, &keyed); err != nil {
		return Taxonomy{}, fmt.Errorf("decode keyed taxonomy: %w", err)
	}
	ids := make([]string, 0, len(keyed))
	for id := range keyed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := Taxonomy{Groups: make([]Group, 0, len(ids))}
	for _, id := range ids {
		kg := keyed[id]
		g := Group{ID: id, Label: firstNonEmpty(kg.Label, kg.Nom)}
		levels := kg.Levels
		if len(levels) == 0 {
			levels = kg.Niveaux
		}
		for _, kl := range levels {
			lg := LevelGroup{Label: firstNonEmpty(kl.Label, kl.Libelle)}
			nodes := kl.Nodes
			if len(nodes) == 0 {
				nodes = kl.ACs
			}
			for _, kn := range nodes {
				lg.Nodes = append(lg.Nodes, NodeDef{Code: kn.Code, Label: firstNonEmpty(kn.Label, kn.Libelle)})
			}
			g.Levels = append(g.Levels, lg)
		}
		t.Groups = append(t.Groups, g)
	}
	return t, nil
}

// Load reads the taxonomy at path, or the embedded default when path is empty.
func Load(path string, log *logger.Logger) (Taxonomy, error) {
	path = strings.TrimSpace(path)
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = defaultTaxonomyFS.ReadFile(defaultTaxonomyFile)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return Taxonomy{}, err
	}
	if log != nil {
		source := path
		if source == "" {
			source = "embedded:" + defaultTaxonomyFile
		}
		log.Info("Taxonomy loaded", "source", source, "groups", len(t.Groups), "nodes", t.NodeCount())
	}
	return t, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
