package dag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/casedex/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadGraph reads a proof graph from a .json file or a YAML document
func LoadGraph(path string) (*model.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	var g model.Graph
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &g)
	default:
		err = yaml.Unmarshal(data, &g)
	}
	if err != nil {
		return nil, fmt.Errorf("parse graph %s: %w", path, err)
	}

	return &g, nil
}

// ValidateGraph is Validate over a loaded graph
func ValidateGraph(g *model.Graph) (*model.ValidationReport, error) {
	return Validate(g.Nodes, g.Edges)
}
