package model

// NodeKind distinguishes evidence from claims in a proof graph
type NodeKind string

const (
	NodeEvidence NodeKind = "evidence"
	NodeClaim    NodeKind = "claim"
)

// Valid reports whether k is a known node kind
func (k NodeKind) Valid() bool {
	return k == NodeEvidence || k == NodeClaim
}

// Node is a proof graph vertex
type Node struct {
	ID    string   `json:"id" yaml:"id"`
	Kind  NodeKind `json:"kind" yaml:"kind"`
	Label string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// Edge is a directed proof relationship. Contradiction edges disprove their
// target and are excluded from acyclicity and soundness checks.
type Edge struct {
	Source      string `json:"source" yaml:"source"`
	Target      string `json:"target" yaml:"target"`
	Contradicts bool   `json:"contradicts,omitempty" yaml:"contradicts,omitempty"`
}

// Graph is the on-disk proof graph description
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Contradiction is a contradicts edge whose target the source also supports
type Contradiction struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ValidationReport is the structural analysis of a proof graph
type ValidationReport struct {
	IsAcyclic         bool            `json:"is_acyclic"`
	Cycles            [][]string      `json:"cycles"`             // Each rotated to start at its smallest id
	UnsupportedClaims []string        `json:"unsupported_claims"` // Sorted
	Contradictions    []Contradiction `json:"contradictions"`
}

// Sound reports whether the graph is acyclic and every claim is supported
func (r *ValidationReport) Sound() bool {
	return r.IsAcyclic && len(r.UnsupportedClaims) == 0
}
