package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/casedex/internal/dag"
	"github.com/ppiankov/casedex/internal/model"
	"github.com/spf13/cobra"
)

var skipInvalid bool

var validateCmd = &cobra.Command{
	Use:   "validate <graph>",
	Short: "Check a proof graph for circular or unsupported reasoning",
	Long: `Validate reads an evidence → claim proof graph (YAML or JSON) and reports:
- cycles, where claims end up supporting themselves
- claims that no piece of evidence reaches
- contradicts edges whose source also supports the target

The report is printed as JSON. The command fails when the graph has a
cycle or an unsupported claim.

Graph format:
  nodes:
    - {id: E1, kind: evidence, label: "Decision letter"}
    - {id: C1, kind: claim, label: "Unlawful refusal"}
  edges:
    - {source: E1, target: C1}

Example:
  casedex validate proof.yaml
  casedex validate proof.json --skip-invalid`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "drop edges naming unknown nodes instead of failing")
}

func runValidate(cmd *cobra.Command, args []string) error {
	g, err := dag.LoadGraph(args[0])
	if err != nil {
		return err
	}

	edges := g.Edges
	if skipInvalid {
		var dropped []model.InputError
		edges, dropped = dag.Partition(g.Nodes, g.Edges)
		for _, d := range dropped {
			fmt.Fprintf(os.Stderr, "✗ skipped edge %s: %s\n", d.Input, d.Error)
		}
	}

	report, err := dag.Validate(g.Nodes, edges)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	banner("Proof Graph")
	fmt.Fprintf(os.Stderr, "  Nodes:          %d\n", len(g.Nodes))
	fmt.Fprintf(os.Stderr, "  Edges:          %d\n", len(edges))
	printCheck("Acyclic", report.IsAcyclic, len(report.Cycles))
	for _, c := range report.Cycles {
		fmt.Fprintf(os.Stderr, "      %s → %s\n", strings.Join(c, " → "), c[0])
	}
	printCheck("All claims supported", len(report.UnsupportedClaims) == 0, len(report.UnsupportedClaims))
	for _, id := range report.UnsupportedClaims {
		fmt.Fprintf(os.Stderr, "      %s\n", id)
	}
	if len(report.Contradictions) > 0 {
		fmt.Fprintf(os.Stderr, "  ⚠ Contradictions (%d)\n", len(report.Contradictions))
		for _, c := range report.Contradictions {
			fmt.Fprintf(os.Stderr, "      %s supports and contradicts %s\n", c.Source, c.Target)
		}
	}
	fmt.Fprintf(os.Stderr, "\n")

	if !report.Sound() {
		return fmt.Errorf("proof graph is not sound")
	}
	return nil
}

func printCheck(name string, ok bool, problems int) {
	if ok {
		fmt.Fprintf(os.Stderr, "  ✓ %s\n", name)
		return
	}
	fmt.Fprintf(os.Stderr, "  ✗ %s (%d)\n", name, problems)
}
