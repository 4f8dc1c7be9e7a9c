package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/casedex/internal/archive"
	"github.com/ppiankov/casedex/internal/trie"
	"github.com/spf13/cobra"
)

var (
	searchIndex    string
	searchAnalysis string
	searchPrefix   bool
	searchCritical bool
)

var searchCmd = &cobra.Command{
	Use:   "search <expr>",
	Short: "Query a search index built by scan",
	Long: `Search evaluates a tag expression against a search index and prints the
matching document ids, one per line, with their paths when the analysis
file is available.

Expressions combine tags with AND, OR and NOT, left to right, with
parentheses for grouping. Aliases resolve to their canonical tag.

Example:
  casedex search housing_denial
  casedex search "housing_denial AND NOT appeal"
  casedex search "(compensation OR damages) AND critical_evidence"
  casedex search --prefix medical
  casedex search --critical`,
	Args: func(cmd *cobra.Command, args []string) error {
		if searchCritical {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchIndex, "index", "", "search index JSON path (default from config)")
	searchCmd.Flags().StringVar(&searchAnalysis, "analysis", "", "analysis JSON path for document paths (default from config)")
	searchCmd.Flags().BoolVar(&searchPrefix, "prefix", false, "treat the argument as a key prefix")
	searchCmd.Flags().BoolVar(&searchCritical, "critical", false, "list documents tagged as critical evidence")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if searchIndex == "" {
		searchIndex = cfg.Output.IndexFile
	}
	if searchAnalysis == "" {
		searchAnalysis = cfg.Output.AnalysisFile
	}

	artifact, err := trie.ReadArtifact(searchIndex)
	if err != nil {
		return err
	}
	if searchCritical {
		printCritical(cmd, artifact)
		return nil
	}

	t, err := trie.FromArtifact(artifact)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	expr := strings.Join(args, " ")
	var ids []string
	if searchPrefix {
		ids = t.PrefixSearch(expr)
	} else {
		ids, err = t.Query(expr)
		if err != nil {
			return err
		}
	}

	// Paths are a convenience; a missing analysis only drops them
	paths := map[string]string{}
	if a, err := archive.ReadAnalysis(searchAnalysis); err == nil {
		for id, doc := range a.Documents {
			paths[id] = doc.RelativePath
		}
	} else if verbose {
		fmt.Fprintf(os.Stderr, "No analysis at %s, printing ids only\n", searchAnalysis)
	}

	out := cmd.OutOrStdout()
	for _, id := range ids {
		if p, ok := paths[id]; ok {
			fmt.Fprintf(out, "%s\t%s\n", id, p)
		} else {
			fmt.Fprintln(out, id)
		}
	}
	fmt.Fprintf(os.Stderr, "✓ %d of %d documents match\n", len(ids), artifact.TotalDocuments)
	return nil
}

func printCritical(cmd *cobra.Command, artifact *trie.Artifact) {
	out := cmd.OutOrStdout()
	for _, doc := range artifact.CriticalDocuments {
		fmt.Fprintf(out, "%s\t%s\t%s\n", doc.DocID, doc.Filename, strings.Join(doc.Tags, ","))
	}
	fmt.Fprintf(os.Stderr, "✓ %d critical documents\n", len(artifact.CriticalDocuments))
}
