package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helios-ops/helios/internal/rules"
	"github.com/helios-ops/helios/internal/types"
)

var (
	evalTreeFile  string
	evalFactsFile string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a condition tree against a fact map",
	Long: `Reads a condition tree and a fact map from JSON files, validates the
tree and evaluates it offline, without a database. Named-condition
references cannot be resolved in this mode; trees must be self-contained.`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalTreeFile, "tree", "", "path to condition tree JSON")
	evalCmd.Flags().StringVar(&evalFactsFile, "facts", "", "path to fact map JSON")
	evalCmd.MarkFlagRequired("tree")
	evalCmd.MarkFlagRequired("facts")
}

// emptyLookup resolves no names; every reference is reported as unknown.
type emptyLookup struct{}

func (emptyLookup) NamedConditionByName(_ context.Context, _ types.OrgID, _ string) (*types.NamedCondition, error) {
	return nil, types.ErrConditionNotFound
}

type evalOutput struct {
	Matched bool               `json:"matched"`
	Events  []types.MatchEvent `json:"events"`
}

func runEval(cmd *cobra.Command, args []string) error {
	treeData, err := os.ReadFile(evalTreeFile)
	if err != nil {
		return fmt.Errorf("failed to read tree file: %w", err)
	}
	factsData, err := os.ReadFile(evalFactsFile)
	if err != nil {
		return fmt.Errorf("failed to read facts file: %w", err)
	}

	var group types.ConditionGroup
	if err := json.Unmarshal(treeData, &group); err != nil {
		return fmt.Errorf("failed to parse condition tree: %w", err)
	}
	var facts types.FactMap
	if err := json.Unmarshal(factsData, &facts); err != nil {
		return fmt.Errorf("failed to parse fact map: %w", err)
	}

	ctx := cmd.Context()
	validation := rules.Validate(ctx, emptyLookup{}, "", group, "")
	for _, warning := range validation.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	if !validation.Valid {
		for _, msg := range validation.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
		return types.ErrInvalidTree
	}

	engine := rules.NewEngine()
	result, err := engine.Evaluate(ctx, emptyLookup{}, "", group, facts)
	if err != nil {
		return err
	}

	out := evalOutput{Matched: result.Matched, Events: result.Events}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
