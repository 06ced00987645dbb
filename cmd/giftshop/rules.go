package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/Flubio/giftshop/pkg/rule"
	"github.com/Flubio/giftshop/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	rulesPath    string
	outputFormat string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage repetition rules",
	Long:  "Commands for listing and checking the rules that decide which IDs are invalid",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rules",
	Long:  "Display all available repetition rules with their parts and repeat bounds",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate rules",
	Long: `Validate every rule: required fields, repeat bounds, and that each
example is flagged and each negative example is not.`,
	Args: cobra.NoArgs,
	RunE: runRulesCheck,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Path to custom rules file")
	rulesListCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json, yaml")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	rules, err := readRules(rulesPath)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		return outputRulesJSON(cmd, rules)
	case "yaml":
		return outputRulesYAML(cmd, rules)
	case "table":
		return outputRulesTable(cmd, rules)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	rules, err := readRules(rulesPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range rules {
		if err := rule.ValidateRule(r); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", r.ID, err)
			continue
		}
		fmt.Fprintf(out, "ok    %s\n", r.ID)
	}
	if failed == 0 {
		if err := rule.ValidateRules(rules); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("%d of %d rules failed validation", failed, len(rules))
}

// readRules loads a rules file, or the builtin rules when path is empty.
// Unlike loadRules it does not validate.
func readRules(path string) ([]*types.Rule, error) {
	loader := rule.NewLoader()
	if path == "" {
		rules, err := loader.LoadBuiltinRules()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
		return rules, nil
	}

	rules, err := loader.LoadRuleFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading rules from %s: %w", path, err)
	}
	rule.Sort(rules)
	return rules, nil
}

func outputRulesJSON(cmd *cobra.Command, rules []*types.Rule) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(rules)
}

func outputRulesYAML(cmd *cobra.Command, rules []*types.Rule) error {
	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	if err := encoder.Encode(rules); err != nil {
		return err
	}
	return encoder.Close()
}

func outputRulesTable(cmd *cobra.Command, rules []*types.Rule) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tPart\tRepeats\tName\n")
	fmt.Fprintf(w, "--\t----\t-------\t----\n")

	for _, r := range rules {
		part := "-"
		if r.Part > 0 {
			part = fmt.Sprint(r.Part)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, part, r.Bounds(), r.Name)
	}

	return nil
}
