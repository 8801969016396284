package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"veritor-hq/veritor/pkg/policy/manager"
	"veritor-hq/veritor/pkg/verify"
)

var (
	verifyPolicyPath string
	verifyInputFile  string
	verifySetVars    []string
	verifyOutput     string
)

var verifyCmd = &cobra.Command{
	Use:   "verify <policy-id>",
	Short: "Verify a scenario against a compiled policy",
	Long: `Verify loads and compiles the configured policies, then runs one
scenario against the named policy. Variables come from a YAML input file
(a flat map of variable name to value), from repeated --set flags, or
both; --set wins on conflict.

The classification is printed along with the explanation. The command
exits non-zero only when verification itself could not produce a
judgment; an invalid scenario is a successful verification.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyPolicyPath, "policies", "", "policy definition file or directory")
	verifyCmd.Flags().StringVarP(&verifyInputFile, "input", "i", "", "YAML file with the variable assignment")
	verifyCmd.Flags().StringArrayVar(&verifySetVars, "set", nil, "variable assignment as name=value (repeatable)")
	verifyCmd.Flags().StringVarP(&verifyOutput, "output", "o", "text", "output format (text, json)")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	policyID := args[0]
	if verifyPolicyPath != "" {
		cfg.Policy.Path = verifyPolicyPath
	}

	raw, err := collectInput()
	if err != nil {
		return err
	}

	mgr := manager.New(&manager.Config{PolicyPath: cfg.Policy.Path})
	if err := mgr.LoadAll(cmd.Context()); err != nil {
		// Partial compile failures are tolerable as long as the requested
		// policy made it into the registry.
		if _, ok := mgr.Registry().Get(policyID); !ok {
			return err
		}
		fmt.Fprintln(os.Stderr, err)
	}

	result, err := mgr.VerifyRaw(cmd.Context(), policyID, raw)
	if err != nil {
		return err
	}

	if verifyOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printResult(result)
	}
	if result.Classification == verify.ClassificationError {
		return fmt.Errorf("verification error: %s", result.ErrorReason)
	}
	return nil
}

// collectInput merges the input file and --set flags into one raw
// assignment.
func collectInput() (map[string]any, error) {
	raw := make(map[string]any)

	if verifyInputFile != "" {
		data, err := os.ReadFile(verifyInputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file %q: %w", verifyInputFile, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode input file %q: %w", verifyInputFile, err)
		}
	}

	for _, pair := range verifySetVars {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", pair)
		}
		raw[name] = coerceFlagValue(value)
	}
	return raw, nil
}

// coerceFlagValue guesses the type of a --set value: bool, then number,
// then string. Declared variable types still govern binding, so a wrong
// guess surfaces as a type error rather than a silent mismatch.
func coerceFlagValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func printResult(result *verify.Result) {
	fmt.Printf("Policy:         %s (compilation %s)\n", result.PolicyID, result.CompilationID)
	fmt.Printf("Classification: %s\n", result.Classification)
	fmt.Println()
	fmt.Println(result.Explanation)

	if len(result.Suggestions) > 0 {
		fmt.Println()
		for _, s := range result.Suggestions {
			fmt.Printf("  * %s\n", s)
		}
	}
}
