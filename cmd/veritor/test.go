package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veritor-hq/veritor/pkg/policy/manager"
)

var testPolicyPath string

var testCmd = &cobra.Command{
	Use:   "test [policy-id...]",
	Short: "Replay the examples embedded in policy definitions",
	Long: `Test compiles the configured policies and replays the examples
embedded in each definition against the compiled version, comparing the
actual classification to the expected one. With no arguments every
registered policy is tested.`,
	RunE: runTest,
}

func init() {
	testCmd.Flags().StringVar(&testPolicyPath, "policies", "", "policy definition file or directory")
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if testPolicyPath != "" {
		cfg.Policy.Path = testPolicyPath
	}

	mgr := manager.New(&manager.Config{PolicyPath: cfg.Policy.Path})
	if err := mgr.LoadAll(cmd.Context()); err != nil {
		if mgr.Registry().Count() == 0 {
			return err
		}
		fmt.Fprintln(os.Stderr, err)
	}

	policyIDs := args
	if len(policyIDs) == 0 {
		policyIDs = mgr.Registry().PolicyIDs()
	}

	var total, failed int
	for _, policyID := range policyIDs {
		results, err := mgr.RunExamples(cmd.Context(), policyID)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Printf("%s: no examples\n", policyID)
			continue
		}

		fmt.Printf("%s:\n", policyID)
		for _, er := range results {
			total++
			if er.Passed {
				fmt.Printf("  PASS %s (%s)\n", er.Name, er.Actual)
				continue
			}
			failed++
			fmt.Printf("  FAIL %s: expected %s, got %s\n", er.Name, er.Expected, er.Actual)
			if er.Detail != "" {
				fmt.Printf("       %s\n", er.Detail)
			}
		}
	}

	fmt.Printf("\n%d examples, %d failed\n", total, failed)
	if failed > 0 {
		return fmt.Errorf("example regressions detected")
	}
	return nil
}
