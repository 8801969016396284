package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veritor-hq/veritor/pkg/pcl/ast"
	"veritor-hq/veritor/pkg/pcl/compiler"
	pclerrors "veritor-hq/veritor/pkg/pcl/errors"
	"veritor-hq/veritor/pkg/policy/manager"
)

var compilePolicyPath string

var compileCmd = &cobra.Command{
	Use:   "compile [path]",
	Short: "Compile policy definitions and report every error",
	Long: `Compile loads one definition file or a directory of definitions,
compiles each policy, and prints the full error list for every policy
that fails. Compilation never stops at the first error, so a single run
reports everything that needs fixing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compilePolicyPath, "policies", "", "policy definition file or directory")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	path := cfg.Policy.Path
	if compilePolicyPath != "" {
		path = compilePolicyPath
	}
	if len(args) == 1 {
		path = args[0]
	}

	policies, loadErr := loadPolicies(path, cfg.Policy.MaxFileSize)
	if policies == nil && loadErr != nil {
		return loadErr
	}
	if loadErr != nil {
		fmt.Fprintln(os.Stderr, loadErr)
	}

	comp := compiler.New()
	failed := 0
	for _, policy := range policies {
		cp, err := comp.Compile(policy)
		if err != nil {
			failed++
			fmt.Printf("FAIL %s (%s)\n", policy.ID, policy.SourceFile)
			var list *pclerrors.ErrorList
			if errors.As(err, &list) {
				for _, e := range list.Errors {
					fmt.Printf("     %s\n", e.Error())
				}
			} else {
				fmt.Printf("     %v\n", err)
			}
			continue
		}
		fmt.Printf("OK   %s version=%s variables=%d rules=%d constraints=%d\n",
			cp.PolicyID, cp.PolicyVersion, len(cp.SymbolOrder), len(cp.Rules), len(cp.Constraints))
	}

	fmt.Printf("\n%d policies, %d failed\n", len(policies), failed)
	if failed > 0 || loadErr != nil {
		return fmt.Errorf("compilation failed")
	}
	return nil
}

// loadPolicies loads definitions from a file or directory, returning the
// policies that loaded plus any aggregated load error.
func loadPolicies(path string, maxFileSize int64) ([]*ast.Policy, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %q: %w", path, err)
	}

	loaderCfg := manager.DefaultLoaderConfig()
	if maxFileSize > 0 {
		loaderCfg.MaxFileSize = maxFileSize
	}
	loader := manager.NewLoader(loaderCfg)
	if info.IsDir() {
		policies, _, err := loader.LoadDirectory(path)
		return policies, err
	}
	policy, _, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*ast.Policy{policy}, nil
}
