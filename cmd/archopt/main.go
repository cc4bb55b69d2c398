// Package main provides the archopt CLI entry point.
package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archlens/sysmodel/pkg/ontology"
	"github.com/archlens/sysmodel/pkg/optimizer"
)

//go:embed fixtures/*.json
var fixtures embed.FS

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "archopt",
		Short: "archopt - multi-objective architecture optimizer",
		Long: `archopt runs the violation-guided local search (section 4.8) over
bundled architecture fixtures and reports the resulting score
components and Pareto front.

Features:
  • bundled diffcodec fixtures, embedded at build time
  • violation-guided local search with a bounded Pareto front
  • human-readable, JSON, and compact report formats`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("archopt v%s (%s)\n", version, commit)
		},
	})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List bundled fixtures",
		RunE:  runList,
	}
	rootCmd.AddCommand(listCmd)

	runCmd := &cobra.Command{
		Use:   "run [fixture]",
		Short: "Run the optimizer search against a bundled fixture",
		Long:  "Run the optimizer search against a bundled fixture. With no argument, every bundled fixture is run.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRun,
	}
	runCmd.Flags().String("format", "summary", "Report format: summary, details, json, compact")
	runCmd.Flags().String("save-json", "", "Write the JSON report to this path in addition to printing it")
	runCmd.Flags().Int("max-iterations", 0, "Override the search's max iterations (0 keeps the default budget)")
	runCmd.Flags().Int64("seed", 0, "Override the search's random seed (0 keeps the default seed)")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// fixtureNames returns the base names (without extension) of every
// embedded fixture, sorted for stable output.
func fixtureNames() ([]string, error) {
	entries, err := fixtures.ReadDir("fixtures")
	if err != nil {
		return nil, fmt.Errorf("reading embedded fixtures: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func runList(cmd *cobra.Command, args []string) error {
	names, err := fixtureNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no bundled fixtures")
		return nil
	}
	fmt.Println("Bundled fixtures:")
	for _, name := range names {
		cases, err := loadFixtureCaseCount(name)
		if err != nil {
			fmt.Printf("  %-20s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("  %-20s (%d test cases)\n", name, cases)
	}
	return nil
}

// loadFixtureCaseCount peeks a fixture file's test-case count without
// building a full Harness.
func loadFixtureCaseCount(name string) (int, error) {
	data, err := fixtures.ReadFile(fixtureFilePath(name))
	if err != nil {
		return 0, err
	}
	var suite optimizer.TestSuite
	if err := json.Unmarshal(data, &suite); err != nil {
		return 0, fmt.Errorf("parsing suite JSON: %w", err)
	}
	return len(suite.TestCases), nil
}

func fixtureFilePath(name string) string {
	return "fixtures/" + name + ".json"
}

func runRun(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	saveJSONPath, _ := cmd.Flags().GetString("save-json")
	maxIterations, _ := cmd.Flags().GetInt("max-iterations")
	seed, _ := cmd.Flags().GetInt64("seed")

	names, err := fixtureNames()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		names = []string{args[0]}
	}

	h := optimizer.NewHarness(ontology.LoadDefault())
	for _, name := range names {
		data, err := fixtures.ReadFile(fixtureFilePath(name))
		if err != nil {
			return fmt.Errorf("archopt: fixture %q not found: %w", name, err)
		}
		var suite optimizer.TestSuite
		if err := json.Unmarshal(data, &suite); err != nil {
			return fmt.Errorf("archopt: parsing fixture %q: %w", name, err)
		}
		for _, tc := range suite.TestCases {
			if maxIterations > 0 {
				tc.Params = optimizer.DefaultSearchParams()
				tc.Params.MaxIterations = maxIterations
			}
			if seed != 0 {
				if tc.Params.MaxIterations == 0 {
					tc.Params = optimizer.DefaultSearchParams()
				}
				tc.Params.RandomSeed = seed
			}
			h.AddTestCase(tc)
		}
	}

	result, err := h.Run()
	if err != nil {
		return fmt.Errorf("archopt: %w", err)
	}

	reporter := optimizer.NewReporter(os.Stdout)
	switch format {
	case "summary":
		reporter.PrintSummary(result)
	case "details":
		reporter.PrintSummary(result)
		reporter.PrintDetails(result)
	case "json":
		if err := reporter.PrintJSON(result); err != nil {
			return fmt.Errorf("archopt: printing JSON report: %w", err)
		}
	case "compact":
		reporter.PrintCompact(result)
	default:
		return fmt.Errorf("archopt: unknown format %q (want summary, details, json, or compact)", format)
	}

	if saveJSONPath != "" {
		if err := reporter.SaveJSON(result, saveJSONPath); err != nil {
			return fmt.Errorf("archopt: %w", err)
		}
	}

	if result.FailedTests > 0 {
		os.Exit(1)
	}
	return nil
}
