package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/subpkg/internal/engine"
)

var (
	planTable string
	planForce bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show where every component would be placed",
	Long: `Compute the subpackage placement of the emitted mini-program without
changing anything.

The node table is scanned from the output directory unless --table names a
JSON dump of it. The command exits non-zero when the plan has conflicts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(settings)

		result, err := newEngine().Plan(ctx, &engine.PlanRequest{
			Settings:  settings,
			TablePath: planTable,
			Force:     planForce,
		})
		if jsonOutput && result != nil {
			if jerr := outputJSON(result); jerr != nil {
				return jerr
			}
			return err
		}
		if err != nil {
			if result != nil && result.Plan != nil && result.Plan.HasConflicts() {
				PrintConflicts(result.Plan.Conflicts)
			}
			return err
		}

		printPlan(result)
		return nil
	},
}

func printPlan(result *engine.PlanResult) {
	if result.AlreadyPlaced {
		PrintSuccess("Output already placed by the recorded apply")
		PrintSection("Recorded Operations")
		PrintOperations(result.Plan.Operations)
		return
	}

	PrintSection("Subpackages")
	if result.Subpackages.Empty() {
		PrintEmptyState("No subpackages declared")
		return
	}
	rows := make([][]string, 0, len(result.Subpackages.SubPackages))
	for _, sp := range result.Subpackages.SubPackages {
		rows = append(rows, []string{sp.Root, sp.SourceRoot, strings.Join(sp.Pages, ", ")})
	}
	PrintTable([]string{"ROOT", "SOURCE", "PAGES"}, rows)
	if rules := result.Subpackages.PreloadRule; len(rules) > 0 {
		fmt.Println()
		PrintSubsection("Preload rules")
		items := make([]string, 0, len(rules))
		for _, page := range rules.RulePages() {
			rule := rules[page]
			items = append(items, fmt.Sprintf("%s → %s (%s)", page, strings.Join(rule.Packages, ", "), rule.Network))
		}
		PrintList(items, 2)
	}

	PrintSection("Ownership")
	paths := make([]string, 0, len(result.Ownership))
	for p := range result.Ownership {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	rows = rows[:0]
	for _, p := range paths {
		rec := result.Ownership[p]
		placement := "stays"
		if rec.Move {
			placement = "moves"
		}
		rows = append(rows, []string{p, strings.Join(rec.SubRoots, ", "), placement})
	}
	if len(rows) == 0 {
		PrintEmptyState("No components used")
	}
	PrintTable([]string{"COMPONENT", "OWNERS", "PLACEMENT"}, rows)

	PrintSection("Operations")
	PrintOperations(result.Plan.Operations)
	fmt.Println()
	PrintLabelValue("Build", result.BuildID)
	PrintLabelValue("Fingerprint", result.Fingerprint)
}

func init() {
	planCmd.Flags().StringVar(&planTable, "table", "", "Read the node table from a JSON dump instead of scanning the output")
	planCmd.Flags().BoolVarP(&planForce, "force", "f", false, "Accept occupied destinations")
}
