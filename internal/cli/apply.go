package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/subpkg/internal/engine"
	"github.com/danieljhkim/subpkg/internal/planner"
)

var (
	applyTable    string
	applyForce    bool
	applyDryRun   bool
	applyTableOut string
	applyPlanOut  string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Move components into their subpackages and rewrite references",
	Long: `Place the components of a freshly emitted mini-program into the subpackages
that use them.

Files are moved inside the output directory, usingComponents and @import
references are rewritten, and subPackages/preloadRule are merged into the app
config. The app config is left untouched when any file operation fails.

Use --plan-out and --table-out to keep what 'restore' needs to undo the
relocation of the node table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(settings)

		result, err := newEngine().Apply(ctx, &engine.ApplyRequest{
			Settings:  settings,
			TablePath: applyTable,
			Force:     applyForce,
			DryRun:    applyDryRun,
			TableOut:  applyTableOut,
			PlanOut:   applyPlanOut,
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

		if result.AlreadyPlaced {
			PrintSuccess("Output already placed; nothing to do")
			PrintLabelValue("Recorded operations", fmt.Sprintf("%d", len(result.Plan.Operations)))
			return nil
		}

		if applyDryRun {
			PrintSection("Dry Run")
			PrintInfo(fmt.Sprintf("Would apply %s", PrintCount(len(result.Plan.Operations), "operation", "operations")))
			PrintOperations(result.Plan.Operations)
			return nil
		}

		emit := result.Emit
		PrintSuccess(fmt.Sprintf("Applied %s successfully", PrintCount(len(result.Plan.Operations), "operation", "operations")))
		PrintLabelValue("Build", result.BuildID)
		PrintLabelValue("Moved", fmt.Sprintf("%d moved, %d copied, %d removed, %d skipped",
			emit.Moved, emit.Copied, emit.Removed, emit.Skipped))
		PrintLabelValue("Rewritten", fmt.Sprintf("%s, %s",
			PrintCount(emit.ConfigsWritten, "config", "configs"),
			PrintCount(emit.StylesWritten, "style", "styles")))
		if result.Plan.Count(planner.OpMove) == 0 && !emit.ManifestWritten {
			PrintEmptyState("Nothing to place")
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyTable, "table", "", "Read the node table from a JSON dump instead of scanning the output")
	applyCmd.Flags().BoolVarP(&applyForce, "force", "f", false, "Force apply, overwriting occupied destinations")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show what would be applied without applying")
	applyCmd.Flags().StringVar(&applyTableOut, "table-out", "", "Write the rewritten node table to this file")
	applyCmd.Flags().StringVar(&applyPlanOut, "plan-out", "", "Write the applied move plan to this file")
}
