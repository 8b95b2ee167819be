package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/subpkg/internal/engine"
)

var (
	restoreTable    string
	restorePrevious string
	restoreOut      string
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Undo the relocation of a node table dump",
	Long: `Reverse-patch a node table written by 'apply --table-out' using the plan
written by 'apply --plan-out', so the table describes the pre-move layout
again. Without --previous the plan is read from the build record of the last
apply. The table file is overwritten unless --out is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(settings)

		result, err := newEngine().Restore(ctx, &engine.RestoreRequest{
			Settings:         settings,
			TablePath:        restoreTable,
			PreviousPlanPath: restorePrevious,
			TableOut:         restoreOut,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(result)
		}

		PrintSuccess(fmt.Sprintf("Restored %s", PrintCount(result.Relocated, "relocated path", "relocated paths")))
		PrintLabelValue("References rewritten", fmt.Sprintf("%d", result.Rewritten))
		PrintLabelValue("Table", result.TablePath)
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreTable, "table", "", "Node table dump to restore")
	restoreCmd.Flags().StringVar(&restorePrevious, "previous", "", "Plan file of the build that relocated the table (default: the build record)")
	restoreCmd.Flags().StringVar(&restoreOut, "out", "", "Write the restored table here instead of overwriting --table")
	_ = restoreCmd.MarkFlagRequired("table")
}
