package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/subpkg/internal/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the supported platforms and their file suffixes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := platform.Names()
		if jsonOutput {
			out := make(map[string][]string, len(names))
			for _, name := range names {
				ft, _ := platform.Lookup(name)
				out[name] = ft.Suffixes()
			}
			return outputJSON(out)
		}

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			ft, _ := platform.Lookup(name)
			rows = append(rows, []string{
				name,
				ft.Suffix(platform.KindTempl),
				ft.Suffix(platform.KindStyle),
				ft.Suffix(platform.KindConfig),
				ft.Suffix(platform.KindScript),
			})
		}
		PrintTable([]string{"PLATFORM", "TEMPL", "STYLE", "CONFIG", "SCRIPT"}, rows)
		return nil
	},
}
