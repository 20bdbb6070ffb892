package plan

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/lockfile"
	"github.com/rcm-dev/rcm/internal/ui"
)

type opts struct {
	managers []string
	format   string
}

// GetCmd returns the plan subcommand for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "plan",
		Short:         "Show what apply would change, without changing anything.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("unknown format: %v (expected text or json)", opts.format)
			}

			ws, err := base.Workspace()
			if err != nil {
				base.LogError("%v", err)
				return err
			}
			lock, err := lockfile.Read(ws.Root)
			if err != nil {
				base.LogError("%v", err)
				return err
			}

			result := Compute(ws.Manifest, lock).ForManagers(opts.managers)
			if opts.format == "json" {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				base.UI.Output(string(out))
				return nil
			}

			if result.IsEmpty() {
				base.UI.Output("nothing to do, rcm.lock matches rcm.json")
				return nil
			}
			for _, change := range result.Changes {
				base.UI.Output(Describe(change))
			}
			base.UI.Output("")
			base.UI.Output(ui.Bold(result.Summary()))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.managers, "managers", nil, "restrict the plan to the named managers")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format (text or json)")
	return cmd
}
