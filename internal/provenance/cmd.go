package provenance

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/lockfile"
)

type opts struct {
	out    string
	format string
}

// GetCmd returns the provenance subcommand for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "provenance",
		Short:         "Generate a SLSA provenance attestation for the locked dependencies.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			if err := runProvenance(base, opts); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "write the attestation to a file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "slsa", "attestation format")
	return cmd
}

func runProvenance(base *cmdutil.CmdBase, opts *opts) error {
	if opts.format != "slsa" {
		return errors.Errorf("unknown provenance format %v", opts.format)
	}
	ws, err := base.Workspace()
	if err != nil {
		return err
	}
	lock, err := lockfile.Read(ws.Root)
	if err != nil {
		return err
	}
	out, err := Generate(lock, ws.Root.Base(), base.RcmVersion, time.Now())
	if err != nil {
		return err
	}
	if opts.out == "" {
		base.UI.Output(string(out))
		return nil
	}
	target := base.Cwd.Join(opts.out)
	if err := target.WriteFile(append(out, '\n'), 0644); err != nil {
		return err
	}
	base.UI.Output(fmt.Sprintf("wrote %v", target.ToString()))
	return nil
}
