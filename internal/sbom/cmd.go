package sbom

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/lockfile"
)

type opts struct {
	out      string
	format   string
	managers []string
}

// GetCmd returns the sbom subcommand for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "sbom",
		Short:         "Generate a software bill of materials from rcm.lock.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			if err := runSbom(base, opts); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "write the document to a file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "cyclonedx", "document format (cyclonedx or spdx)")
	cmd.Flags().StringSliceVar(&opts.managers, "managers", nil, "restrict to packages from the named managers")
	return cmd
}

func runSbom(base *cmdutil.CmdBase, opts *opts) error {
	format, err := ParseFormat(opts.format)
	if err != nil {
		return err
	}
	ws, err := base.Workspace()
	if err != nil {
		return err
	}
	lock, err := lockfile.Read(ws.Root)
	if err != nil {
		return err
	}
	if len(opts.managers) > 0 {
		filtered := lockfile.New()
		filtered.Packages = lock.ByManager(opts.managers...)
		lock = filtered
	}

	out, err := Generate(lock, format, ws.Root.Base(), base.RcmVersion, time.Now())
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
	base.UI.Output(fmt.Sprintf("wrote %v (%v packages)", target.ToString(), len(lock.Packages)))
	return nil
}
