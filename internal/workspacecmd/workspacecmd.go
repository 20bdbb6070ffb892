// Package workspacecmd implements the workspace subcommands: list,
// sync, clean, update, and check.
package workspacecmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/ensure"
	rcmlock "github.com/rcm-dev/rcm/internal/lockfile"
	"github.com/rcm-dev/rcm/internal/packagemanager"
	"github.com/rcm-dev/rcm/internal/ui"
	"github.com/rcm-dev/rcm/internal/workspace"
)

// GetCmd returns the workspace subcommand tree for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "workspace",
		Short:         "Inspect and maintain the current workspace.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(getListCmd(helper))
	cmd.AddCommand(getFanoutCmd(helper, "sync", "Install everything the spec files require.",
		func(ctx context.Context, base *cmdutil.CmdBase, pm *packagemanager.PackageManager, ws *workspace.Workspace) error {
			return pm.Sync(ctx, base.Runner, ws.Root)
		}))
	cmd.AddCommand(getFanoutCmd(helper, "clean", "Remove build artifacts and installed packages.",
		func(ctx context.Context, base *cmdutil.CmdBase, pm *packagemanager.PackageManager, ws *workspace.Workspace) error {
			return pm.Clean(ctx, base.Runner, ws.Root)
		}))
	cmd.AddCommand(getFanoutCmd(helper, "update", "Upgrade installed packages within their constraints.",
		func(ctx context.Context, base *cmdutil.CmdBase, pm *packagemanager.PackageManager, ws *workspace.Workspace) error {
			return pm.Update(ctx, base.Runner, ws.Root)
		}))
	cmd.AddCommand(getCheckCmd(helper))
	return cmd
}

type listOpts struct {
	format string
}

func getListCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &listOpts{}
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List the workspace's dependencies.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			ws, err := base.Workspace()
			if err != nil {
				base.LogError("%v", err)
				return err
			}
			return runList(base, ws, opts.format)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format (table, json, or names)")
	return cmd
}

func runList(base *cmdutil.CmdBase, ws *workspace.Workspace, format string) error {
	deps := ws.ListDependencies()
	switch format {
	case "json":
		out, err := json.MarshalIndent(deps, "", "  ")
		if err != nil {
			return err
		}
		base.UI.Output(string(out))
	case "names":
		for _, dep := range deps {
			base.UI.Output(dep.Name)
		}
	case "table":
		if len(deps) == 0 {
			base.UI.Output("no dependencies in rcm.json")
			return nil
		}
		lock, err := rcmlock.Read(ws.Root)
		if err != nil {
			return err
		}
		base.UI.Output(fmt.Sprintf("%-30s %-10s %-15s %-15s %s", "NAME", "MANAGER", "REQUESTED", "PINNED", "DEV"))
		for _, dep := range deps {
			pinned := "-"
			if pkg, ok := lock.Get(dep.Manager, dep.Name); ok {
				pinned = pkg.Version
			}
			dev := ""
			if dep.Dev {
				dev = "dev"
			}
			base.UI.Output(fmt.Sprintf("%-30s %-10s %-15s %-15s %s", dep.Name, dep.Manager, dep.Version, pinned, dev))
		}
	default:
		return errors.Errorf("unknown format: %v (expected table, json, or names)", format)
	}
	return nil
}

type fanoutAction func(ctx context.Context, base *cmdutil.CmdBase, pm *packagemanager.PackageManager, ws *workspace.Workspace) error

// getFanoutCmd builds a subcommand that runs one manager operation
// across every enabled manager concurrently.
func getFanoutCmd(helper *cmdutil.Helper, use string, short string, action fanoutAction) *cobra.Command {
	var managers []string
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			ws, err := base.Workspace()
			if err != nil {
				base.LogError("%v", err)
				return err
			}

			selected := managers
			if len(selected) == 0 {
				selected = ws.EnabledManagers()
			}

			group, ctx := errgroup.WithContext(cmd.Context())
			group.SetLimit(base.Config.ParallelJobs)
			for _, slug := range selected {
				slug := slug
				group.Go(func() error {
					pm, err := packagemanager.GetPackageManager(slug)
					if err != nil {
						return err
					}
					if !pm.Available() {
						base.LogWarning("skipping %v: not found on PATH", slug)
						return nil
					}
					base.Logger.Debug("running workspace operation", "op", use, "manager", slug)
					if err := action(ctx, base, pm, ws); err != nil {
						return errors.Wrapf(err, "%v %v", use, slug)
					}
					base.UI.Output(fmt.Sprintf("%v: %v done", slug, use))
					return nil
				})
			}
			if err := group.Wait(); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&managers, "managers", nil, "restrict to the named managers")
	return cmd
}

func getCheckCmd(helper *cmdutil.Helper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "check",
		Short:         "Check workspace health: manifest, lockfile, and managers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			ws, err := base.Workspace()
			if err != nil {
				base.LogError("%v", err)
				return err
			}

			problems := 0
			if _, err := rcmlock.Read(ws.Root); err != nil {
				base.UI.Output(fmt.Sprintf("%s %v", ui.ErrorPrefix, err))
				problems++
			}
			for name, dep := range ws.Manifest.Dependencies {
				if !ws.HasManager(dep.Manager) {
					base.UI.Output(fmt.Sprintf("%s %v uses manager %v, which is not enabled", ui.ErrorPrefix, name, dep.Manager))
					problems++
				}
			}

			checks := ensure.RunChecks(cmd.Context(), base, ws, ws.EnabledManagers())
			for _, check := range checks {
				if !check.OK {
					base.UI.Output(fmt.Sprintf("%s %v: %v (%v)", ui.ErrorPrefix, check.Manager, check.Label, check.Detail))
					problems++
				}
			}

			if problems > 0 {
				return &cmdutil.Error{ExitCode: 1, Err: errors.Errorf("%v problems found", problems)}
			}
			base.UI.Output("workspace is healthy")
			return nil
		},
	}
	return cmd
}
