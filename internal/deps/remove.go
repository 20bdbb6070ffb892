package deps

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	rcmlock "github.com/rcm-dev/rcm/internal/lockfile"
	"github.com/rcm-dev/rcm/internal/packagemanager"
)

type removeOpts struct {
	manager string
}

// GetRemoveCmd returns the remove subcommand for use with cobra.
func GetRemoveCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &removeOpts{}
	cmd := &cobra.Command{
		Use:           "remove <package>",
		Short:         "Remove a package from the workspace.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			if err := runRemove(cmd.Context(), base, args[0], opts); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.manager, "manager", "", "package manager that owns the package")
	return cmd
}

func runRemove(ctx context.Context, base *cmdutil.CmdBase, arg string, opts *removeOpts) error {
	spec, err := packagemanager.ParseSpec(arg)
	if err != nil {
		return err
	}

	ws, err := base.Workspace()
	if err != nil {
		return err
	}

	dep, ok := ws.Manifest.Dependencies[spec.Name]
	if !ok {
		return errors.Errorf("%v is not a dependency of this workspace", spec.Name)
	}

	manager := dep.Manager
	if opts.manager != "" {
		manager = opts.manager
	}
	if spec.Manager != "" {
		manager = spec.Manager
	}
	if manager != dep.Manager {
		return errors.Errorf("%v is managed by %v, not %v", spec.Name, dep.Manager, manager)
	}

	pm, err := packagemanager.GetPackageManager(manager)
	if err != nil {
		return err
	}
	if !pm.Available() {
		return errors.Errorf("%v is not available on PATH", pm.Name)
	}

	base.Logger.Debug("removing package", "manager", manager, "name", spec.Name)
	if err := pm.Remove(ctx, base.Runner, ws.Root, spec.Name); err != nil {
		return err
	}

	ws.RemoveDependency(spec.Name)
	if err := ws.Save(); err != nil {
		return err
	}

	lock, err := rcmlock.Read(ws.Root)
	if err != nil {
		return err
	}
	if lock.Remove(manager, spec.Name) {
		if err := lock.Write(ws.Root); err != nil {
			return err
		}
	}

	base.UI.Output(fmt.Sprintf("removed %v:%v", manager, spec.Name))
	return nil
}
