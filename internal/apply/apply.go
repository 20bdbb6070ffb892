// Package apply executes a computed plan under an exclusive workspace
// lock.
package apply

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/nightlyone/lockfile"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	rcmlock "github.com/rcm-dev/rcm/internal/lockfile"
	"github.com/rcm-dev/rcm/internal/packagemanager"
	"github.com/rcm-dev/rcm/internal/plan"
	"github.com/rcm-dev/rcm/internal/registry"
	"github.com/rcm-dev/rcm/internal/ui"
	"github.com/rcm-dev/rcm/internal/workspace"
)

type opts struct {
	managers []string
	force    bool
}

// GetCmd returns the apply subcommand for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "apply",
		Short:         "Install, upgrade, and remove packages to match rcm.json.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			a := &apply{base: base}
			if err := a.run(cmd.Context(), opts); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.managers, "managers", nil, "apply changes for the named managers only")
	cmd.Flags().BoolVar(&opts.force, "force", false, "skip the confirmation prompt")
	return cmd
}

type apply struct {
	base *cmdutil.CmdBase
}

func (a *apply) run(ctx context.Context, opts *opts) error {
	ws, err := a.base.Workspace()
	if err != nil {
		return err
	}

	// One apply at a time per workspace.
	if err := ws.Root.Join(".rcm").MkdirAll(); err != nil {
		return err
	}
	flock, err := lockfile.New(ws.Root.Join(".rcm", "apply.lock").ToString())
	if err != nil {
		return err
	}
	if err := flock.TryLock(); err != nil {
		return errors.Wrap(err, "another apply is already running in this workspace")
	}
	defer func() { _ = flock.Unlock() }()

	lock, err := rcmlock.Read(ws.Root)
	if err != nil {
		return err
	}
	computed := plan.Compute(ws.Manifest, lock).ForManagers(opts.managers)
	if computed.IsEmpty() {
		a.base.UI.Output("nothing to do, rcm.lock matches rcm.json")
		return nil
	}

	for _, change := range computed.Changes {
		a.base.UI.Output(plan.Describe(change))
	}
	a.base.UI.Output(ui.Bold(computed.Summary()))

	if !opts.force && ui.IsTTY {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Apply these %v changes?", len(computed.Changes)),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			return &cmdutil.Error{ExitCode: 1, Err: errors.New("apply aborted")}
		}
	}

	reg := a.base.Registry()
	for _, change := range computed.Changes {
		if err := a.applyChange(ctx, ws, lock, reg, change); err != nil {
			// Persist what succeeded before bailing.
			if writeErr := lock.Write(ws.Root); writeErr != nil {
				a.base.LogWarning("failed to write rcm.lock: %v", writeErr)
			}
			return err
		}
	}
	return lock.Write(ws.Root)
}

func (a *apply) applyChange(ctx context.Context, ws *workspace.Workspace, lock *rcmlock.Lockfile, reg *registry.Client, change plan.Change) error {
	pm, err := packagemanager.GetPackageManager(change.Manager)
	if err != nil {
		return err
	}
	if !pm.Available() {
		return errors.Errorf("%v is required for %v but was not found on PATH", pm.Name, change.Name)
	}

	switch change.Type {
	case plan.ChangeRemove:
		a.base.Logger.Debug("removing package", "manager", change.Manager, "name", change.Name)
		if err := pm.Remove(ctx, a.base.Runner, ws.Root, change.Name); err != nil {
			return err
		}
		lock.Remove(change.Manager, change.Name)
		return nil
	default:
		version := change.To
		if version == "" {
			version = "latest"
		}
		resolvedFrom := ""
		// Host packages are versioned by the OS repos, not a registry.
		if (version == "" || version == "latest") && change.Manager != "system" {
			resolved, err := reg.LatestVersion(change.Manager, change.Name)
			switch {
			case err == nil:
				version = resolved
				resolvedFrom = a.base.Config.Registries[change.Manager]
			case errors.Is(err, registry.ErrOffline):
				a.base.LogWarning("offline, pinning %v without registry resolution", change.Name)
				version = "latest"
			default:
				return err
			}
		}
		a.base.Logger.Debug("installing package", "manager", change.Manager, "name", change.Name, "version", version)
		if err := pm.Add(ctx, a.base.Runner, ws.Root, change.Name, version, change.Dev); err != nil {
			return err
		}
		lock.Upsert(rcmlock.LockedPackage{
			Name:     change.Name,
			Version:  version,
			Manager:  change.Manager,
			Resolved: resolvedFrom,
			Dev:      change.Dev,
		})
		return nil
	}
}
