// Package deps implements the add and remove subcommands, which edit
// rcm.json, drive the underlying package manager, and pin the result in
// rcm.lock.
package deps

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	rcmlock "github.com/rcm-dev/rcm/internal/lockfile"
	"github.com/rcm-dev/rcm/internal/packagemanager"
	"github.com/rcm-dev/rcm/internal/registry"
	"github.com/rcm-dev/rcm/internal/ui"
	"github.com/rcm-dev/rcm/internal/util"
	"github.com/rcm-dev/rcm/internal/workspace"
)

type addOpts struct {
	manager string
	dev     bool
}

// GetAddCmd returns the add subcommand for use with cobra.
func GetAddCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &addOpts{}
	cmd := &cobra.Command{
		Use:           "add <package>[@version]",
		Short:         "Add a package to the workspace.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			if err := runAdd(cmd.Context(), base, args[0], opts); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.manager, "manager", "", "package manager to use (cargo, npm, composer, system)")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "record as a development dependency")
	return cmd
}

func runAdd(ctx context.Context, base *cmdutil.CmdBase, arg string, opts *addOpts) error {
	spec, err := packagemanager.ParseSpec(arg)
	if err != nil {
		return err
	}
	if err := util.ValidatePackageName(spec.Name); err != nil {
		return err
	}
	if err := util.ValidateVersion(spec.Version); err != nil {
		return err
	}

	ws, err := base.Workspace()
	if err != nil {
		return err
	}

	manager := spec.Manager
	if opts.manager != "" {
		manager = opts.manager
	}
	if manager == "" {
		manager, err = pickManager(base, ws, spec.Name)
		if err != nil {
			return err
		}
	}
	pm, err := packagemanager.GetPackageManager(manager)
	if err != nil {
		return err
	}
	if !ws.HasManager(manager) {
		base.LogWarning("%v is not enabled in rcm.json, enabling it", manager)
		ws.Manifest.Managers = append(ws.Manifest.Managers, manager)
	}
	if !pm.Available() {
		return errors.Errorf("%v is not available on PATH", pm.Name)
	}

	version := spec.Version
	resolvedFrom := ""
	if version == "latest" && manager != "system" {
		resolved, resolveErr := base.Registry().LatestVersion(manager, spec.Name)
		switch {
		case resolveErr == nil:
			version = resolved
			resolvedFrom = base.Config.Registries[manager]
		case errors.Is(resolveErr, registry.ErrOffline):
			base.LogWarning("offline, adding %v without registry resolution", spec.Name)
		default:
			return resolveErr
		}
	}

	base.Logger.Debug("adding package", "manager", manager, "name", spec.Name, "version", version)
	if err := pm.Add(ctx, base.Runner, ws.Root, spec.Name, version, opts.dev); err != nil {
		return err
	}

	ws.AddDependency(spec.Name, workspace.Dependency{
		Version: spec.Version,
		Manager: manager,
		Dev:     opts.dev,
	})
	if err := ws.Save(); err != nil {
		return err
	}

	lock, err := rcmlock.Read(ws.Root)
	if err != nil {
		return err
	}
	lock.Upsert(rcmlock.LockedPackage{
		Name:     spec.Name,
		Version:  version,
		Manager:  manager,
		Resolved: resolvedFrom,
		Dev:      opts.dev,
	})
	if err := lock.Write(ws.Root); err != nil {
		return err
	}

	base.UI.Output(fmt.Sprintf("added %v:%v@%v", manager, spec.Name, version))
	return nil
}

// pickManager guesses the owning manager, asking the user when the
// guess is ambiguous and a terminal is attached.
func pickManager(base *cmdutil.CmdBase, ws *workspace.Workspace, name string) (string, error) {
	candidates := packagemanager.CandidateManagers(name, ws.EnabledManagers(), ws.Root)
	switch len(candidates) {
	case 0:
		return "", errors.Errorf("could not determine a package manager for %v, pass --manager", name)
	case 1:
		return candidates[0].Slug, nil
	}

	if !ui.IsTTY {
		base.Logger.Debug("ambiguous manager, defaulting to first candidate", "name", name, "manager", candidates[0].Slug)
		return candidates[0].Slug, nil
	}

	options := make([]string, len(candidates))
	for i, candidate := range candidates {
		options[i] = candidate.Slug
	}
	selected := ""
	prompt := &survey.Select{
		Message: fmt.Sprintf("Which package manager should install %v?", name),
		Options: options,
	}
	if err := survey.AskOne(prompt, &selected, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return selected, nil
}
