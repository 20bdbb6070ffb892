// Package ensure verifies that each enabled package manager is healthy:
// binary present, tool responsive, spec files parseable, and installed
// state matching the spec.
package ensure

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/packagemanager"
	"github.com/rcm-dev/rcm/internal/ui"
	"github.com/rcm-dev/rcm/internal/workspace"
)

type opts struct {
	managers []string
}

// Check is one verification result for one manager.
type Check struct {
	Manager string
	Label   string
	OK      bool
	Detail  string
}

// GetCmd returns the ensure subcommand for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "ensure",
		Short:         "Verify the development environment for every enabled manager.",
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

			managers := opts.managers
			if len(managers) == 0 {
				managers = ws.EnabledManagers()
			}
			if len(managers) == 0 {
				base.UI.Output("no managers enabled in rcm.json")
				return nil
			}

			checks := RunChecks(cmd.Context(), base, ws, managers)
			failed := report(base, checks)
			if failed > 0 {
				return &cmdutil.Error{
					ExitCode: 1,
					Err:      errors.Errorf("%v of %v checks failed", failed, len(checks)),
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.managers, "managers", nil, "restrict checks to the named managers")
	return cmd
}

// RunChecks verifies the managers concurrently and returns results in
// a stable order.
func RunChecks(ctx context.Context, base *cmdutil.CmdBase, ws *workspace.Workspace, managers []string) []Check {
	var mu sync.Mutex
	var checks []Check

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(base.Config.ParallelJobs)
	for _, slug := range managers {
		slug := slug
		group.Go(func() error {
			results := checkManager(ctx, base, ws, slug)
			mu.Lock()
			checks = append(checks, results...)
			mu.Unlock()
			return nil
		})
	}
	// The workers never return errors; failures are Check entries.
	_ = group.Wait()

	sort.Slice(checks, func(i, j int) bool {
		if checks[i].Manager != checks[j].Manager {
			return checks[i].Manager < checks[j].Manager
		}
		return checks[i].Label < checks[j].Label
	})
	return checks
}

func checkManager(ctx context.Context, base *cmdutil.CmdBase, ws *workspace.Workspace, slug string) []Check {
	pm, err := packagemanager.GetPackageManager(slug)
	if err != nil {
		return []Check{{Manager: slug, Label: "known manager", OK: false, Detail: err.Error()}}
	}

	var checks []Check
	available := pm.Available()
	detail := "on PATH"
	if !available {
		detail = "not found on PATH"
	}
	checks = append(checks, Check{Manager: slug, Label: "binary", OK: available, Detail: detail})
	if !available {
		return checks
	}

	if version, err := pm.ToolVersion(ctx, base.Runner); err != nil {
		checks = append(checks, Check{Manager: slug, Label: "tool version", OK: false, Detail: err.Error()})
	} else {
		checks = append(checks, Check{Manager: slug, Label: "tool version", OK: true, Detail: version})
	}

	if pm.Specfile != "" {
		if !pm.HasSpecfile(ws.Root) {
			checks = append(checks, Check{Manager: slug, Label: "spec file", OK: false, Detail: pm.Specfile + " missing"})
			return checks
		}
		count, err := pm.CountDependencies(ws.Root)
		if err != nil {
			checks = append(checks, Check{Manager: slug, Label: "spec file", OK: false, Detail: err.Error()})
			return checks
		}
		checks = append(checks, Check{Manager: slug, Label: "spec file", OK: true, Detail: fmt.Sprintf("%v dependencies", count)})

		if pm.InstallMissing(ws.Root) {
			checks = append(checks, Check{Manager: slug, Label: "installed state", OK: false, Detail: "dependencies declared but nothing installed, run rcm apply"})
		} else {
			checks = append(checks, Check{Manager: slug, Label: "installed state", OK: true, Detail: "in sync"})
		}
	}
	return checks
}

func report(base *cmdutil.CmdBase, checks []Check) int {
	failed := 0
	lastManager := ""
	for _, check := range checks {
		if check.Manager != lastManager {
			base.UI.Output(ui.Bold(check.Manager))
			lastManager = check.Manager
		}
		marker := ui.Dim("ok")
		if !check.OK {
			marker = ui.ErrorPrefix
			failed++
		}
		base.UI.Output(fmt.Sprintf("  %-16s %s  %s", check.Label, marker, check.Detail))
	}
	return failed
}
