package letcmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/ui"
	"github.com/rcm-dev/rcm/internal/util"
)

type opts struct {
	deploy   bool
	plan     bool
	apply    bool
	build    bool
	test     bool
	clean    bool
	update   bool
	args     []string
	parallel int
}

// filter picks the action filter implied by the mode flags. Deploy and
// apply both mean the install chain.
func (o *opts) filter() (string, error) {
	selected := []string{}
	if o.deploy || o.apply {
		selected = append(selected, "install")
	}
	if o.build {
		selected = append(selected, "build")
	}
	if o.test {
		selected = append(selected, "test")
	}
	if o.clean {
		selected = append(selected, "clean")
	}
	if o.update {
		selected = append(selected, "update")
	}
	if len(selected) > 1 {
		return "", errors.Errorf("flags select conflicting actions: %v", strings.Join(selected, ", "))
	}
	if len(selected) == 0 {
		return "", nil
	}
	return selected[0], nil
}

// GetCmd returns the let subcommand for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "let [target]",
		Short:         "Run a declarative provisioning spec against the workspace.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			if err := runLet(cmd.Context(), base, opts, args); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.deploy, "deploy", false, "run the install chain")
	cmd.Flags().BoolVar(&opts.plan, "plan", false, "print the action order without executing")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "alias for --deploy")
	cmd.Flags().BoolVar(&opts.build, "build", false, "run the build chain")
	cmd.Flags().BoolVar(&opts.test, "test", false, "run the test chain")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "run the clean chain")
	cmd.Flags().BoolVar(&opts.update, "update", false, "run the update chain")
	cmd.Flags().StringArrayVar(&opts.args, "arg", nil, "set a key=value variable in the action environment")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 1, "number of independent actions to run at once")
	return cmd
}

func runLet(ctx context.Context, base *cmdutil.CmdBase, opts *opts, args []string) error {
	ws, err := base.Workspace()
	if err != nil {
		return err
	}
	store := NewStore(ws.Root)
	if err := store.Initialize(); err != nil {
		return err
	}

	if len(args) == 0 {
		return listTargets(base, store)
	}
	target := args[0]

	spec, err := store.Load(target)
	if err != nil {
		targets, listErr := store.Targets()
		if listErr == nil && len(targets) > 0 {
			return errors.Wrapf(err, "known targets are %v", strings.Join(targets, ", "))
		}
		return err
	}

	filter, err := opts.filter()
	if err != nil {
		return err
	}
	env, err := util.ParseKeyValueArgs(opts.args)
	if err != nil {
		return err
	}

	engine := NewEngine(ws.Root, base.UI, base.Runner)
	if opts.plan {
		return printPlan(base, engine, spec, filter)
	}
	return engine.Execute(ctx, spec, ExecutionOptions{
		Filter:   filter,
		Env:      env,
		Parallel: opts.parallel,
	})
}

func listTargets(base *cmdutil.CmdBase, store *Store) error {
	targets, err := store.Targets()
	if err != nil {
		return err
	}
	base.UI.Output(ui.Bold("available targets"))
	for _, target := range targets {
		base.UI.Output(fmt.Sprintf("  %v", target))
	}
	return nil
}

func printPlan(base *cmdutil.CmdBase, engine *Engine, spec *Spec, filter string) error {
	actions, err := engine.Plan(spec, filter)
	if err != nil {
		return err
	}
	base.UI.Output(ui.Bold(fmt.Sprintf("plan for %v", spec.Target)))
	for i, action := range actions {
		status := ""
		for _, condition := range action.Conditions {
			if !engine.CheckCondition(condition) {
				status = " (skipped, condition unmet)"
				break
			}
		}
		base.UI.Output(fmt.Sprintf("  %v. %v%v", i+1, action.Name, status))
	}
	return nil
}
