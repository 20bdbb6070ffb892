package letcmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
	"github.com/pyr-sh/dag"

	"github.com/rcm-dev/rcm/internal/packagemanager"
	"github.com/rcm-dev/rcm/internal/rcmpath"
	"github.com/rcm-dev/rcm/internal/util"
)

// ExecutionOptions controls a single run of a LET spec.
type ExecutionOptions struct {
	// Filter restricts the run to one action and its transitive
	// dependencies. Empty runs everything.
	Filter string
	// Env is layered over the spec's environment for every action.
	Env map[string]string
	// Parallel is the number of independent actions that may run at
	// once.
	Parallel int
}

// Engine evaluates and executes LET specs against a workspace.
type Engine struct {
	workspaceRoot rcmpath.AbsoluteSystemPath
	ui            cli.Ui
	runner        packagemanager.CommandRunner
}

// NewEngine creates an Engine rooted at the workspace.
func NewEngine(workspaceRoot rcmpath.AbsoluteSystemPath, ui cli.Ui, runner packagemanager.CommandRunner) *Engine {
	return &Engine{
		workspaceRoot: workspaceRoot,
		ui:            ui,
		runner:        runner,
	}
}

// CheckConstraints verifies the spec can run on this host.
func (e *Engine) CheckConstraints(spec *Spec) error {
	if len(spec.Constraints.Platforms) > 0 {
		supported := false
		for _, platform := range spec.Constraints.Platforms {
			if platform == runtime.GOOS {
				supported = true
				break
			}
		}
		if !supported {
			return errors.Errorf("target %v is not supported on %v", spec.Target, runtime.GOOS)
		}
	}
	for _, command := range spec.Constraints.RequiredCommands {
		if !util.CommandExists(command) {
			return errors.Errorf("required command not found: %v", command)
		}
	}
	for _, envVar := range spec.Constraints.RequiredEnvVars {
		if _, ok := os.LookupEnv(envVar); !ok {
			return errors.Errorf("required environment variable not set: %v", envVar)
		}
	}
	return nil
}

// CheckCondition reports whether a single condition is met.
func (e *Engine) CheckCondition(condition Condition) bool {
	switch condition.Type {
	case ConditionFileExists:
		path := e.workspaceRoot.Join(condition.Value)
		if filepath.IsAbs(condition.Value) {
			path = rcmpath.AbsoluteSystemPath(condition.Value)
		}
		return path.Exists()
	case ConditionCommandExists, ConditionPackageInstalled:
		return util.CommandExists(condition.Value)
	case ConditionEnvVar:
		_, ok := os.LookupEnv(condition.Value)
		return ok
	case ConditionPlatform:
		return condition.Value == runtime.GOOS
	default:
		return false
	}
}

// buildGraph constructs the action graph, restricted to filter and its
// transitive dependencies when filter is non-empty.
func (e *Engine) buildGraph(spec *Spec, filter string) (*dag.AcyclicGraph, error) {
	include := map[string]bool{}
	if filter == "" {
		for _, action := range spec.Actions {
			include[action.Name] = true
		}
	} else {
		if _, ok := spec.action(filter); !ok {
			return nil, errors.Errorf("target %v has no action named %v", spec.Target, filter)
		}
		queue := []string{filter}
		for len(queue) > 0 {
			name := queue[0]
			queue = queue[1:]
			if include[name] {
				continue
			}
			include[name] = true
			action, ok := spec.action(name)
			if !ok {
				return nil, errors.Errorf("action %v depends on unknown action %v", filter, name)
			}
			queue = append(queue, action.DependsOn...)
		}
	}

	graph := &dag.AcyclicGraph{}
	for name := range include {
		graph.Add(name)
	}
	for name := range include {
		action, _ := spec.action(name)
		for _, dep := range action.DependsOn {
			if _, ok := spec.action(dep); !ok {
				return nil, errors.Errorf("action %v depends on unknown action %v", name, dep)
			}
			if include[dep] {
				graph.Connect(dag.BasicEdge(name, dep))
			}
		}
	}
	if err := graph.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid action graph for %v", spec.Target)
	}
	return graph, nil
}

// Plan returns the actions in execution order without running them.
// Independent actions are ordered by name so the plan is stable.
func (e *Engine) Plan(spec *Spec, filter string) ([]Action, error) {
	graph, err := e.buildGraph(spec, filter)
	if err != nil {
		return nil, err
	}

	done := map[string]bool{}
	var remaining []string
	for _, v := range graph.Vertices() {
		remaining = append(remaining, dag.VertexName(v))
	}
	sort.Strings(remaining)

	var ordered []Action
	for len(remaining) > 0 {
		progressed := false
		for i, name := range remaining {
			ready := true
			for dep := range graph.DownEdges(name) {
				if !done[dag.VertexName(dep)] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			action, _ := spec.action(name)
			ordered = append(ordered, action)
			done[name] = true
			remaining = append(remaining[:i], remaining[i+1:]...)
			progressed = true
			break
		}
		if !progressed {
			return nil, errors.Errorf("invalid action graph for %v", spec.Target)
		}
	}
	return ordered, nil
}

// Execute runs the spec's actions in dependency order.
func (e *Engine) Execute(ctx context.Context, spec *Spec, opts ExecutionOptions) error {
	if err := e.CheckConstraints(spec); err != nil {
		return err
	}
	graph, err := e.buildGraph(spec, opts.Filter)
	if err != nil {
		return err
	}

	env := map[string]string{}
	for key, value := range spec.Environment {
		env[key] = value
	}
	for key, value := range opts.Env {
		env[key] = value
	}
	for key, value := range env {
		os.Setenv(key, value)
	}

	sema := util.NewSemaphore(opts.Parallel)
	errs := graph.Walk(func(v dag.Vertex) error {
		sema.Acquire()
		defer sema.Release()

		action, _ := spec.action(dag.VertexName(v))
		return e.executeAction(ctx, action)
	})
	if len(errs) > 0 {
		var result *multierror.Error
		for _, walkErr := range errs {
			result = multierror.Append(result, walkErr)
		}
		return result.ErrorOrNil()
	}
	return nil
}

func (e *Engine) executeAction(ctx context.Context, action Action) error {
	for _, condition := range action.Conditions {
		if !e.CheckCondition(condition) {
			e.ui.Info(fmt.Sprintf("skipping action %v: condition not met (%v %v)", action.Name, condition.Type, condition.Value))
			return nil
		}
	}

	workingDir := e.workspaceRoot
	if action.WorkingDir != "" {
		if filepath.IsAbs(action.WorkingDir) {
			workingDir = rcmpath.AbsoluteSystemPath(action.WorkingDir)
		} else {
			workingDir = e.workspaceRoot.Join(action.WorkingDir)
		}
	}

	for key, value := range action.Env {
		os.Setenv(key, value)
	}

	e.ui.Output(fmt.Sprintf("executing action: %v", action.Name))
	out, err := e.runner(ctx, workingDir.ToString(), action.Command, action.Args...)
	if err != nil {
		return errors.Wrapf(err, "action %v failed: %v %v", action.Name, action.Command, strings.Join(action.Args, " "))
	}
	if len(out) > 0 {
		e.ui.Output(strings.TrimRight(string(out), "\n"))
	}
	return nil
}
