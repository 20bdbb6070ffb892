package letcmd

import (
	"context"
	"sync"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

func testSpec() *Spec {
	return &Spec{
		Target: "demo",
		Actions: []Action{
			{Name: "install", Command: "true"},
			{Name: "verify", Command: "true", DependsOn: []string{"install"}},
			{Name: "build", Command: "true", DependsOn: []string{"verify"}},
			{Name: "lint", Command: "true", DependsOn: []string{"install"}},
		},
	}
}

func testEngine(t *testing.T, runner func(ctx context.Context, dir string, name string, args ...string) ([]byte, error)) *Engine {
	t.Helper()
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	return NewEngine(root, cli.NewMockUi(), runner)
}

func TestPlanOrdersByDependency(t *testing.T) {
	engine := testEngine(t, nil)

	plan, err := engine.Plan(testSpec(), "")
	assert.NoError(t, err)

	names := make([]string, len(plan))
	for i, action := range plan {
		names[i] = action.Name
	}
	assert.EqualValues(t, []string{"install", "lint", "verify", "build"}, names)
}

func TestPlanFilterKeepsTransitiveDeps(t *testing.T) {
	engine := testEngine(t, nil)

	plan, err := engine.Plan(testSpec(), "build")
	assert.NoError(t, err)

	names := make([]string, len(plan))
	for i, action := range plan {
		names[i] = action.Name
	}
	assert.EqualValues(t, []string{"install", "verify", "build"}, names)
}

func TestPlanRejectsCycle(t *testing.T) {
	engine := testEngine(t, nil)
	spec := &Spec{
		Target: "cyclic",
		Actions: []Action{
			{Name: "a", Command: "true", DependsOn: []string{"b"}},
			{Name: "b", Command: "true", DependsOn: []string{"a"}},
		},
	}

	_, err := engine.Plan(spec, "")
	assert.Error(t, err)
}

func TestPlanRejectsUnknownDependency(t *testing.T) {
	engine := testEngine(t, nil)
	spec := &Spec{
		Target: "broken",
		Actions: []Action{
			{Name: "a", Command: "true", DependsOn: []string{"missing"}},
		},
	}

	_, err := engine.Plan(spec, "")
	assert.Error(t, err)
}

func TestExecuteRunsDependenciesFirst(t *testing.T) {
	var mu sync.Mutex
	var ran []string
	engine := testEngine(t, func(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		ran = append(ran, args[0])
		return nil, nil
	})

	spec := &Spec{
		Target: "demo",
		Actions: []Action{
			{Name: "first", Command: "run", Args: []string{"first"}},
			{Name: "second", Command: "run", Args: []string{"second"}, DependsOn: []string{"first"}},
		},
	}
	err := engine.Execute(context.Background(), spec, ExecutionOptions{Parallel: 2})
	assert.NoError(t, err)
	assert.EqualValues(t, []string{"first", "second"}, ran)
}

func TestExecuteSkipsUnmetConditions(t *testing.T) {
	called := false
	engine := testEngine(t, func(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	})

	spec := &Spec{
		Target: "demo",
		Actions: []Action{
			{
				Name:       "gated",
				Command:    "run",
				Conditions: []Condition{{Type: ConditionFileExists, Value: "does-not-exist.txt"}},
			},
		},
	}
	err := engine.Execute(context.Background(), spec, ExecutionOptions{Parallel: 1})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestCheckConstraintsRejectsForeignPlatform(t *testing.T) {
	engine := testEngine(t, nil)
	spec := &Spec{
		Target:      "demo",
		Constraints: Constraints{Platforms: []string{"plan9"}},
	}
	assert.Error(t, engine.CheckConstraints(spec))
}

func TestStoreSeedsAndLoads(t *testing.T) {
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	store := NewStore(root)
	assert.NoError(t, store.Initialize())

	targets, err := store.Targets()
	assert.NoError(t, err)
	assert.EqualValues(t, []string{"cargo", "ffmpeg", "git", "node", "php"}, targets)

	spec, err := store.Load("cargo")
	assert.NoError(t, err)
	assert.Equal(t, "cargo", spec.Target)
	assert.NotEmpty(t, spec.Actions)

	_, err = store.Load("nope")
	assert.Error(t, err)
}

func TestStoreInitializePreservesUserEdits(t *testing.T) {
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	store := NewStore(root)
	assert.NoError(t, store.Initialize())

	custom := []byte(`{"target": "git", "actions": []}`)
	assert.NoError(t, root.Join(".rcm", "let", "git.json").WriteFile(custom, 0644))
	assert.NoError(t, store.Initialize())

	spec, err := store.Load("git")
	assert.NoError(t, err)
	assert.Empty(t, spec.Actions)
}
