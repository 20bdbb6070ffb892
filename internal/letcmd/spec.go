// Package letcmd implements the LET imperative workflow engine: named
// targets whose condition-gated actions run in dependency order.
package letcmd

// ConditionType selects how a Condition is evaluated.
type ConditionType string

const (
	// ConditionFileExists is met when the file exists in the workspace.
	ConditionFileExists ConditionType = "file-exists"
	// ConditionCommandExists is met when the command is on PATH.
	ConditionCommandExists ConditionType = "command-exists"
	// ConditionEnvVar is met when the environment variable is set.
	ConditionEnvVar ConditionType = "env-var"
	// ConditionPlatform is met when the value matches runtime.GOOS.
	ConditionPlatform ConditionType = "platform"
	// ConditionPackageInstalled is met when the named tool is on PATH.
	ConditionPackageInstalled ConditionType = "package-installed"
)

// Condition gates an Action; an unmet condition skips the action
// without failing the run.
type Condition struct {
	Type  ConditionType `json:"type"`
	Value string        `json:"value"`
}

// Action is one step of a LET workflow.
type Action struct {
	Name       string            `json:"name"`
	Command    string            `json:"command"`
	Args       []string          `json:"args,omitempty"`
	WorkingDir string            `json:"workingDir,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	Conditions []Condition       `json:"conditions,omitempty"`
	DependsOn  []string          `json:"dependsOn,omitempty"`
}

// Constraints are preconditions for running any of a spec's actions.
type Constraints struct {
	Platforms        []string `json:"platforms,omitempty"`
	RequiredCommands []string `json:"requiredCommands,omitempty"`
	RequiredEnvVars  []string `json:"requiredEnvVars,omitempty"`
}

// Spec is a LET workflow definition for one target.
type Spec struct {
	Target      string            `json:"target"`
	Version     string            `json:"version,omitempty"`
	Manager     string            `json:"manager,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Actions     []Action          `json:"actions"`
	Constraints Constraints       `json:"constraints"`
}

// Action lookups by name.
func (s *Spec) action(name string) (Action, bool) {
	for _, action := range s.Actions {
		if action.Name == name {
			return action, true
		}
	}
	return Action{}, false
}

var allPlatforms = []string{"linux", "darwin", "windows"}

// defaultSpecs returns the built-in workflow definitions that
// Initialize seeds into a fresh workspace.
func defaultSpecs() []Spec {
	return []Spec{
		{
			Target:  "ffmpeg",
			Manager: "system",
			Actions: []Action{
				{
					Name:    "install",
					Command: "rcm",
					Args:    []string{"add", "system:ffmpeg"},
				},
				{
					Name:       "verify",
					Command:    "ffmpeg",
					Args:       []string{"-version"},
					DependsOn:  []string{"install"},
					Conditions: []Condition{{Type: ConditionCommandExists, Value: "ffmpeg"}},
				},
				{
					Name:      "test",
					Command:   "ffmpeg",
					Args:      []string{"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=1", "-f", "null", "-"},
					DependsOn: []string{"verify"},
				},
			},
			Constraints: Constraints{Platforms: allPlatforms},
		},
		{
			Target:  "node",
			Version: ">=18",
			Manager: "system",
			Actions: []Action{
				{
					Name:    "install",
					Command: "rcm",
					Args:    []string{"add", "system:node"},
				},
				{
					Name:      "verify",
					Command:   "node",
					Args:      []string{"--version"},
					DependsOn: []string{"install"},
				},
				{
					Name:       "npm-init",
					Command:    "npm",
					Args:       []string{"init", "--yes"},
					WorkingDir: ".",
					DependsOn:  []string{"verify"},
					Conditions: []Condition{{Type: ConditionFileExists, Value: "package.json"}},
				},
			},
			Constraints: Constraints{Platforms: allPlatforms},
		},
		{
			Target:  "php",
			Version: ">=8.1",
			Manager: "system",
			Actions: []Action{
				{
					Name:    "install",
					Command: "rcm",
					Args:    []string{"add", "system:php"},
				},
				{
					Name:      "composer-install",
					Command:   "rcm",
					Args:      []string{"add", "system:composer"},
					DependsOn: []string{"install"},
				},
				{
					Name:      "verify",
					Command:   "php",
					Args:      []string{"--version"},
					DependsOn: []string{"install"},
				},
				{
					Name:       "composer-init",
					Command:    "composer",
					Args:       []string{"init", "--no-interaction"},
					WorkingDir: ".",
					DependsOn:  []string{"composer-install", "verify"},
					Conditions: []Condition{{Type: ConditionFileExists, Value: "composer.json"}},
				},
			},
			Constraints: Constraints{Platforms: allPlatforms},
		},
		{
			Target:  "cargo",
			Manager: "system",
			Actions: []Action{
				{
					Name:       "install-rustup",
					Command:    "curl",
					Args:       []string{"--proto", "=https", "--tlsv1.2", "-sSf", "https://sh.rustup.rs"},
					Conditions: []Condition{{Type: ConditionCommandExists, Value: "rustup"}},
				},
				{
					Name:      "verify",
					Command:   "cargo",
					Args:      []string{"--version"},
					DependsOn: []string{"install-rustup"},
				},
				{
					Name:       "init",
					Command:    "cargo",
					Args:       []string{"init", "--name", "project"},
					WorkingDir: ".",
					DependsOn:  []string{"verify"},
					Conditions: []Condition{{Type: ConditionFileExists, Value: "Cargo.toml"}},
				},
				{
					Name:       "build",
					Command:    "cargo",
					Args:       []string{"build"},
					WorkingDir: ".",
					DependsOn:  []string{"init"},
				},
				{
					Name:       "test",
					Command:    "cargo",
					Args:       []string{"test"},
					WorkingDir: ".",
					DependsOn:  []string{"build"},
				},
			},
			Constraints: Constraints{
				Platforms:        allPlatforms,
				RequiredCommands: []string{"curl"},
			},
		},
		{
			Target:  "git",
			Manager: "system",
			Actions: []Action{
				{
					Name:    "install",
					Command: "rcm",
					Args:    []string{"add", "system:git"},
				},
				{
					Name:      "verify",
					Command:   "git",
					Args:      []string{"--version"},
					DependsOn: []string{"install"},
				},
				{
					Name:       "init",
					Command:    "git",
					Args:       []string{"init"},
					WorkingDir: ".",
					DependsOn:  []string{"verify"},
					Conditions: []Condition{{Type: ConditionFileExists, Value: ".git"}},
				},
			},
			Constraints: Constraints{Platforms: allPlatforms},
		},
	}
}
