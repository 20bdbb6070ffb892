// Package initcmd scaffolds a new rcm workspace.
package initcmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/letcmd"
	"github.com/rcm-dev/rcm/internal/packagemanager"
	"github.com/rcm-dev/rcm/internal/rcmpath"
	"github.com/rcm-dev/rcm/internal/ui"
	"github.com/rcm-dev/rcm/internal/workspace"
)

type opts struct {
	managers []string
	template string
}

// templateManagers maps template names to the managers they enable.
var templateManagers = map[string][]string{
	"rust":     {"cargo"},
	"node":     {"npm"},
	"php":      {"composer"},
	"polyglot": {"cargo", "npm", "composer", "system"},
}

// GetCmd returns the init subcommand for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Create an rcm workspace in the current directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			if err := runInit(base, opts); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.managers, "managers", nil, "package managers to enable")
	cmd.Flags().StringVar(&opts.template, "template", "", "workspace template (rust, node, php, or polyglot)")
	return cmd
}

func runInit(base *cmdutil.CmdBase, opts *opts) error {
	root := base.Cwd

	if root.Join(workspace.ManifestName).FileExists() {
		if !ui.IsTTY {
			return errors.Errorf("%v already exists at %v", workspace.ManifestName, root.ToString())
		}
		overwrite := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("%v already exists, reinitialize the workspace?", workspace.ManifestName),
		}
		if err := survey.AskOne(prompt, &overwrite); err != nil {
			return err
		}
		if !overwrite {
			return &cmdutil.Error{ExitCode: 1, Err: errors.New("init aborted")}
		}
	}

	managers, err := resolveManagers(opts)
	if err != nil {
		return err
	}

	ws, err := workspace.InitAt(root, managers, opts.template)
	if err != nil {
		return err
	}
	if err := scaffold(base, ws); err != nil {
		return err
	}
	if err := letcmd.NewStore(root).Initialize(); err != nil {
		return err
	}

	base.UI.Output(fmt.Sprintf("initialized rcm workspace at %v", root.ToString()))
	base.UI.Output(fmt.Sprintf("managers: %v", strings.Join(managers, ", ")))
	return nil
}

// resolveManagers turns flags into a manager list, asking interactively
// when nothing was specified and a terminal is attached.
func resolveManagers(opts *opts) ([]string, error) {
	if opts.template != "" {
		managers, ok := templateManagers[opts.template]
		if !ok {
			return nil, errors.Errorf("unknown template: %v (expected rust, node, php, or polyglot)", opts.template)
		}
		return append(managers, opts.managers...), nil
	}
	if len(opts.managers) > 0 {
		for _, manager := range opts.managers {
			if _, err := packagemanager.GetPackageManager(manager); err != nil {
				return nil, err
			}
		}
		return opts.managers, nil
	}
	if !ui.IsTTY {
		return []string{"system"}, nil
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Which package managers should this workspace use?",
		Options: packagemanager.Slugs(),
		Default: []string{"system"},
	}
	if err := survey.AskOne(prompt, &selected, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}
	return selected, nil
}

// scaffoldFiles are written only if missing so reinitializing does not
// clobber user files.
func scaffold(base *cmdutil.CmdBase, ws *workspace.Workspace) error {
	writeIfMissing := func(path rcmpath.AbsoluteSystemPath, contents string) error {
		if path.FileExists() {
			return nil
		}
		return path.WriteFile([]byte(contents), 0644)
	}

	name := ws.Root.Base()
	for _, manager := range ws.EnabledManagers() {
		var err error
		switch manager {
		case "cargo":
			err = writeIfMissing(ws.Root.Join("Cargo.toml"), fmt.Sprintf("[package]\nname = %q\nversion = \"0.1.0\"\nedition = \"2021\"\n\n[dependencies]\n", name))
		case "npm":
			err = writeIfMissing(ws.Root.Join("package.json"), fmt.Sprintf("{\n  \"name\": %q,\n  \"version\": \"0.1.0\",\n  \"private\": true\n}\n", name))
		case "composer":
			err = writeIfMissing(ws.Root.Join("composer.json"), fmt.Sprintf("{\n  \"name\": \"app/%v\",\n  \"require\": {}\n}\n", name))
		}
		if err != nil {
			return err
		}
	}

	if err := appendGitignore(ws.Root); err != nil {
		return err
	}
	return writeIfMissing(ws.Root.Join("README.md"), fmt.Sprintf("# %v\n\nManaged with rcm. Run `rcm ensure` to verify your environment and\n`rcm apply` to install dependencies.\n", name))
}

var gitignoreEntries = []string{".rcm/cache/", ".rcm/snapshots/", "node_modules/", "target/", "vendor/"}

func appendGitignore(root rcmpath.AbsoluteSystemPath) error {
	path := root.Join(".gitignore")
	existing := ""
	if path.FileExists() {
		contents, err := path.ReadFile()
		if err != nil {
			return err
		}
		existing = string(contents)
	}

	var missing []string
	for _, entry := range gitignoreEntries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		existing += "\n"
	}
	return path.WriteFile([]byte(existing+strings.Join(missing, "\n")+"\n"), 0644)
}
