// Package configcmd implements dotted-key access to the persisted
// configuration: config show, get, set, and reset.
package configcmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/config"
)

// GetCmd returns the config subcommand tree for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "config",
		Short:         "Read and write rcm configuration.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var global bool

	show := &cobra.Command{
		Use:           "show",
		Short:         "Show the effective configuration.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(base.Config, "", "  ")
			if err != nil {
				return err
			}
			base.UI.Output(string(out))

			merged := map[string]interface{}{}
			for _, file := range []*config.File{base.Config.UserFile(), base.Config.WorkspaceFile()} {
				if file == nil {
					continue
				}
				for key, value := range file.All() {
					merged[key] = value
				}
			}
			if len(merged) > 0 {
				keys := make([]string, 0, len(merged))
				for key := range merged {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				base.UI.Output("")
				base.UI.Output("persisted keys:")
				for _, key := range keys {
					base.UI.Output(fmt.Sprintf("  %v = %v", key, merged[key]))
				}
			}
			return nil
		},
	}

	get := &cobra.Command{
		Use:           "get <key>",
		Short:         "Print one configuration value.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			for _, file := range []*config.File{base.Config.WorkspaceFile(), base.Config.UserFile()} {
				if file == nil {
					continue
				}
				if value := file.Get(args[0]); value != nil {
					base.UI.Output(fmt.Sprintf("%v", value))
					return nil
				}
			}
			return errors.Errorf("no value set for %v", args[0])
		},
	}

	set := &cobra.Command{
		Use:           "set <key> <value>",
		Short:         "Persist one configuration value.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			file, err := targetFile(base, global)
			if err != nil {
				return err
			}
			if err := file.Set(args[0], args[1]); err != nil {
				return err
			}
			base.UI.Output(fmt.Sprintf("set %v in %v", args[0], file.Path().ToString()))
			return nil
		},
	}
	set.Flags().BoolVar(&global, "global", false, "write to the user config instead of the workspace config")

	reset := &cobra.Command{
		Use:           "reset",
		Short:         "Delete the persisted configuration file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			file, err := targetFile(base, global)
			if err != nil {
				return err
			}
			if err := file.Delete(); err != nil {
				return err
			}
			base.UI.Output(fmt.Sprintf("removed %v", file.Path().ToString()))
			return nil
		},
	}
	reset.Flags().BoolVar(&global, "global", false, "reset the user config instead of the workspace config")

	cmd.AddCommand(show, get, set, reset)
	return cmd
}

// targetFile picks which layer a write lands in: the workspace file
// when inside a workspace, the user file otherwise or with --global.
func targetFile(base *cmdutil.CmdBase, global bool) (*config.File, error) {
	if !global {
		if file := base.Config.WorkspaceFile(); file != nil {
			return file, nil
		}
	}
	if file := base.Config.UserFile(); file != nil {
		return file, nil
	}
	return nil, errors.New("no writable configuration file")
}
