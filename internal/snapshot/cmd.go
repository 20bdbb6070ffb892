package snapshot

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/cmdutil"
)

type opts struct {
	name         string
	includeLocks bool
}

// Per-manager lockfiles plus rcm's own pin file.
var lockFileNames = map[string]bool{
	"rcm.lock":          true,
	"Cargo.lock":        true,
	"package-lock.json": true,
	"composer.lock":     true,
}

// GetCmd returns the snapshot subcommand for use with cobra.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "snapshot",
		Short:         "Archive the workspace's manifests under .rcm/snapshots.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			if err := runSnapshot(base, opts); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "snapshot name (defaults to the workspace directory name)")
	cmd.Flags().BoolVar(&opts.includeLocks, "include-locks", false, "include lockfiles in the snapshot")
	return cmd
}

func runSnapshot(base *cmdutil.CmdBase, opts *opts) error {
	ws, err := base.Workspace()
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		name = ws.Root.Base()
	}

	snapshotsDir := ws.Root.Join(".rcm", "snapshots")
	if err := snapshotsDir.MkdirAll(); err != nil {
		return err
	}
	archivePath := snapshotsDir.Join(FileName(name, time.Now()))

	files, err := CollectFiles(ws.Root)
	if err != nil {
		return err
	}
	if !opts.includeLocks {
		filtered := files[:0]
		for _, file := range files {
			if !lockFileNames[file.RestoreAnchor(ws.Root).Base()] {
				filtered = append(filtered, file)
			}
		}
		files = filtered
	}

	writer, err := Create(archivePath)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := writer.AddFile(ws.Root, file); err != nil {
			writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	reader, err := Open(archivePath)
	if err != nil {
		return err
	}
	sha, err := reader.GetSha()
	if err != nil {
		reader.Close()
		return err
	}
	if err := reader.Close(); err != nil {
		return err
	}

	base.UI.Output(fmt.Sprintf("wrote %v (%v files)", archivePath.ToString(), len(files)))
	base.UI.Output(fmt.Sprintf("sha512 %v", hex.EncodeToString(sha)))
	return nil
}
