// Package cmd holds the root cobra command for rcm
package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"runtime/trace"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcm-dev/rcm/internal/apply"
	"github.com/rcm-dev/rcm/internal/cmdutil"
	"github.com/rcm-dev/rcm/internal/configcmd"
	"github.com/rcm-dev/rcm/internal/deps"
	"github.com/rcm-dev/rcm/internal/ensure"
	"github.com/rcm-dev/rcm/internal/initcmd"
	"github.com/rcm-dev/rcm/internal/letcmd"
	"github.com/rcm-dev/rcm/internal/plan"
	"github.com/rcm-dev/rcm/internal/provenance"
	"github.com/rcm-dev/rcm/internal/sbom"
	"github.com/rcm-dev/rcm/internal/signals"
	"github.com/rcm-dev/rcm/internal/snapshot"
	"github.com/rcm-dev/rcm/internal/util"
	"github.com/rcm-dev/rcm/internal/workspacecmd"
)

type profileOpts struct {
	traceFile      string
	heapFile       string
	cpuProfileFile string
}

func initializeOutputFiles(helper *cmdutil.Helper, profiles *profileOpts) error {
	if profiles.traceFile != "" {
		cleanup, err := createTraceFile(profiles.traceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %v", err)
		}
		helper.RegisterCleanup(cleanup)
	}
	if profiles.heapFile != "" {
		cleanup, err := createHeapFile(profiles.heapFile)
		if err != nil {
			return fmt.Errorf("failed to create heap file: %v", err)
		}
		helper.RegisterCleanup(cleanup)
	}
	if profiles.cpuProfileFile != "" {
		cleanup, err := createCpuprofileFile(profiles.cpuProfileFile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile file: %v", err)
		}
		helper.RegisterCleanup(cleanup)
	}

	return nil
}

func getCmd(helper *cmdutil.Helper, profiles *profileOpts) *cobra.Command {
	root := &cobra.Command{
		Use:           "rcm",
		Short:         "rcm manages dependencies across cargo, npm, composer, and the host system.",
		Version:       helper.RcmVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeOutputFiles(helper, profiles)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	helper.AddFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&profiles.traceFile, "trace", "", "write a runtime trace to this file")
	root.PersistentFlags().StringVar(&profiles.heapFile, "heap", "", "write a heap profile to this file on exit")
	root.PersistentFlags().StringVar(&profiles.cpuProfileFile, "cpuprofile", "", "write a CPU profile to this file")

	root.AddCommand(initcmd.GetCmd(helper))
	root.AddCommand(deps.GetAddCmd(helper))
	root.AddCommand(deps.GetRemoveCmd(helper))
	root.AddCommand(ensure.GetCmd(helper))
	root.AddCommand(plan.GetCmd(helper))
	root.AddCommand(apply.GetCmd(helper))
	root.AddCommand(snapshot.GetCmd(helper))
	root.AddCommand(sbom.GetCmd(helper))
	root.AddCommand(provenance.GetCmd(helper))
	root.AddCommand(workspacecmd.GetCmd(helper))
	root.AddCommand(configcmd.GetCmd(helper))
	root.AddCommand(letcmd.GetCmd(helper))

	return root
}

// RunWithArgs runs rcm with the given argument vector and returns the
// process exit code.
func RunWithArgs(args []string, version string) int {
	util.InitPrintf()
	signalWatcher := signals.NewWatcher()
	helper := cmdutil.NewHelper(version)
	profiles := &profileOpts{}
	ctx := context.Background()

	root := getCmd(helper, profiles)
	root.SetArgs(args)

	doneCh := make(chan struct{})
	var execErr error
	go func() {
		execErr = root.ExecuteContext(ctx)
		close(doneCh)
	}()

	// Wait for either our command to finish, in which case we need to
	// clean up, or to receive a signal, in which case the signal handler
	// does the cleanup
	select {
	case <-doneCh:
		signalWatcher.Close()
		helper.Cleanup()
		cmdErr := &cmdutil.Error{}
		if errors.As(execErr, &cmdErr) {
			return cmdErr.ExitCode
		} else if execErr != nil {
			fmt.Fprintf(os.Stderr, "rcm error: %v\n", execErr)
			return 1
		}
		return 0
	case <-signalWatcher.Done():
		// We caught a signal, which already called the close handlers
		return 1
	}
}

type profileCleanup func() error

// Close implements io.Close for profileCleanup
func (pc profileCleanup) Close() error {
	return pc()
}

// To view a CPU trace, use "go tool trace [file]". Note that the trace
// viewer doesn't work under Windows Subsystem for Linux for some reason.
func createTraceFile(traceFile string) (profileCleanup, error) {
	f, err := os.Create(traceFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create trace file: %v", traceFile)
	}
	if err := trace.Start(f); err != nil {
		return nil, errors.Wrap(err, "failed to start tracing")
	}
	return func() error {
		trace.Stop()
		return f.Close()
	}, nil
}

// To view a heap trace, use "go tool pprof [file]" and type "top". You can
// also drop it into https://speedscope.app and use the "left heavy" or
// "sandwich" view modes.
func createHeapFile(heapFile string) (profileCleanup, error) {
	f, err := os.Create(heapFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create heap file: %v", heapFile)
	}
	return func() error {
		if err := pprof.WriteHeapProfile(f); err != nil {
			// we don't care if we fail to close the file we just failed to write to
			_ = f.Close()
			return errors.Wrapf(err, "failed to write heap file: %v", heapFile)
		}
		return f.Close()
	}, nil
}

// To view a CPU profile, drop the file into https://speedscope.app.
// Note: Running the CPU profiler doesn't work under Windows subsystem for
// Linux. The profiler has to be built for native Windows and run using the
// command prompt instead.
func createCpuprofileFile(cpuprofileFile string) (profileCleanup, error) {
	f, err := os.Create(cpuprofileFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create cpuprofile file: %v", cpuprofileFile)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, errors.Wrap(err, "failed to start CPU profiling")
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}
