package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBoundary struct {
	version    string
	exitCode   int
	calls      [][]string
	bannerSink bytes.Buffer
}

func installFake(t *testing.T, fake *fakeBoundary) {
	t.Helper()
	prevRun, prevVersion, prevStdout := runLib, libVersion, stdout
	t.Cleanup(func() {
		runLib, libVersion, stdout = prevRun, prevVersion, prevStdout
	})
	runLib = func(args []string) int {
		forwarded := make([]string, len(args))
		copy(forwarded, args)
		fake.calls = append(fake.calls, forwarded)
		return fake.exitCode
	}
	libVersion = func() string { return fake.version }
	stdout = &fake.bannerSink
}

func TestBareInvocationPrintsBanner(t *testing.T) {
	fake := &fakeBoundary{version: "1.2.0"}
	installFake(t, fake)

	run([]string{"rcm"})

	assert.Equal(t, "RCM CLI - 1.2.0\n", fake.bannerSink.String())
}

func TestBareInvocationSubstitutesUnknown(t *testing.T) {
	fake := &fakeBoundary{version: ""}
	installFake(t, fake)

	run([]string{"rcm"})

	assert.Equal(t, "RCM CLI - unknown\n", fake.bannerSink.String())
}

func TestBareInvocationForwardsHelp(t *testing.T) {
	fake := &fakeBoundary{version: "1.2.0"}
	installFake(t, fake)

	run([]string{"/usr/local/bin/rcm"})

	assert.Equal(t, [][]string{{"rcm", "--help"}}, fake.calls)
}

func TestEmptyVectorCountsAsBare(t *testing.T) {
	fake := &fakeBoundary{version: "1.2.0"}
	installFake(t, fake)

	run(nil)

	assert.Equal(t, [][]string{{"rcm", "--help"}}, fake.calls)
	assert.True(t, strings.HasSuffix(fake.bannerSink.String(), "1.2.0\n"))
}

func TestNormalInvocationForwardsVerbatim(t *testing.T) {
	fake := &fakeBoundary{version: "1.2.0"}
	installFake(t, fake)

	args := []string{"rcm", "add", "cargo:serde@1.0", "--dev"}
	run(args)

	assert.Equal(t, [][]string{args}, fake.calls)
	assert.Empty(t, fake.bannerSink.String())
}

func TestExitCodePassesThroughUnchanged(t *testing.T) {
	for _, code := range []int{0, 1, 2, 42, 101, 255} {
		fake := &fakeBoundary{version: "1.2.0", exitCode: code}
		installFake(t, fake)

		assert.Equal(t, code, run([]string{"rcm", "plan"}))
	}
}

func TestRunIsCalledExactlyOnce(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"rcm"},
		{"rcm", "ensure"},
		{"rcm", "a", "b", "c"},
	} {
		fake := &fakeBoundary{version: "1.2.0"}
		installFake(t, fake)

		run(args)

		assert.Len(t, fake.calls, 1)
	}
}
