package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseKeyValueArgs(t *testing.T) {
	parsed, err := ParseKeyValueArgs([]string{"REGION=us-east-1", "DEBUG=", "URL=https://a.example.com?x=1"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{
		"REGION": "us-east-1",
		"DEBUG":  "",
		"URL":    "https://a.example.com?x=1",
	}, parsed)
}

func TestParseKeyValueArgsRejectsMalformed(t *testing.T) {
	for _, arg := range []string{"no-equals", "=value", ""} {
		_, err := ParseKeyValueArgs([]string{arg})
		assert.Error(t, err, arg)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KB", FormatBytes(1024))
	assert.Equal(t, "1.5 MB", FormatBytes(1536*1024))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "2.5s", FormatDuration(2500*time.Millisecond))
	assert.Equal(t, "1m30s", FormatDuration(90*time.Second))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c", SanitizeFilename("a/b:c"))
	assert.Equal(t, "plain", SanitizeFilename("plain"))
}

func TestValidatePackageName(t *testing.T) {
	for _, name := range []string{"serde", "@types/node", "monolog/monolog", "dot.name", "under_score"} {
		assert.NoError(t, ValidatePackageName(name), name)
	}
	for _, name := range []string{"", "a/b/c", "../etc", "-leading", "trailing-"} {
		assert.Error(t, ValidatePackageName(name), name)
	}
}

func TestValidateVersion(t *testing.T) {
	for _, version := range []string{"latest", "1.0.0", "^1.2", "~3.0.1", ">=2.0", "1.x"} {
		assert.NoError(t, ValidateVersion(version), version)
	}
	for _, version := range []string{"", "1.0 || 2.0", "$(rm)"} {
		assert.Error(t, ValidateVersion(version), version)
	}
}

func TestSemaphoreBoundsConcurrency(t *testing.T) {
	sem := NewSemaphore(2)
	sem.Acquire()
	sem.Acquire()

	acquired := make(chan struct{})
	go func() {
		sem.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("third acquire should block")
	case <-time.After(20 * time.Millisecond):
	}

	sem.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire did not wake after release")
	}
}
