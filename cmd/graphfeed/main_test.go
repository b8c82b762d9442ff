package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunRequiresCommand(t *testing.T) {
	require.Error(t, run(nil))
	require.Error(t, run([]string{"frobnicate"}))
}

func TestHelpTopics(t *testing.T) {
	require.NoError(t, run([]string{"help"}))
	require.NoError(t, run([]string{"help", "serve"}))
	require.NoError(t, run([]string{"help", "schema"}))
	require.Error(t, run([]string{"help", "unknown"}))
}

func TestSchemaCommandWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, run([]string{"schema", "-out", out}))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	sdl := string(b)
	require.True(t, strings.Contains(sdl, "type Query"))
	require.True(t, strings.Contains(sdl, "type Mutation"))
	require.True(t, strings.Contains(sdl, "enum MemberTypeId"))
}

func TestServeRejectsBadLogLevel(t *testing.T) {
	require.Error(t, run([]string{"serve", "-log.level", "loud"}))
}
