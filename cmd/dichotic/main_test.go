package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	out := execute(t, "config")
	assert.Contains(t, out, "experiment:")
	assert.Contains(t, out, "DichoticListeningNoProbe")
	assert.Contains(t, out, "bg_color: 128,128,128,255")
}

func TestArchiveListEmpty(t *testing.T) {
	out := execute(t, "archive", "list", "--db", filepath.Join(t.TempDir(), "archive.db"))
	assert.Contains(t, out, "PARTICIPANT")
}
