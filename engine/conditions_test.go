package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTable(t *testing.T) {
	src := "\ufefftarget, condition_label ,ordered\n" +
		"L,A,1\n" +
		",,\n" +
		"R, B ,0\n" +
		"L,C\n"
	tbl, err := ReadTable(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"target", "condition_label", "ordered"}, tbl.Fields)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, "B", tbl.Trials[1].Get("condition_label"))
	assert.Equal(t, 1, tbl.Trials[1].Index)
	assert.Equal(t, "", tbl.Trials[2].Get("ordered"))
	assert.True(t, tbl.Trials[2].Has("ordered"))
	assert.NoError(t, tbl.Require("target", "ordered"))
	assert.ErrorContains(t, tbl.Require("story"), `missing column "story"`)
}

func TestReadTableErrors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":        "",
		"blank header": "a,,c\n1,2,3\n",
		"extra fields": "a,b\n1,2,3\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conditions.csv")
	require.NoError(t, os.WriteFile(path, []byte("target\nL\nR\n"), 0o644))

	tbl, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, path, tbl.Path)
	assert.Equal(t, 2, tbl.Len())

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
