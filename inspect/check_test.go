package inspect

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStylesheets_Clean(t *testing.T) {
	_, env := setupTestEnv(t)
	name := writeFile(t, t.TempDir(), "clean.css", `
		@property --gap { syntax: "<length>"; inherits: false; initial-value: 1px }
		p { color: red }
		@media print { p { color: black } }
	`)

	var out bytes.Buffer
	require.NoError(t, checkStylesheets(env, env.Log, []string{name}, &out))
	assert.Equal(t, name+": 2 rules, 1 @property, 0 @import\n", out.String())
}

func TestCheckStylesheets_Problems(t *testing.T) {
	_, env := setupTestEnv(t)
	name := writeFile(t, t.TempDir(), "bad.css", `
		@property --size { syntax: "<length>"; inherits: false }
		div > p { color: red }
	`)

	var out bytes.Buffer
	err := checkStylesheets(env, env.Log, []string{name}, &out)
	require.ErrorIs(t, err, ErrProblemsFound)
	assert.Contains(t, out.String(), "  warning: unsupported combinator selector")
	assert.Contains(t, out.String(), "  error: ")
	assert.Contains(t, out.String(), "--size")
}

func TestCheckStylesheets_Missing(t *testing.T) {
	_, env := setupTestEnv(t)
	var out bytes.Buffer
	err := checkStylesheets(env, env.Log, []string{filepath.Join(t.TempDir(), "none.css")}, &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrProblemsFound)
}
