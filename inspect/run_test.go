package inspect

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"
	yaml "gopkg.in/yaml.v3"

	"stylecascade/config"
	"stylecascade/resolver"
	"stylecascade/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	require.NoError(t, err)
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleDocument = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><style>
  @property --gap { syntax: "&lt;length&gt;"; inherits: true; initial-value: 3px }
  p { margin-top: var(--gap); color: var(--ink, green) }
</style></head>
<body><p class="note">text</p></body>
</html>`

func TestResolveDocument_Tree(t *testing.T) {
	_, env := setupTestEnv(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "book.xhtml", sampleDocument)
	user := writeFile(t, dir, "user.css", `.note { --ink: navy }`)

	var out bytes.Buffer
	err := resolveDocument(env, env.Log, request{src: doc, sheets: []string{user}, format: config.DumpFormatTree}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "<p .note>\n")
	assert.Contains(t, text, "margin-top: 3px\n")
	assert.Contains(t, text, "color: rgb(0, 0, 128)\n")
	assert.Contains(t, text, "--ink: navy\n")
	assert.NotNil(t, env.Styles.Registry().Get("--gap"))
}

func TestResolveDocument_Yaml(t *testing.T) {
	_, env := setupTestEnv(t)
	doc := writeFile(t, t.TempDir(), "book.xhtml", sampleDocument)

	var out bytes.Buffer
	err := resolveDocument(env, env.Log, request{src: doc, format: config.DumpFormatYaml}, &out)
	require.NoError(t, err)

	var snap resolver.ElementSnapshot
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, "<html>", snap.Element)
	require.Len(t, snap.Children, 2)
	body := snap.Children[1]
	assert.Equal(t, "<body>", body.Element)
	require.Len(t, body.Children, 1)
	assert.Contains(t, body.Children[0].Properties, resolver.PropertySnapshot{Name: "color", Value: "rgb(0, 128, 0)"})
}

func TestResolveDocument_NoUserAgent(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Stylesheets.UserAgent = false
	doc := writeFile(t, t.TempDir(), "book.xhtml", `<html><body><p>x</p></body></html>`)

	var out bytes.Buffer
	require.NoError(t, resolveDocument(env, env.Log, request{src: doc}, &out))
	assert.NotContains(t, out.String(), "margin-top")
}

func TestResolveDocument_Errors(t *testing.T) {
	_, env := setupTestEnv(t)
	dir := t.TempDir()

	var out bytes.Buffer
	err := resolveDocument(env, env.Log, request{src: filepath.Join(dir, "missing.xhtml")}, &out)
	assert.Error(t, err)

	doc := writeFile(t, dir, "book.xhtml", sampleDocument)
	err = resolveDocument(env, env.Log, request{src: doc, sheets: []string{filepath.Join(dir, "missing.css")}}, &out)
	assert.Error(t, err)

	empty := writeFile(t, dir, "empty.xhtml", `<?xml version="1.0"?>`)
	err = resolveDocument(env, env.Log, request{src: empty}, &out)
	assert.Error(t, err)
}

func TestResolveDocument_ForcedEncoding(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Stylesheets.UserAgent = false
	data := append([]byte(`<html><p id="caf`), 0xe9, '"', '/', '>', '<', '/', 'h', 't', 'm', 'l', '>')
	doc := filepath.Join(t.TempDir(), "cp.xhtml")
	require.NoError(t, os.WriteFile(doc, data, 0644))

	var out bytes.Buffer
	require.NoError(t, resolveDocument(env, env.Log, request{src: doc, enc: charmap.Windows1252}, &out))
	assert.Contains(t, out.String(), "<p #café>")
}

func TestReportName(t *testing.T) {
	assert.Equal(t, "input/book.xhtml", reportName("input", 0, "/tmp/x/book.xhtml"))
	assert.Equal(t, "css/2-user.css", reportName("css", 2, "../user.css"))
}
