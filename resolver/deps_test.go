package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"stylecascade/css"
	"stylecascade/resolver"
	"stylecascade/style"
)

func parseSheet(t *testing.T, text string) *css.Stylesheet {
	t.Helper()
	return style.NewContext(zaptest.NewLogger(t), style.Options{}).ParseStylesheet([]byte(text), "test.css")
}

func TestDependencyGraph(t *testing.T) {
	sheet := parseSheet(t, `
		:root { --a: var(--b); --b: var(--c, var(--d)); --c: 1px }
		p { --x: var(--x); color: var(--a) }
		@media screen { div { --e: var(--a) } }
		.loop { --p: var(--q) }
		.other { --q: calc(var(--p) + 1px) }
	`)
	dg, err := resolver.BuildDependencyGraph(sheet)
	require.NoError(t, err)

	assert.Equal(t, []string{"--a", "--b", "--c", "--d", "--e", "--p", "--q", "--x"}, dg.Names())
	assert.Equal(t, []resolver.Reference{
		{From: "--b", To: "--c"},
		{From: "--b", To: "--d", InFallback: true},
	}, dg.References("--b"))
	assert.Empty(t, dg.References("--c"))

	cycles, err := dg.Cycles()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"--p", "--q"}, {"--x"}}, cycles)

	_, err = dg.ResolutionOrder()
	assert.Error(t, err)
}

func TestDependencyGraph_ResolutionOrder(t *testing.T) {
	first := parseSheet(t, `:root { --a: var(--b); --gap-10: 1px }`)
	second := parseSheet(t, `p { --b: var(--c) } div { --gap-2: var(--gap-10) }`)

	dg, err := resolver.BuildDependencyGraph(first, second)
	require.NoError(t, err)

	cycles, err := dg.Cycles()
	require.NoError(t, err)
	assert.Empty(t, cycles)

	order, err := dg.ResolutionOrder()
	require.NoError(t, err)
	assert.Less(t, indexOf(order, "--c"), indexOf(order, "--b"))
	assert.Less(t, indexOf(order, "--b"), indexOf(order, "--a"))
	assert.Less(t, indexOf(order, "--gap-10"), indexOf(order, "--gap-2"))
	assert.Len(t, order, 5)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
