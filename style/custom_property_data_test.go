package style

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylecascade/css"
)

func literal(name, text string) *CustomProperty {
	return NewCustomPropertyWithData(name, css.NewVariableData(css.Tokenize(text), css.ParserContext{}))
}

func TestCustomPropertyData_CopyOnWrite(t *testing.T) {
	parent := NewCustomPropertyData()
	parent.Set("--a", literal("--a", "1"))
	parent.Set("--b", literal("--b", "2"))

	child := parent.Derive()
	child.Set("--b", literal("--b", "3"))
	child.Set("--c", literal("--c", "4"))

	assert.Equal(t, 2, parent.Size())
	assert.Equal(t, 3, child.Size())
	assert.Equal(t, "2", parent.Get("--b").Serialize())
	assert.Equal(t, "3", child.Get("--b").Serialize())
	assert.Nil(t, parent.Get("--c"))
	assert.Equal(t, []string{"--a", "--b", "--c"}, child.Names())
}

func TestCustomPropertyData_SetEqualValue(t *testing.T) {
	d := NewCustomPropertyData()
	d.Set("--a", literal("--a", "1px"))
	child := d.Derive()
	child.Set("--a", literal("--a", "1px"))

	assert.Equal(t, 1, child.Size())
	assert.Empty(t, child.own)
	assert.True(t, child.Equal(d))
}

func TestCustomPropertyData_Flatten(t *testing.T) {
	d := NewCustomPropertyData()
	for i := range 2 * maxAncestorCount {
		d = d.Derive()
		name := fmt.Sprintf("--p%d", i)
		d.Set(name, literal(name, fmt.Sprint(i)))
		require.Less(t, d.ancestorCount, maxAncestorCount)
	}

	assert.Equal(t, 2*maxAncestorCount, d.Size())
	for i := range 2 * maxAncestorCount {
		v := d.Get(fmt.Sprintf("--p%d", i))
		require.NotNil(t, v)
		assert.Equal(t, fmt.Sprint(i), v.Serialize())
	}
	// natural order puts --p10 after --p9
	names := d.Names()
	assert.Equal(t, "--p0", names[0])
	assert.Equal(t, fmt.Sprintf("--p%d", 2*maxAncestorCount-1), names[len(names)-1])
}

func TestCustomPropertyData_EmptyLinksPast(t *testing.T) {
	d := NewCustomPropertyData()
	d.Set("--a", literal("--a", "1"))
	empty := d.Derive()
	grandchild := empty.Derive()

	assert.Same(t, d, grandchild.parent)
	assert.Equal(t, 1, grandchild.ancestorCount)
}

func TestCustomProperty_Equal(t *testing.T) {
	assert.True(t, literal("--a", "1px").Equal(literal("--a", "1px")))
	assert.False(t, literal("--a", "1px").Equal(literal("--a", "2px")))
	assert.False(t, literal("--a", "1px").Equal(NewCustomPropertyWithValue("--a", Length{Value: 1})))
	assert.True(t, NewCustomPropertyWithValue("--a", Length{Value: 1}).Equal(NewCustomPropertyWithValue("--a", Length{Value: 1})))
	assert.True(t, NewGuaranteedInvalidCustomProperty("--a").Equal(NewGuaranteedInvalidCustomProperty("--a")))
	assert.Empty(t, NewGuaranteedInvalidCustomProperty("--a").Serialize())
}

func TestValueList_Serialize(t *testing.T) {
	list := ValueList{Values: []SyntaxValue{Length{Value: 1}, Length{Value: 50, Percent: true}}, Separator: ','}
	assert.Equal(t, "1px, 50%", list.Serialize())
	list.Separator = ' '
	assert.Equal(t, "1px 50%", list.Serialize())
}
