package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylecascade/css"
)

func TestRegisterProperty_Validation(t *testing.T) {
	tests := []struct {
		name    string
		reg     PropertyRegistration
		wantErr error
	}{
		{
			name:    "not a custom property",
			reg:     PropertyRegistration{Name: "color", Syntax: "*"},
			wantErr: ErrInvalidPropertyName,
		},
		{
			name:    "bad syntax",
			reg:     PropertyRegistration{Name: "--a", Syntax: "<lenght>"},
			wantErr: ErrInvalidSyntax,
		},
		{
			name:    "typed without initial value",
			reg:     PropertyRegistration{Name: "--a", Syntax: "<length>"},
			wantErr: ErrInvalidInitialValue,
		},
		{
			name:    "relative initial value",
			reg:     PropertyRegistration{Name: "--a", Syntax: "<length>", InitialValue: css.Tokenize("2em")},
			wantErr: ErrInvalidInitialValue,
		},
		{
			name:    "initial value of wrong type",
			reg:     PropertyRegistration{Name: "--a", Syntax: "<length>", InitialValue: css.Tokenize("red")},
			wantErr: ErrInvalidInitialValue,
		},
		{
			name:    "keyword initial value",
			reg:     PropertyRegistration{Name: "--a", Syntax: "*", InitialValue: css.Tokenize("inherit")},
			wantErr: ErrInvalidInitialValue,
		},
		{
			name:    "initial value with reference",
			reg:     PropertyRegistration{Name: "--a", Syntax: "*", InitialValue: css.Tokenize("var(--b)")},
			wantErr: ErrInvalidInitialValue,
		},
		{
			name: "universal without initial value",
			reg:  PropertyRegistration{Name: "--a", Syntax: "*"},
		},
		{
			name: "color list",
			reg:  PropertyRegistration{Name: "--a", Syntax: "<color>#", InitialValue: css.Tokenize("red, blue")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			err := ctx.RegisterProperty(tt.reg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ctx.Registry().Get(tt.reg.Name))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, ctx.Registry().Get(tt.reg.Name))
		})
	}
}

func TestRegisterProperty_Precedence(t *testing.T) {
	ctx := newTestContext(t)
	mustRegister(t, ctx, "--a", "<length>", true, "1px")

	err := ctx.RegisterProperty(PropertyRegistration{Name: "--a", Syntax: "*", Source: SourceConfig})
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	require.NoError(t, ctx.RegisterPropertyRules([]css.PropertyRule{
		{Name: "--a", Syntax: "<color>", Inherits: false, InitialValue: css.Tokenize("red")},
	}))
	assert.Equal(t, "<length>", ctx.Registry().Get("--a").Syntax.String())

	require.NoError(t, ctx.RegisterPropertyRules([]css.PropertyRule{
		{Name: "--b", Syntax: "<color>", InitialValue: css.Tokenize("red")},
		{Name: "--b", Syntax: "<number>", InitialValue: css.Tokenize("2")},
	}))
	assert.Equal(t, "<number>", ctx.Registry().Get("--b").Syntax.String())
	assert.Equal(t, []string{"--a", "--b"}, ctx.Registry().Names())
}

func TestRegisterPropertyRules_CombinesErrors(t *testing.T) {
	ctx := newTestContext(t)
	err := ctx.RegisterPropertyRules([]css.PropertyRule{
		{Name: "--ok", Syntax: "*"},
		{Name: "--bad", Syntax: "<length>"},
		{Name: "nope", Syntax: "*"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInitialValue)
	assert.ErrorIs(t, err, ErrInvalidPropertyName)
	assert.NotNil(t, ctx.Registry().Get("--ok"))
}

func TestInitialStyle_FollowsRegistry(t *testing.T) {
	ctx := newTestContext(t)
	before := ctx.InitialStyle()
	assert.Same(t, before, ctx.InitialStyle())
	assert.Nil(t, before.CustomPropertyValue("--a"))

	mustRegister(t, ctx, "--a", "<length>", true, "3px")
	after := ctx.InitialStyle()
	assert.NotSame(t, before, after)
	assert.Equal(t, "3px", customText(t, after, "--a"))
	assert.InDelta(t, DefaultFontSize, after.FontSize(), 1e-9)
}

func TestRegisteredTypes(t *testing.T) {
	tests := []struct {
		syntax string
		value  string
		want   string
	}{
		{"<length>", "1in", "96px"},
		{"<length-percentage>", "50%", "50%"},
		{"<number>", "1.5", "1.5"},
		{"<angle>", "0.5turn", "180deg"},
		{"<time>", "250ms", "0.25s"},
		{"<color>", "#ff0000", "rgb(255, 0, 0)"},
		{"<custom-ident>", "Foo", "Foo"},
		{"<length>+", "1px 2px", "1px 2px"},
		{"<length>#", "1px,2px", "1px, 2px"},
		{"big | small", "small", "small"},
	}
	for _, tt := range tests {
		t.Run(tt.syntax, func(t *testing.T) {
			ctx := newTestContext(t)
			mustRegister(t, ctx, "--v", tt.syntax, true, tt.value)
			s := build(t, ctx, nil, authorMatch(ctx, "--v: "+tt.value)).Style()
			assert.Equal(t, tt.want, customText(t, s, "--v"))
		})
	}
}
