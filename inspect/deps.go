package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylecascade/css"
	"stylecascade/resolver"
	"stylecascade/state"
	"stylecascade/utils/debug"
)

// Deps prints how custom properties declared in stylesheets refer to each
// other, reference cycles and, when there are none, an order in which the
// properties can be resolved.
func Deps(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("no stylesheets have been specified")
	}
	return dependencies(env, env.Log.Named("deps"), cmd.Args().Slice(), os.Stdout)
}

func dependencies(env *state.LocalEnv, log *zap.Logger, names []string, out io.Writer) error {
	styles, err := env.StyleContext()
	if styles == nil {
		return err
	}

	sheets := make([]*css.Stylesheet, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("unable to read stylesheet: %w", err)
		}
		sheets = append(sheets, styles.ParseStylesheet(data, name))
	}

	dg, err := resolver.BuildDependencyGraph(sheets...)
	if err != nil {
		return fmt.Errorf("unable to build dependency graph: %w", err)
	}

	tw := debug.NewTreeWriter()
	for _, name := range dg.Names() {
		refs := dg.References(name)
		if len(refs) == 0 {
			continue
		}
		tw.Line(0, "%s", name)
		for _, ref := range refs {
			if ref.InFallback {
				tw.Line(1, "%s (fallback)", ref.To)
				continue
			}
			tw.Line(1, "%s", ref.To)
		}
	}

	cycles, err := dg.Cycles()
	if err != nil {
		return fmt.Errorf("unable to find cycles: %w", err)
	}
	if len(cycles) > 0 {
		tw.Line(0, "cycles:")
		for _, c := range cycles {
			tw.Line(1, "%s", strings.Join(c, " -> "))
		}
		log.Warn("Reference cycles found, properties in them compute to guaranteed-invalid", zap.Int("cycles", len(cycles)))
	} else {
		order, err := dg.ResolutionOrder()
		if err != nil {
			return fmt.Errorf("unable to order properties: %w", err)
		}
		tw.Line(0, "order: %s", strings.Join(order, " "))
	}

	_, err = tw.WriteTo(out)
	return err
}
