package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylecascade/css"
	"stylecascade/state"
	"stylecascade/utils/debug"
)

// ErrProblemsFound is returned by check when any stylesheet has warnings
// or rejected registrations.
var ErrProblemsFound = errors.New("problems found")

// Check parses stylesheets and reports what the parser skipped and which
// @property rules cannot be registered.
func Check(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("no stylesheets have been specified")
	}
	return checkStylesheets(env, env.Log.Named("check"), cmd.Args().Slice(), os.Stdout)
}

func checkStylesheets(env *state.LocalEnv, log *zap.Logger, names []string, out io.Writer) error {
	styles, err := env.StyleContext()
	if styles == nil {
		return err
	}

	tw := debug.NewTreeWriter()
	var problems int
	for i, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("unable to read stylesheet: %w", err)
		}
		env.Rpt.Store(reportName("css", i+1, name), name)

		sheet := styles.ParseStylesheet(data, name)
		regErrs := multierr.Errors(styles.RegisterPropertyRules(sheet.PropertyRules()))

		tw.Line(0, "%s: %d rules, %d @property, %d @import", name, ruleCount(sheet), len(sheet.PropertyRules()), len(sheet.Imports()))
		for _, w := range sheet.Warnings {
			tw.Line(1, "warning: %s", w)
		}
		for _, e := range regErrs {
			tw.Line(1, "error: %v", e)
		}
		problems += len(sheet.Warnings) + len(regErrs)
		log.Debug("Stylesheet checked", zap.String("file", name), zap.Int("warnings", len(sheet.Warnings)), zap.Int("errors", len(regErrs)))
	}
	if _, err := tw.WriteTo(out); err != nil {
		return err
	}
	if problems > 0 {
		return fmt.Errorf("%d %w", problems, ErrProblemsFound)
	}
	return nil
}

func ruleCount(sheet *css.Stylesheet) int {
	var n int
	for _, item := range sheet.Items {
		switch {
		case item.Rule != nil:
			n++
		case item.MediaBlock != nil:
			n += len(item.MediaBlock.Rules)
		}
	}
	return n
}
