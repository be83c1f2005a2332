// Package inspect implements program subcommands: style resolution for
// documents and static checks of stylesheets.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	yaml "gopkg.in/yaml.v3"

	"stylecascade/config"
	"stylecascade/resolver"
	"stylecascade/state"
	"stylecascade/style"
)

// Resolve computes styles of every element of an XHTML document and writes
// them out.
func Resolve(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("resolve")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input document has been specified")
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format := env.Cfg.Output.Format
	if cmd.IsSet("format") {
		if format, err = config.ParseDumpFormat(cmd.String("format")); err != nil {
			return err
		}
	}
	req := request{
		src:    src,
		sheets: cmd.StringSlice("css"),
		format: format,
		opts:   resolver.DumpOptions{All: env.Cfg.Output.All || cmd.Bool("all")},
	}
	if name := cmd.String("force-cp"); len(name) > 0 {
		if req.enc, err = ianaindex.IANA.Encoding(name); err != nil {
			return fmt.Errorf("unknown character set '%s': %w", name, err)
		}
		if req.enc == nil {
			return fmt.Errorf("unsupported character set '%s'", name)
		}
	}

	out, closer, err := openDestination(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closer())
	}()

	return resolveDocument(env, log, req, out)
}

type request struct {
	src    string
	sheets []string
	format config.DumpFormat
	opts   resolver.DumpOptions
	// enc overrides document encoding when not nil
	enc encoding.Encoding
}

func resolveDocument(env *state.LocalEnv, log *zap.Logger, req request, out io.Writer) error {
	styles, err := env.StyleContext()
	if styles == nil {
		return err
	}
	if err != nil {
		log.Warn("Some configured properties were not registered", zap.Error(err))
	}

	r, err := resolver.New(log, styles, resolver.Options{
		NoUserAgentStylesheet: !env.Cfg.Stylesheets.UserAgent,
		VisitedLinks:          env.Cfg.Engine.VisitedLinks,
	})
	if err != nil {
		return err
	}

	// user stylesheets from configuration go before the ones requested on
	// command line, all of them before document author styles
	for i, name := range slices.Concat(env.Cfg.Stylesheets.User, req.sheets) {
		env.Rpt.Store(reportName("css", i+1, name), name)
		if err := addStylesheetFile(log, r, style.LevelUser, name); err != nil {
			return err
		}
	}

	src := req.src
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open document: %w", err)
	}
	defer f.Close()
	env.Rpt.Store(reportName("input", 0, src), src)

	doc, err := resolver.ReadDocument(f, req.enc)
	if err != nil {
		return fmt.Errorf("unable to read document '%s': %w", src, err)
	}
	for i, text := range resolver.StyleElements(doc) {
		source := fmt.Sprintf("%s#style-%d", filepath.Base(src), i+1)
		if _, err := r.AddStylesheet(style.LevelAuthor, []byte(text), source); err != nil {
			log.Warn("Bad property registration", zap.String("source", source), zap.Error(err))
		}
	}

	res, err := r.ResolveDocument(doc)
	if err != nil {
		return fmt.Errorf("unable to resolve styles of '%s': %w", src, err)
	}
	log.Info("Styles resolved", zap.String("document", src), zap.Int("elements", len(res.Elements)))

	switch req.format {
	case config.DumpFormatYaml:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(resolver.Snapshot(res, styles, req.opts)); err != nil {
			return fmt.Errorf("unable to encode styles: %w", err)
		}
		return enc.Close()
	default:
		_, err = io.WriteString(out, resolver.Dump(res, styles, req.opts))
		return err
	}
}

func addStylesheetFile(log *zap.Logger, r *resolver.Resolver, level style.CascadeLevel, name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet: %w", err)
	}
	if _, err := r.AddStylesheet(level, data, name); err != nil {
		log.Warn("Bad property registration", zap.String("source", name), zap.Error(err))
	}
	return nil
}

// reportName numbers entries so files with the same base name from
// different directories do not collide.
func reportName(dir string, n int, path string) string {
	name := config.CleanFileName(filepath.Base(path))
	if n > 0 {
		name = fmt.Sprintf("%d-%s", n, name)
	}
	return dir + "/" + name
}

// openDestination returns STDOUT when fname is empty.
func openDestination(fname string) (io.Writer, func() error, error) {
	if len(fname) == 0 {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(fname)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	return f, f.Close, nil
}
