package resolver

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"stylecascade/css"
	"stylecascade/style"
)

//go:embed ua.css
var userAgentStylesheet []byte

// ErrNoRoot is returned for documents without a root element.
var ErrNoRoot = errors.New("document has no root element")

// Options configures a Resolver.
type Options struct {
	// NoUserAgentStylesheet leaves out the built-in element defaults.
	NoUserAgentStylesheet bool
	// VisitedLinks lists link targets treated as visited. Relative entries
	// are completed against the base URL of the style context.
	VisitedLinks []string
}

type sheetEntry struct {
	level  style.CascadeLevel
	source string
	sheet  *css.Stylesheet
	rules  []css.Rule
}

// Resolver computes the styles of document elements from the stylesheets
// added to it.
type Resolver struct {
	log     *zap.Logger
	ctx     *style.Context
	sheets  []sheetEntry
	layers  [style.LevelAuthor + 1][]string
	visited map[string]struct{}
}

// New creates a resolver sharing ctx. Unless disabled, the user agent
// stylesheet is added first.
func New(log *zap.Logger, ctx *style.Context, opts Options) (*Resolver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		log:     log.Named("resolver"),
		ctx:     ctx,
		visited: make(map[string]struct{}, len(opts.VisitedLinks)),
	}
	pctx := ctx.ParserContext()
	for _, link := range opts.VisitedLinks {
		r.visited[pctx.CompleteURL(strings.TrimSpace(link))] = struct{}{}
	}
	if !opts.NoUserAgentStylesheet {
		if _, err := r.AddStylesheet(style.LevelUserAgent, userAgentStylesheet, "user-agent"); err != nil {
			return nil, fmt.Errorf("unable to load user agent stylesheet: %w", err)
		}
	}
	return r, nil
}

// Context returns the style context.
func (r *Resolver) Context() *style.Context { return r.ctx }

// Stylesheets returns the stylesheets added so far, in order.
func (r *Resolver) Stylesheets() []*css.Stylesheet {
	sheets := make([]*css.Stylesheet, len(r.sheets))
	for i := range r.sheets {
		sheets[i] = r.sheets[i].sheet
	}
	return sheets
}

// AddStylesheet parses data and adds it at level. Its @property rules are
// registered; rejected registrations are reported in the returned error,
// the stylesheet is added regardless.
func (r *Resolver) AddStylesheet(level style.CascadeLevel, data []byte, source string) (*css.Stylesheet, error) {
	sheet := r.ctx.ParseStylesheet(data, source)
	for _, w := range sheet.Warnings {
		r.log.Debug("Stylesheet warning", zap.String("source", source), zap.String("warning", w))
	}
	for _, imp := range sheet.Imports() {
		r.log.Debug("Ignoring @import", zap.String("source", source), zap.String("url", imp))
	}
	for _, name := range sheet.Layers {
		if !slices.Contains(r.layers[level], name) {
			r.layers[level] = append(r.layers[level], name)
		}
	}
	r.sheets = append(r.sheets, sheetEntry{
		level:  level,
		source: source,
		sheet:  sheet,
		rules:  sheet.Rules(r.ctx.Options().Medium),
	})
	if err := r.ctx.RegisterPropertyRules(sheet.PropertyRules()); err != nil {
		return sheet, fmt.Errorf("stylesheet %s: %w", source, err)
	}
	return sheet, nil
}

func (r *Resolver) layerPriority(level style.CascadeLevel, layer string) style.LayerPriority {
	if layer == "" {
		return style.UnlayeredPriority
	}
	if i := slices.Index(r.layers[level], layer); i >= 0 {
		return style.LayerPriority(i)
	}
	// declared by a rule only, after every named layer seen so far
	return style.LayerPriority(len(r.layers[level]))
}

// ElementStyle is the computed style of one element.
type ElementStyle struct {
	Element *etree.Element
	Style   *style.RenderStyle
	Parent  *ElementStyle
	// Depth is zero for the root element.
	Depth int
}

// EffectiveValue returns the value used for id, the visited value inside
// visited links.
func (e *ElementStyle) EffectiveValue(id css.PropertyID) css.Value {
	if e.Style.InsideLink() == style.InsideVisitedLink {
		return e.Style.VisitedValue(id)
	}
	return e.Style.Value(id)
}

// Result holds the computed styles of a document.
type Result struct {
	// Elements in document order, the root first.
	Elements  []*ElementStyle
	byElement map[*etree.Element]*ElementStyle
}

// Root returns the root element style.
func (res *Result) Root() *ElementStyle {
	if len(res.Elements) == 0 {
		return nil
	}
	return res.Elements[0]
}

// Lookup returns the style of el, or nil if el is not part of the result.
func (res *Result) Lookup(el *etree.Element) *ElementStyle {
	return res.byElement[el]
}

// ResolveDocument computes the style of every element of doc, parents
// before children.
func (r *Resolver) ResolveDocument(doc *etree.Document) (*Result, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	res := &Result{byElement: make(map[*etree.Element]*ElementStyle)}
	r.resolveTree(res, root, nil, nil)
	r.log.Debug("Resolved document", zap.Int("elements", len(res.Elements)), zap.Int("stylesheets", len(r.sheets)))
	return res, nil
}

func (r *Resolver) resolveTree(res *Result, el *etree.Element, parent *ElementStyle, ancestors []*etree.Element) {
	es := r.resolveElement(el, parent, res.Root(), ancestors)
	res.Elements = append(res.Elements, es)
	res.byElement[el] = es

	path := append(ancestors, el)
	for _, child := range el.ChildElements() {
		r.resolveTree(res, child, es, path)
	}
}

func (r *Resolver) resolveElement(el *etree.Element, parent, root *ElementStyle, ancestors []*etree.Element) *ElementStyle {
	es := &ElementStyle{Element: el, Parent: parent}
	bctx := style.BuilderContext{
		Context:       r.ctx,
		IsRootElement: parent == nil,
		ElementName:   localName(el),
	}
	if parent != nil {
		es.Depth = parent.Depth + 1
		bctx.ParentStyle = parent.Style
		bctx.RootElementStyle = root.Style
	}

	s := r.ctx.NewStyle(bctx.ParentStyle)
	if isLink(el) {
		if r.isVisited(el) {
			s.SetInsideLink(style.InsideVisitedLink)
		} else {
			s.SetInsideLink(style.InsideUnvisitedLink)
		}
	}

	match := r.match(el, ancestors, s.InsideLink() != style.NotInsideLink)
	b := style.NewBuilder(s, bctx, match, style.LevelAuthor, style.NormalProperties())
	b.ApplyAllProperties()
	es.Style = b.Style()

	adjustStyle(es.Style, bctx)
	return es
}

func (r *Resolver) isVisited(el *etree.Element) bool {
	href := strings.TrimSpace(el.SelectAttrValue("href", ""))
	_, ok := r.visited[r.ctx.ParserContext().CompleteURL(href)]
	return ok
}
