package resolver

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// ReadDocument parses an XML or XHTML document. Declared encodings other
// than UTF-8 are converted unless enc is not nil, in which case the whole
// input is decoded with enc and the declaration is ignored.
func ReadDocument(r io.Reader, enc encoding.Encoding) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if enc != nil {
		r = enc.NewDecoder().Reader(r)
		doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}
	return doc, nil
}

// StyleElements returns the contents of <style> elements of doc in
// document order.
func StyleElements(doc *etree.Document) []string {
	var sheets []string
	for _, el := range doc.FindElements("//style") {
		if text := strings.TrimSpace(el.Text()); text != "" {
			sheets = append(sheets, text)
		}
	}
	return sheets
}
