package normalisers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLNormaliser extracts the visible text of HTML attachments.
type HTMLNormaliser struct{}

func (n *HTMLNormaliser) Normalise(data []byte) (string, error) {
	return HTMLToText(string(data)), nil
}

func (n *HTMLNormaliser) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (n *HTMLNormaliser) Priority() int {
	return 50
}

// HTMLToText reduces an HTML fragment or document to its visible text with
// collapsed whitespace. Input that does not parse is returned trimmed.
func HTMLToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	doc.Find("script, style, noscript, head").Remove()

	// keep block boundaries as word breaks
	doc.Find("p, div, br, li, h1, h2, h3, h4, h5, h6, tr, td, th").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	return collapseSpace(doc.Text())
}

// PlaintextNormaliser handles plain text and any type nothing else claims.
type PlaintextNormaliser struct{}

func (n *PlaintextNormaliser) Normalise(data []byte) (string, error) {
	return collapseSpace(string(data)), nil
}

func (n *PlaintextNormaliser) SupportedTypes() []string {
	return []string{"text/plain", "*/*"}
}

func (n *PlaintextNormaliser) Priority() int {
	return 1 // fallback
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
