package scraper

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/pagescribe/pagescribe/internal/model"
)

// nonContentSelectors lists elements stripped before extracting body text.
const nonContentSelectors = "script, style, noscript, template"

// Result is the outcome of scraping one page.
type Result struct {
	URL      string
	Content  string
	Metadata model.Metadata
}

// Failed reports whether the scrape produced no content.
func (r *Result) Failed() bool {
	return r.Content == ""
}

// Extractor pulls metadata and visible text out of HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses body as HTML, decoding it to UTF-8 from the charset named
// in contentType, a BOM or a <meta charset> tag. Malformed markup yields
// best-effort text.
func (e *Extractor) Extract(pageURL, contentType string, body []byte) *Result {
	res := &Result{
		URL: pageURL,
		Metadata: model.Metadata{
			model.MetaTitle:       model.NoTitle,
			model.MetaDescription: model.NoDescription,
			model.MetaURL:         pageURL,
		},
	}

	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		reader = bytes.NewReader(body)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		// The html5 parser recovers from bad markup; this only fires on read errors.
		res.Content = collapseWhitespace(string(body))
		return res
	}

	if title := extractPageTitle(doc); title != "" {
		res.Metadata[model.MetaTitle] = title
	}
	if desc := extractMetaDescription(doc); desc != "" {
		res.Metadata[model.MetaDescription] = desc
	}
	res.Content = extractBodyText(doc)

	return res
}

// extractPageTitle prefers <title>, then og:title.
func extractPageTitle(doc *goquery.Document) string {
	if title := collapseWhitespace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return collapseWhitespace(ogTitle)
	}

	return ""
}

// extractMetaDescription prefers meta description, then og:description.
func extractMetaDescription(doc *goquery.Document) string {
	if desc, exists := doc.Find("meta[name='description']").Attr("content"); exists {
		if desc = collapseWhitespace(desc); desc != "" {
			return desc
		}
	}

	if ogDesc, exists := doc.Find("meta[property='og:description']").Attr("content"); exists {
		return collapseWhitespace(ogDesc)
	}

	return ""
}

// inlineElements do not break words when their text is joined.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "cite": true, "code": true, "em": true,
	"i": true, "mark": true, "q": true, "s": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true,
}

// extractBodyText returns the visible text of <body>, or of the whole
// document when there is no body element.
func extractBodyText(doc *goquery.Document) string {
	sel := doc.Find("body").First()
	if sel.Length() == 0 {
		sel = doc.Selection
	}

	sel.Find(nonContentSelectors).Remove()

	var b strings.Builder
	appendText(&b, sel)
	return collapseWhitespace(b.String())
}

func appendText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch {
		case name == "#text":
			b.WriteString(s.Text())
		case strings.HasPrefix(name, "#"):
			// comments and doctype
		case inlineElements[name]:
			appendText(b, s)
		default:
			b.WriteString(" ")
			appendText(b, s)
			b.WriteString(" ")
		}
	})
}

// collapseWhitespace also makes s safe for a Postgres TEXT column:
// invalid UTF-8 becomes U+FFFD and NUL bytes are dropped.
func collapseWhitespace(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.Join(strings.Fields(s), " ")
}
