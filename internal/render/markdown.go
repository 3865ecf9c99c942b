package render

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// MarkdownConverter turns rendered pages into Markdown documents that link
// to each other by .md filename.
type MarkdownConverter struct {
	conv *md.Converter
}

// NewMarkdownConverter creates a converter with CommonMark rules.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{conv: md.NewConverter("", true, nil)}
}

// Convert returns the Markdown form of a page. Navigation chrome (head,
// scripts, the classes tab list) is dropped and local .html links become .md.
func (c *MarkdownConverter) Convert(p Page) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", p.ID, err)
	}

	doc.Find("head, script, #list-mod").Remove()
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "#") {
			a.ReplaceWithSelection(a.Contents())
			return
		}
		if !strings.Contains(href, "://") && strings.HasSuffix(href, ".html") {
			a.SetAttr("href", strings.TrimSuffix(href, ".html")+".md")
		}
	})

	out := c.conv.Convert(doc.Find("body"))
	return []byte(strings.TrimSpace(out) + "\n"), nil
}

// Filename is the Markdown file a page is written to.
func (c *MarkdownConverter) Filename(p Page) string {
	return p.ID + ".md"
}
