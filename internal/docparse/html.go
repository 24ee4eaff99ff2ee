package docparse

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/narravox/narravox/internal/model"
)

var errNoContent = errors.New("no usable paragraphs")

// HTMLParser parses HTML documents into ordered paragraphs. Headings,
// paragraphs, list items and table rows are kept; navigation chrome,
// scripts and styles are stripped.
type HTMLParser struct{}

// NewHTMLParser creates a new HTML parser
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// Supports reports whether the filename looks like HTML
func (p *HTMLParser) Supports(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// Parse converts HTML bytes into a document
func (p *HTMLParser) Parse(data []byte, filename string) (*model.Document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	var paragraphs []model.Paragraph
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "header", "footer", "aside", "noscript":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				text := normalizeSpace(nodeText(n))
				if text != "" && !isNoise(text) {
					paragraphs = append(paragraphs, model.Paragraph{
						Text:         text,
						Type:         model.ParagraphHeading,
						HeadingLevel: int(n.Data[1] - '0'),
					})
				}
				return
			case "p", "li", "blockquote", "figcaption":
				text := normalizeSpace(nodeText(n))
				if text != "" && !isNoise(text) {
					paragraphs = append(paragraphs, model.Paragraph{
						Text: text,
						Type: model.ParagraphBody,
					})
				}
				return
			case "tr":
				row := rowText(n)
				if row != "" && !isNoise(row) {
					paragraphs = append(paragraphs, model.Paragraph{
						Text: row,
						Type: model.ParagraphTableRow,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(paragraphs) == 0 {
		return nil, &ParseError{Filename: filename, Err: errNoContent}
	}

	return finishDocument(paragraphs, filename), nil
}

// nodeText collects the text content under a node
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// rowText flattens a table row into "cell | cell | cell"
func rowText(n *html.Node) string {
	var cells []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			if text := normalizeSpace(nodeText(c)); text != "" {
				cells = append(cells, text)
			}
		}
	}
	return strings.Join(cells, " | ")
}
