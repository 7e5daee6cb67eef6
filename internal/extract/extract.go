// Package extract converts fetched document bytes into plain text for
// analysis. HTML is reduced with a tokenizer walk that drops script, style,
// and metadata regions; PDF attestation reports are read with a plain-text
// extractor. Both paths collapse whitespace so downstream keyword and regex
// matching sees a uniform view of the content.
package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/theopenlane/probity/internal/fetch"
)

// skippedElements are HTML regions whose text never describes the vendor's
// security or privacy posture
var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"svg":      {},
	"iframe":   {},
}

// Document is the extracted plain-text view of a fetched page or file
type Document struct {
	// Title is the page title, empty for PDFs without one
	Title string
	// Text is the whitespace-collapsed plain text content
	Text string
}

// FromResult extracts text from a fetched response, sniffing PDF content by
// header or magic bytes and treating everything else as HTML
func FromResult(result *fetch.Result) (*Document, error) {
	if result.ContentType() == "application/pdf" || bytes.HasPrefix(result.Body, []byte("%PDF-")) {
		text, err := FromPDF(result.Body)
		if err != nil {
			return nil, err
		}

		return &Document{Text: text}, nil
	}

	return FromHTML(result.Body), nil
}

// FromHTML reduces an HTML document to its title and visible text
func FromHTML(body []byte) *Document {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))

	var (
		sb      strings.Builder
		title   string
		inTitle bool
		skip    string
	)

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break
		}

		switch tokenType {
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)

			if _, ok := skippedElements[tag]; ok {
				skip = tag
			}

			if tag == "title" {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)

			if tag == skip {
				skip = ""
			}

			if tag == "title" {
				inTitle = false
			}
		case html.TextToken:
			if skip != "" {
				continue
			}

			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}

			if inTitle {
				if title == "" {
					title = text
				}

				continue
			}

			sb.WriteString(text)
			sb.WriteString(" ")
		}
	}

	return &Document{
		Title: title,
		Text:  CollapseWhitespace(sb.String()),
	}
}

// FromPDF extracts plain text from PDF bytes
func FromPDF(body []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", ErrPDFParseFailed
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", ErrPDFParseFailed
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", ErrPDFParseFailed
	}

	return CollapseWhitespace(buf.String()), nil
}

// CollapseWhitespace replaces runs of whitespace with single spaces
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
