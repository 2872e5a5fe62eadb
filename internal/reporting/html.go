package reporting

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownHTML converts GitHub-flavoured Markdown, tables included, to HTML.
var markdownHTML = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML renders the report as a standalone HTML page.
func RenderHTML(r *Report) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownHTML.Convert([]byte(RenderMarkdown(r)), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Risk Report</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
