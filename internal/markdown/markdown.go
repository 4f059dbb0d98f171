package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// TextProcessor renders the static Markdown pages and cleans text that came
// from the backend before it is put into a page.
type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

func New() *TextProcessor {
	md := goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
		goldmark.WithExtensions(extension.Linkify, extension.Table),
	)

	// Raw HTML is allowed in the source for section wrappers; the policy
	// strips anything executable afterwards.
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()

	return &TextProcessor{md: md, policy: policy, strict: bluemonday.StrictPolicy()}
}

func (tp *TextProcessor) Render(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tp.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(tp.policy.SanitizeBytes(buf.Bytes())), nil
}

// PlainText strips every tag from s. Used for backend-supplied messages.
func (tp *TextProcessor) PlainText(s string) string {
	return strings.TrimSpace(tp.strict.Sanitize(s))
}

// LoadPages renders every .md file in dir, keyed by file name without extension.
func (tp *TextProcessor) LoadPages(dir string) (map[string]template.HTML, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	pages := make(map[string]template.HTML, len(files))
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		rendered, err := tp.Render(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		pages[strings.TrimSuffix(filepath.Base(f), ".md")] = rendered
	}
	return pages, nil
}
