package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"

	"safetyrisk/form"
	"safetyrisk/ml"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed content/*.md
var contentFS embed.FS

//go:embed static
var staticFS embed.FS

type pages struct {
	index       *template.Template
	intro       template.HTML
	explanation template.HTML
	about       template.HTML
}

type pageData struct {
	Fields         []form.Field
	Result         *resultView
	Invalid        []*form.FieldError
	InferenceError string

	Intro       template.HTML
	Explanation template.HTML
	About       template.HTML
}

// resultView is the echoed input table of one prediction.
type resultView struct {
	Label   string
	Columns []string
	Values  []string
}

func newResultView(pred ml.Prediction) *resultView {
	view := &resultView{
		Label:   pred.Label,
		Columns: make([]string, ml.NumFeatures),
		Values:  make([]string, ml.NumFeatures),
	}
	for i, c := range form.Controls {
		view.Columns[i] = c.Label
		view.Values[i] = c.Display(pred.Vector[i])
	}
	return view
}

func loadPages() (*pages, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	p := &pages{index: index}
	for name, dst := range map[string]*template.HTML{
		"content/intro.md":       &p.intro,
		"content/explanation.md": &p.explanation,
		"content/about.md":       &p.about,
	} {
		html, err := renderMarkdown(name)
		if err != nil {
			return nil, err
		}
		*dst = html
	}
	return p, nil
}

// renderMarkdown converts an embedded, trusted markdown file to HTML.
func renderMarkdown(name string) (template.HTML, error) {
	source, err := contentFS.ReadFile(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func (p *pages) render(w io.Writer, data pageData) error {
	data.Intro = p.intro
	data.Explanation = p.explanation
	data.About = p.about
	return p.index.ExecuteTemplate(w, "index.html", data)
}
