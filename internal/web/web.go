// Package web holds the browser client served at "/".
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/nikhilbhutani/voiceagent/internal/config"
)

//go:embed templates/*.html
var templates embed.FS

// Page renders the voice agent page seeded with the client audio settings.
type Page struct {
	tmpl  *template.Template
	audio config.AudioConfig
}

// NewPage parses the embedded template and binds audio to it.
func NewPage(audio config.AudioConfig) (*Page, error) {
	tmpl, err := template.ParseFS(templates, "templates/simple_agent.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Page{tmpl: tmpl, audio: audio}, nil
}

// Render writes the whole page or nothing.
func (p *Page) Render(w io.Writer) error {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "simple_agent.html", struct {
		AudioConfig config.AudioConfig
	}{p.audio}); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
