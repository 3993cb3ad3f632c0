package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

// Kind identifies a lifecycle email.
type Kind string

const (
	KindWelcome  Kind = "welcome"
	KindFarewell Kind = "farewell"
)

// Message is one queued email.
type Message struct {
	Kind Kind
	To   string
	Name string
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var subjects = map[Kind]string{
	KindWelcome:  "Sign up",
	KindFarewell: "Goodbye from Task App",
}

// Render returns the subject and HTML body for msg.
func Render(msg Message) (string, string, error) {
	subject, ok := subjects[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown mail kind %q", msg.Kind)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(msg.Kind)+".html", msg); err != nil {
		return "", "", fmt.Errorf("render %s: %w", msg.Kind, err)
	}
	return subject, buf.String(), nil
}
