package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	// Basic info
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	// Company info
	CompanyName string `json:"CompanyName"`
	AppName     string `json:"AppName"`
	SupportURL  string `json:"SupportURL"`

	// Action URLs
	VerifyURL string `json:"VerifyURL"`

	// Additional data
	Passphrase    string    `json:"Passphrase"`
	ExpiresAt     time.Time `json:"ExpiresAt"`
	ExpiresAtText string    `json:"ExpiresAtText"`
	Time          string    `json:"Time"`
	TimeAt        time.Time `json:"TimeAt"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

var funcs = map[string]any{"default": defaultFn}

// Template names
const (
	Passphrase = "passphrase"
)

// Every email is three files: <name>.subject.tmpl and <name>.text.tmpl render
// as plain text, <name>.html.tmpl with html/template escaping.
var (
	textSet = texttpl.Must(texttpl.New("").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(funcs).ParseFS(FS, "*.html.tmpl"))
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, filename string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, filename, data); err != nil {
		return "", fmt.Errorf("render %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders the subject, text and html parts of the named email.
func Render(name string, data any) (subject string, text string, html string, err error) {
	if subject, err = execute(textSet, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(textSet, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(htmlSet, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
