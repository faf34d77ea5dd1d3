package email

import (
	"embed"
	"fmt"
	"html"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[string]string{
	account.TemplateSetPassword: "Confirm your account",
}

// Render loads the named template and replaces every {{key}} placeholder
// with the html-escaped substitution value.
func Render(name string, subst map[string]string) (subject string, body string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}

	raw, err := templateFS.ReadFile("templates/" + name + ".html")
	if err != nil {
		return "", "", fmt.Errorf("read email template %q: %w", name, err)
	}

	body = string(raw)
	for k, v := range subst {
		body = strings.ReplaceAll(body, "{{"+k+"}}", html.EscapeString(v))
	}
	return subject, body, nil
}
