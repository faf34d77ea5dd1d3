package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
)

func TestRender_SetPassword(t *testing.T) {
	link := "https://desk.test/password-create?t=abc&x=1"

	subject, body, err := Render(account.TemplateSetPassword, map[string]string{
		account.SubstSetupLink: link,
	})
	require.NoError(t, err)

	assert.Equal(t, "Confirm your account", subject)
	assert.Contains(t, body, `href="https://desk.test/password-create?t=abc&amp;x=1"`)
	assert.NotContains(t, body, "{{setupLink}}")
}

func TestRender_EscapesSubstitutions(t *testing.T) {
	_, body, err := Render(account.TemplateSetPassword, map[string]string{
		account.SubstSetupLink: `"><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, err := Render("nope", nil)
	assert.Error(t, err)
}
