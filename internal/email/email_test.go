package email

import (
	"context"
	"testing"

	"terrepro/internal/config"
	"terrepro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledWithoutMailgun(t *testing.T) {
	svc := NewService(&config.Config{})
	assert.False(t, svc.IsEnabled())

	err := svc.SendWelcomeEmail(context.Background(), models.User{Email: "marie@example.com"})
	assert.Error(t, err)

	var nilSvc *Service
	assert.False(t, nilSvc.IsEnabled())
}

func TestWelcomeBodiesEscapeUserInput(t *testing.T) {
	svc := &Service{appURL: "https://app.terrepro.fr"}
	user := models.User{Prenom: "<script>", Nom: "Dupont", Email: "marie@example.com"}

	html, err := svc.generateWelcomeHTML(user)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt; Dupont")
	assert.Contains(t, html, "https://app.terrepro.fr/dashboard")

	text := svc.generateWelcomeText(user)
	assert.Contains(t, text, "Bonjour <script> Dupont,")
	assert.Contains(t, text, "marie@example.com")
}
