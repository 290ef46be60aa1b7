package email

import (
	"bytes"
	"fmt"
	"html/template"

	"terrepro/internal/models"
)

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Bienvenue sur TerrePro</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f6f8f3; }
        .container { background: #fff; border-radius: 8px; padding: 40px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .logo { font-size: 28px; font-weight: bold; color: #3f7d20; }
        .cta-button { display: inline-block; background: #3f7d20; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 6px; }
        .footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #e9ecef; font-size: 14px; color: #6c757d; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">TerrePro</div>
        <p>Bonjour {{.Name}},</p>
        <p>Votre compte TerrePro est prêt. Vous pouvez dès maintenant :</p>
        <ul>
            <li>enregistrer vos cultures et parcelles,</li>
            <li>suivre vos opérations et intrants,</li>
            <li>saisir vos dépenses et vos récoltes,</li>
            <li>exporter vos bilans en PDF, Excel ou CSV.</li>
        </ul>
        <p style="text-align: center; margin: 30px 0;">
            <a href="{{.URL}}/dashboard" class="cta-button">Accéder au tableau de bord</a>
        </p>
        <div class="footer">
            <p>L'équipe TerrePro</p>
            <p style="font-size: 12px;">Cet email a été envoyé à {{.Email}}.</p>
        </div>
    </div>
</body>
</html>`))

type welcomeData struct {
	Name  string
	Email string
	URL   string
}

func (s *Service) generateWelcomeHTML(user models.User) (string, error) {
	var buf bytes.Buffer
	err := welcomeHTML.Execute(&buf, welcomeData{
		Name:  user.DisplayName(),
		Email: user.Email,
		URL:   s.appURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render welcome email: %w", err)
	}
	return buf.String(), nil
}

func (s *Service) generateWelcomeText(user models.User) string {
	return fmt.Sprintf(`Bonjour %s,

Votre compte TerrePro est prêt. Vous pouvez dès maintenant :
- enregistrer vos cultures et parcelles,
- suivre vos opérations et intrants,
- saisir vos dépenses et vos récoltes,
- exporter vos bilans en PDF, Excel ou CSV.

Accédez à votre tableau de bord : %s/dashboard

L'équipe TerrePro

---
Cet email a été envoyé à %s.`, user.DisplayName(), s.appURL, user.Email)
}
