// Package views holds the template helpers shared by every page.
package views

import (
	"html/template"
	"strings"
	"time"

	"terrepro/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.French)

// dateLayouts are the shapes dates arrive in from the API.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dateFR":   DateFR,
		"nombre":   Nombre,
		"euros":    Euros,
		"hectares": Hectares,
		"opBadge":  OperationBadge,
		"initials": func(u models.User) string {
			var out string
			for _, part := range []string{u.Prenom, u.Nom} {
				if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
					out += strings.ToUpper(string(r[0]))
				}
			}
			return out
		},
	}
}

// DateFR renders an API date as dd/mm/yyyy. Unparseable values are returned
// unchanged, empty values as a dash.
func DateFR(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return value
}

// Nombre formats a numeric API value the French way, with a decimal comma.
func Nombre(n models.Number) string {
	if strings.TrimSpace(n.String()) == "" {
		return "-"
	}
	return printer.Sprint(number.Decimal(n.Float(), number.MaxFractionDigits(2)))
}

func Euros(n models.Number) string {
	if strings.TrimSpace(n.String()) == "" {
		return "-"
	}
	return printer.Sprint(number.Decimal(n.Float(), number.Scale(2))) + " €"
}

func Hectares(n models.Number) string {
	formatted := Nombre(n)
	if formatted == "-" {
		return formatted
	}
	return formatted + " ha"
}

// OperationBadge maps an operation type to its badge css class.
func OperationBadge(t models.OperationType) string {
	switch t {
	case models.Fertilisation:
		return "badge-green"
	case models.Traitement:
		return "badge-orange"
	case models.Irrigation:
		return "badge-blue"
	case models.Desherbage:
		return "badge-yellow"
	case models.Recolte:
		return "badge-brown"
	}
	return "badge-grey"
}
