package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID        int    `json:"id"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

func (u User) DisplayName() string {
	name := strings.TrimSpace(u.Prenom + " " + u.Nom)
	if name == "" {
		return u.Email
	}
	return name
}

// Session is the persisted row behind a browser session cookie. The bearer
// token is stored sealed; see internal/session.
type Session struct {
	ID          string    `db:"id"`
	SealedToken []byte    `db:"token"`
	UserJSON    string    `db:"user_json"`
	ExpiresAt   time.Time `db:"expires_at"`
	CreatedAt   time.Time `db:"created_at"`
}

type CSRFToken struct {
	Token     string    `db:"token"`
	SessionID string    `db:"session_id"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Number holds a numeric API field that may arrive as a JSON number, a
// numeric string or null.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid numeric value %s: %w", data, err)
	}
	*n = Number(num.String())
	return nil
}

// Float returns the value, or 0 when it is empty or not numeric.
func (n Number) Float() float64 {
	return parseCost(string(n))
}

func (n Number) String() string {
	return string(n)
}

type Culture struct {
	ID           int    `json:"id"`
	NomCulture   string `json:"nom_culture"`
	Variete      string `json:"variete"`
	NomCategorie string `json:"nom_categorie"`
	DateSemis    string `json:"date_semis"`
	DateRecolte  string `json:"date_recolte"`
	Superficie   Number `json:"superficie"`
}

// CultureInput is the body of POST /api/cultures.
type CultureInput struct {
	NomCulture   string `json:"nom_culture" form:"nom_culture"`
	Variete      string `json:"variete" form:"variete"`
	NomCategorie string `json:"nom_categorie" form:"nom_categorie"`
	DateSemis    string `json:"date_semis" form:"date_semis"`
	DateRecolte  string `json:"date_recolte" form:"date_recolte"`
	Superficie   string `json:"superficie" form:"superficie"`
}
