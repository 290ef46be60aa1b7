package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"terrepro/internal/models"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Nom                  string `json:"nom"`
	Prenom               string `json:"prenom"`
	Telephone            string `json:"telephone"`
}

// AuthResponse is the answer to a successful login or registration.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/login", creds)
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/register", reg)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var out AuthResponse
	if _, err := c.DoPublic(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return nil, ErrMissingToken
	}
	return &out, nil
}

func (c *Client) ListCultures(ctx context.Context, token string) ([]models.Culture, error) {
	var out []models.Culture
	if _, err := c.Do(ctx, token, Request{Method: http.MethodGet, Path: "/api/cultures"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCulture(ctx context.Context, token string, in models.CultureInput) (*models.Culture, error) {
	var out models.Culture
	if _, err := c.Do(ctx, token, Request{Method: http.MethodPost, Path: "/api/cultures", Body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOperations(ctx context.Context, token string) ([]models.Operation, error) {
	var out []models.Operation
	if _, err := c.Do(ctx, token, Request{Method: http.MethodGet, Path: "/api/operations"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCultureOperations(ctx context.Context, token, cultureID string) ([]models.Operation, error) {
	var out []models.Operation
	path := "/api/cultures/" + url.PathEscape(cultureID) + "/operations"
	if _, err := c.Do(ctx, token, Request{Method: http.MethodGet, Path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOperation(ctx context.Context, token, cultureID string, in models.OperationInput) (*models.Operation, error) {
	var out models.Operation
	path := "/api/cultures/" + url.PathEscape(cultureID) + "/operations"
	if _, err := c.Do(ctx, token, Request{Method: http.MethodPost, Path: path, Body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateFinance(ctx context.Context, token, operationID string, in models.OperationFinance) error {
	path := "/api/operations/" + url.PathEscape(operationID) + "/finance"
	_, err := c.Do(ctx, token, Request{Method: http.MethodPost, Path: path, Body: in}, nil)
	return err
}

func (c *Client) CreateHarvest(ctx context.Context, token string, in models.Harvest) error {
	path := "/api/cultures/" + url.PathEscape(in.CultureID) + "/recoltes"
	_, err := c.Do(ctx, token, Request{Method: http.MethodPost, Path: path, Body: in}, nil)
	return err
}

func (c *Client) GetProfile(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if _, err := c.Do(ctx, token, Request{Method: http.MethodGet, Path: "/api/user"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends the edited profile. Some API versions answer with the
// user wrapped in {"user": ...}; both shapes are accepted.
func (c *Client) UpdateProfile(ctx context.Context, token string, in models.ProfileUpdate) (*models.User, error) {
	var out struct {
		models.User
		Wrapped *models.User `json:"user"`
	}
	if _, err := c.Do(ctx, token, Request{Method: http.MethodPut, Path: "/api/user", Body: in}, &out); err != nil {
		return nil, err
	}
	if out.Wrapped != nil {
		return out.Wrapped, nil
	}
	return &out.User, nil
}
