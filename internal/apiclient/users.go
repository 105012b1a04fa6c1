package apiclient

import (
	"context"
	"net/http"
)

// User is a backend account as seen by other users.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Credentials are the email/password pair used to register or sign in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
	Token   string `json:"token"`
}

// UsersAPI wraps account endpoints.
type UsersAPI struct{ c *Client }

// Users returns the users resource wrapper.
func (c *Client) Users() *UsersAPI { return &UsersAPI{c: c} }

// Register creates an account. Sent without authentication.
func (a *UsersAPI) Register(ctx context.Context, cred Credentials) (AuthResponse, error) {
	if err := validateInput(cred); err != nil {
		return AuthResponse{}, err
	}
	var out AuthResponse
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/user/", Body: cred, Public: true}, &out)
	return out, err
}

// Login exchanges credentials for a token. Sent without authentication.
func (a *UsersAPI) Login(ctx context.Context, cred Credentials) (AuthResponse, error) {
	if err := validateInput(cred); err != nil {
		return AuthResponse{}, err
	}
	var out AuthResponse
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/user/login/", Body: cred, Public: true}, &out)
	return out, err
}

// RequestPasswordReset asks the backend to email a reset link.
func (a *UsersAPI) RequestPasswordReset(ctx context.Context, email string) error {
	in := struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: email}
	if err := validateInput(in); err != nil {
		return err
	}
	return a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/user/password-reset/", Body: in, Public: true}, nil)
}

// Me returns the signed-in user.
func (a *UsersAPI) Me(ctx context.Context) (User, error) {
	var out User
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/user/me/"}, &out)
	return out, err
}
