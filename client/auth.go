package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jemaristudio/eshop-go/core"
	"github.com/jemaristudio/eshop-go/transport"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token and captures it, with
// the user identity, into the session store.
//
// Blank email or password fails validation locally - the network call is
// never issued. A rejected login surfaces the server-supplied message on
// the returned error.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	const op = "client.Login"
	ctx, span := c.startSpan(ctx, "eshop.login")
	defer span.End()

	if email == "" {
		err := &core.APIError{Op: op, Kind: "validation", Message: "email can't be empty", Err: core.ErrValidation}
		span.RecordError(err)
		return nil, err
	}
	if password == "" {
		err := &core.APIError{Op: op, Kind: "validation", Message: "password can't be empty", Err: core.ErrValidation}
		span.RecordError(err)
		return nil, err
	}

	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, &core.APIError{Op: op, Kind: "encode", Err: err}
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:    c.endpoint("auth/login"),
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return nil, transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		c.logFailure(ctx, op, "decode", err)
		span.RecordError(err)
		return nil, decodeError(op, err)
	}

	if !resp.IsSuccess() || env.Success == nil || !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "login failed"
		}
		authErr := &core.APIError{
			Op:      op,
			Kind:    "auth",
			Status:  resp.Code,
			Message: msg,
			Err:     core.ErrInvalidCredentials,
		}
		span.RecordError(authErr)
		return nil, authErr
	}

	token, user, err := decodeLogin(env.Data)
	if err != nil {
		c.logFailure(ctx, op, "decode", err)
		span.RecordError(err)
		return nil, decodeError(op, err)
	}

	if err := c.sessions.SetCredentials(ctx, token, &user); err != nil {
		return nil, &core.APIError{Op: op, Kind: "session", Err: err}
	}

	c.logger.Info("Login succeeded", map[string]interface{}{
		"operation": "login",
		"user_id":   user.ID,
	})
	return &user, nil
}

// Register creates a new account. A nil error means the server accepted
// the registration; the caller logs in separately afterwards.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	const op = "client.Register"
	ctx, span := c.startSpan(ctx, "eshop.register")
	defer span.End()

	if name == "" {
		return &core.APIError{Op: op, Kind: "validation", Message: "name can't be empty", Err: core.ErrValidation}
	}
	if !validEmail(email) {
		return &core.APIError{Op: op, Kind: "validation", Message: "email not valid", Err: core.ErrValidation}
	}
	if password == "" {
		return &core.APIError{Op: op, Kind: "validation", Message: "password can't be empty", Err: core.ErrValidation}
	}

	body, err := json.Marshal(registerRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return &core.APIError{Op: op, Kind: "encode", Err: err}
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:    c.endpoint("auth/register"),
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "register failed")
		span.RecordError(srvErr)
		return srvErr
	}

	c.logger.Info("Registration succeeded", map[string]interface{}{
		"operation": "register",
		"email":     email,
	})
	return nil
}

// Logout clears the session. Purely local - the API holds no server-side
// session to invalidate.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.sessions.Clear(ctx); err != nil {
		return &core.APIError{Op: "client.Logout", Kind: "session", Err: err}
	}
	c.logger.Info("Logged out", map[string]interface{}{"operation": "logout"})
	return nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, r := range email {
		if r == '@' {
			return true
		}
	}
	return false
}
