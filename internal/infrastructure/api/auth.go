package api

import (
	"context"

	"github.com/doeshing/widgera/internal/domain"
)

// Login implements ports.AuthService.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.postJSON(ctx, pathLogin, req, &resp); err != nil {
		return domain.AuthResponse{}, err
	}
	return resp, nil
}

// Register implements ports.AuthService.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.postJSON(ctx, pathRegister, req, &resp); err != nil {
		return domain.AuthResponse{}, err
	}
	return resp, nil
}
