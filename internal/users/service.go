package users

import (
	"context"
	"fmt"

	"medfront.com/clinicdesk/internal/rest"
)

// User is the authenticated account as the backend returns it. Only
// display fields; the avatar is what the UI header shows.
type User struct {
	ID       int     `json:"id"`
	Fullname string  `json:"fullname"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Avatar   *string `json:"avatar"`
}

type userEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    User   `json:"data"`
}

// Service fetches the current user from the backend.
type Service struct {
	client *rest.Client
}

// NewService creates the user data access layer.
func NewService(client *rest.Client) *Service {
	return &Service{client: client}
}

// Current fetches the authenticated user. An unauthenticated session
// surfaces as the backend's 401.
func (s *Service) Current(ctx context.Context) (*User, error) {
	var envelope userEnvelope
	if err := s.client.Get(ctx, "/user", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return &envelope.Data, nil
}
