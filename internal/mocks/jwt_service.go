package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default responses used when no override is set.
	Token       string
	UserID      uuid.UUID
	GenerateErr error
	ValidateErr error
}

var _ auth.JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	if m.GenerateErr != nil {
		return "", m.GenerateErr
	}
	if m.Token != "" {
		return m.Token, nil
	}
	return "test-token", nil
}

func (m *MockJWTService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	now := time.Now().UTC()
	return &auth.Claims{
		UserID:    m.UserID,
		Subject:   m.UserID.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}, nil
}
