package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/repositories"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const sessionTokenBytes = 32

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// AdminAuthService checks admin logins against the credential file
type AdminAuthService struct {
	repo     repositories.AdminCredentialRepository
	newToken func() (string, error)
}

// NewAdminAuthService creates a new admin auth service
func NewAdminAuthService(repo repositories.AdminCredentialRepository) *AdminAuthService {
	return &AdminAuthService{
		repo:     repo,
		newToken: generateSessionToken,
	}
}

// Login returns a session for the first admin entry matching username and password
func (s *AdminAuthService) Login(ctx context.Context, username, password string) (*entities.AdminSession, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("Username and password are required")
	}

	admins, err := s.repo.LoadAll(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("Failed to load admin credentials")
		return nil, apperrors.NewInternalError("Internal server error", err)
	}

	for _, admin := range admins {
		if admin.Username != username || !passwordMatches(admin.Password, password) {
			continue
		}

		token, err := s.newToken()
		if err != nil {
			return nil, apperrors.NewInternalError("Internal server error", err)
		}

		observability.LoggerFromContext(ctx).Info().Str("admin_id", admin.ID).Str("role", admin.Role).Msg("Admin logged in")
		return &entities.AdminSession{
			Token: token,
			ID:    admin.ID,
			Name:  admin.Name,
			Role:  admin.Role,
		}, nil
	}

	observability.LoggerFromContext(ctx).Warn().Str("username", username).Msg("Rejected admin login")
	return nil, apperrors.NewUnauthorizedError("Invalid username or password")
}

// passwordMatches compares against a bcrypt hash when stored is one, else as plaintext
func passwordMatches(stored, password string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
		}
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// generateSessionToken returns 32 random bytes, hex-encoded
func generateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
