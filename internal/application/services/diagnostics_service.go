package services

import (
	"context"
	"errors"

	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
	"github.com/zatekoja/clinicassistant/pkg/config"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

// DiagnosticsService reports which action tables the configured key can see
type DiagnosticsService struct {
	provider providers.GenTablesProvider
	cfg      *config.JamAIConfig
}

// NewDiagnosticsService creates a new diagnostics service
func NewDiagnosticsService(provider providers.GenTablesProvider, cfg *config.JamAIConfig) *DiagnosticsService {
	return &DiagnosticsService{
		provider: provider,
		cfg:      cfg,
	}
}

// ListTables returns the action table listing, unwrapped from items or tables when present
func (s *DiagnosticsService) ListTables(ctx context.Context) (interface{}, error) {
	if s.cfg.APIKey == "" {
		return nil, apperrors.NewValidationError("Missing JAMAI_API_KEY")
	}

	body, err := s.provider.ListTables(ctx, providers.TableKindAction)
	if err != nil {
		var upstream *providers.UpstreamError
		if errors.As(err, &upstream) {
			message := upstream.Message
			if message == "" {
				message = "Failed to list tables"
			}
			raw := upstream.Body
			if raw == nil {
				raw = map[string]interface{}{}
			}
			return nil, apperrors.NewUpstreamError(message, upstream.StatusCode, err).WithField("raw", raw)
		}
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("Failed to list tables")
		return nil, apperrors.NewInternalError("Internal server error", err)
	}

	return unwrapTables(body), nil
}

// unwrapTables picks items, then tables, then the body itself, skipping empty-ish values
func unwrapTables(body interface{}) interface{} {
	if obj, ok := body.(map[string]interface{}); ok {
		for _, key := range []string{"items", "tables"} {
			if v, ok := obj[key]; ok && present(v) {
				return v
			}
		}
	}
	if !present(body) {
		return []interface{}{}
	}
	return body
}

// present reports whether v is neither null, false, zero nor an empty string
func present(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
