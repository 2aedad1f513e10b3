package services

import (
	"context"
	"fmt"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
	"github.com/zatekoja/clinicassistant/pkg/config"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

const (
	columnSymptomCategory = "symptom_category"
	columnLanguage        = "language_detected"
	columnUrgency         = "urgency_level"
	columnAssistantReply  = "AI"
)

// ChatService answers patient messages: it triages the message through the
// symptom table and then asks the chat table for a reply in the detected language.
type ChatService struct {
	provider providers.GenTablesProvider
	cfg      *config.JamAIConfig
}

// NewChatService creates a new chat service
func NewChatService(provider providers.GenTablesProvider, cfg *config.JamAIConfig) *ChatService {
	return &ChatService{
		provider: provider,
		cfg:      cfg,
	}
}

// Reply returns the assistant message for one patient message
func (s *ChatService) Reply(ctx context.Context, message string) (*entities.ChatMessage, error) {
	if message == "" {
		return nil, apperrors.NewValidationError("Message is required")
	}
	if !s.cfg.Configured() {
		return nil, apperrors.NewConfigurationError("JamAI API key not configured. Please set JAMAI_API_KEY to your actual API key.")
	}

	triage := s.classify(ctx, message)

	prompt := fmt.Sprintf("%s %s", triage.LanguageInstruction(), message)
	row, err := s.provider.AddRow(ctx, providers.TableKindChat, s.cfg.ChatTableID, map[string]interface{}{
		"User": prompt,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("table_id", s.cfg.ChatTableID).Msg("Chat table request failed")
		return nil, apperrors.NewInternalError("Failed to process request", err).
			WithField("details", providers.FailureDetails(err))
	}

	reply := row.Text(columnAssistantReply)
	if reply == "" {
		observability.LoggerFromContext(ctx).Error().Str("row_id", row.RowID).Msg("Chat row has no assistant reply")
		return nil, apperrors.NewInternalError("Failed to extract AI response", nil)
	}

	return &entities.ChatMessage{
		Role:     entities.RoleAssistant,
		Content:  reply,
		Metadata: &triage,
	}, nil
}

// classify never fails: any missing field, or a failed call, is reported as unknown
func (s *ChatService) classify(ctx context.Context, message string) entities.TriageMetadata {
	triage := entities.UnknownTriage()

	row, err := s.provider.AddRow(ctx, providers.TableKindAction, s.cfg.SymptomTableID, map[string]interface{}{
		"user_message": message,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("table_id", s.cfg.SymptomTableID).Msg("Symptom classification failed")
		return triage
	}

	if v := row.Text(columnSymptomCategory); v != "" {
		triage.SymptomCategory = v
	}
	if v := row.Text(columnLanguage); v != "" {
		triage.Language = v
	}
	if v := row.Text(columnUrgency); v != "" {
		triage.Urgency = v
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("symptom_category", triage.SymptomCategory).
		Str("language", triage.Language).
		Str("urgency", triage.Urgency).
		Msg("Symptom classification")
	return triage
}
