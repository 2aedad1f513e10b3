package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicassistant/internal/application/services"
	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/pkg/config"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

func TestChatService_Reply(t *testing.T) {
	t.Run("classifies then replies in the detected language", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		service := services.NewChatService(provider, configuredJamAI())

		provider.On("AddRow", mock.Anything, providers.TableKindAction, "symptom_classifier",
			map[string]interface{}{"user_message": "Saya demam"}).
			Return(&providers.GeneratedRow{Columns: map[string]string{
				"symptom_category":  "fever",
				"language_detected": "ms",
				"urgency_level":     "medium",
			}}, nil)
		provider.On("AddRow", mock.Anything, providers.TableKindChat, "health_assistant",
			map[string]interface{}{"User": "RESPOND IN BAHASA MALAYSIA ONLY. Saya demam"}).
			Return(&providers.GeneratedRow{Columns: map[string]string{"AI": "Sila berehat."}}, nil)

		reply, err := service.Reply(context.Background(), "Saya demam")
		require.NoError(t, err)

		assert.Equal(t, entities.RoleAssistant, reply.Role)
		assert.Equal(t, "Sila berehat.", reply.Content)
		assert.Equal(t, &entities.TriageMetadata{SymptomCategory: "fever", Language: "ms", Urgency: "medium"}, reply.Metadata)
		provider.AssertExpectations(t)
	})

	t.Run("classification failure falls back to unknown", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		service := services.NewChatService(provider, configuredJamAI())

		provider.On("AddRow", mock.Anything, providers.TableKindAction, "symptom_classifier", mock.Anything).
			Return(nil, &providers.UpstreamError{StatusCode: http.StatusInternalServerError})
		provider.On("AddRow", mock.Anything, providers.TableKindChat, "health_assistant",
			map[string]interface{}{"User": " I have a headache"}).
			Return(&providers.GeneratedRow{Columns: map[string]string{"AI": "Drink water."}}, nil)

		reply, err := service.Reply(context.Background(), "I have a headache")
		require.NoError(t, err)
		assert.Equal(t, "Drink water.", reply.Content)
		assert.Equal(t, entities.UnknownTriage(), *reply.Metadata)
	})

	t.Run("partial classification keeps unknown for missing fields", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		service := services.NewChatService(provider, configuredJamAI())

		provider.On("AddRow", mock.Anything, providers.TableKindAction, "symptom_classifier", mock.Anything).
			Return(&providers.GeneratedRow{Columns: map[string]string{"language_detected": "en"}}, nil)
		provider.On("AddRow", mock.Anything, providers.TableKindChat, "health_assistant",
			map[string]interface{}{"User": "RESPOND IN ENGLISH ONLY. hello"}).
			Return(&providers.GeneratedRow{Columns: map[string]string{"AI": "Hi!"}}, nil)

		reply, err := service.Reply(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, "unknown", reply.Metadata.SymptomCategory)
		assert.Equal(t, "en", reply.Metadata.Language)
		assert.Equal(t, "unknown", reply.Metadata.Urgency)
	})

	t.Run("missing assistant reply", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		service := services.NewChatService(provider, configuredJamAI())

		provider.On("AddRow", mock.Anything, providers.TableKindAction, mock.Anything, mock.Anything).
			Return(&providers.GeneratedRow{}, nil)
		provider.On("AddRow", mock.Anything, providers.TableKindChat, mock.Anything, mock.Anything).
			Return(&providers.GeneratedRow{Columns: map[string]string{}}, nil)

		_, err := service.Reply(context.Background(), "hello")
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "Failed to extract AI response", appErr.Message)
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus())
	})

	t.Run("chat table failure reports details", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		service := services.NewChatService(provider, configuredJamAI())

		provider.On("AddRow", mock.Anything, providers.TableKindAction, mock.Anything, mock.Anything).
			Return(&providers.GeneratedRow{}, nil)
		provider.On("AddRow", mock.Anything, providers.TableKindChat, mock.Anything, mock.Anything).
			Return(nil, &providers.UpstreamError{StatusCode: http.StatusUnauthorized, Message: "bad key"})

		_, err := service.Reply(context.Background(), "hello")
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "Failed to process request", appErr.Message)
		assert.Equal(t, "API request failed: 401", appErr.Fields["details"])
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus())
	})

	t.Run("transport failure details carry the error text", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		service := services.NewChatService(provider, configuredJamAI())

		provider.On("AddRow", mock.Anything, providers.TableKindAction, mock.Anything, mock.Anything).
			Return(nil, errors.New("timeout"))
		provider.On("AddRow", mock.Anything, providers.TableKindChat, mock.Anything, mock.Anything).
			Return(nil, errors.New("timeout"))

		_, err := service.Reply(context.Background(), "hello")
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "timeout", appErr.Fields["details"])
	})
}

func TestChatService_Reply_Validation(t *testing.T) {
	provider := new(MockGenTablesProvider)

	_, err := services.NewChatService(provider, configuredJamAI()).Reply(context.Background(), "")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Message is required", appErr.Message)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())

	for _, key := range []string{"", "your_jamai_api_key"} {
		_, err = services.NewChatService(provider, &config.JamAIConfig{APIKey: key}).Reply(context.Background(), "hi")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration), "key %q", key)
	}

	provider.AssertNotCalled(t, "AddRow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
