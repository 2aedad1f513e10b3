package entities

// UnknownTriageValue is reported for any triage field the classifier did not produce
const UnknownTriageValue = "unknown"

// MessageRole describes who authored a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is a single turn of the patient conversation. The server keeps no
// chat history; messages exist only for the duration of a request.
type ChatMessage struct {
	Role     MessageRole     `json:"role"`
	Content  string          `json:"content"`
	Metadata *TriageMetadata `json:"metadata,omitempty"`
}

// TriageMetadata is the symptom classification attached to an assistant reply
type TriageMetadata struct {
	SymptomCategory string `json:"symptomCategory"`
	Language        string `json:"language"`
	Urgency         string `json:"urgency"`
}

// UnknownTriage returns metadata with every field set to "unknown"
func UnknownTriage() TriageMetadata {
	return TriageMetadata{
		SymptomCategory: UnknownTriageValue,
		Language:        UnknownTriageValue,
		Urgency:         UnknownTriageValue,
	}
}

// LanguageInstruction returns the prompt prefix that pins the reply language
func (m TriageMetadata) LanguageInstruction() string {
	switch Language(m.Language) {
	case LanguageEnglish:
		return "RESPOND IN ENGLISH ONLY."
	case LanguageMalay:
		return "RESPOND IN BAHASA MALAYSIA ONLY."
	default:
		return ""
	}
}
