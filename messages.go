package pageglot

import "github.com/google/uuid"

// MessageType identifies a cross-context message.
type MessageType string

const (
	MsgTranslateText       MessageType = "TRANSLATE_TEXT"
	MsgTranslatePage       MessageType = "TRANSLATE_PAGE"
	MsgCancelTranslatePage MessageType = "CANCEL_TRANSLATE_PAGE"
	MsgGetStatus           MessageType = "GET_TRANSLATION_STATUS"
	MsgGetSelectedText     MessageType = "GET_SELECTED_TEXT"
	MsgPing                MessageType = "PING"
)

// Message is the wire shape exchanged between contexts. Contexts share
// no memory; everything crosses this boundary.
type Message struct {
	ID             string      `json:"id"`
	Type           MessageType `json:"type"`
	Text           string      `json:"text,omitempty"`
	SourceLanguage string      `json:"sourceLanguage,omitempty"`
	TargetLanguage string      `json:"targetLanguage,omitempty"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(t MessageType) Message {
	return Message{ID: uuid.NewString(), Type: t}
}

// Response is the reply shape for every message type. Fields beyond
// ID/Success are populated per type.
type Response struct {
	ID              string `json:"id"`
	Success         bool   `json:"success"`
	Result          string `json:"result,omitempty"`
	Error           string `json:"error,omitempty"`
	IsTranslated    bool   `json:"isTranslated,omitempty"`
	TranslatedCount int    `json:"translatedCount,omitempty"`
	Text            string `json:"text,omitempty"`
	HasSelection    bool   `json:"hasSelection,omitempty"`
}
