package chat

import "time"

// Roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Texts shown to the user as assistant messages.
const (
	GreetingText       = "Hello! I am your database assistant. How can I help you today?"
	CorruptHistoryText = "Error loading chat history. Starting fresh."
	EmptyResponseText  = "Sorry, I encountered an error processing your request."
	NetworkErrorText   = "Sorry, I encountered a network error. Please try again."
	UnstableServerText = "Warning: Connection to server seems unstable."
	UnreachableText    = "Error: Unable to connect to server. Please ensure the server is running."
	ClearFailedText    = "Error clearing chat history."
	ClearConfirmPrompt = "Are you sure you want to clear the chat history?"
)

// Message is one persisted chat turn.
type Message struct {
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
}

// Role returns "user" or "assistant".
func (m Message) Role() string {
	if m.IsUser {
		return RoleUser
	}
	return RoleAssistant
}

// NewUserMessage creates a user message stamped at now.
func NewUserMessage(content string, now time.Time) Message {
	return Message{Content: content, IsUser: true, Timestamp: now}
}

// NewAssistantMessage creates an assistant message stamped at now.
func NewAssistantMessage(content string, now time.Time) Message {
	return Message{Content: content, IsUser: false, Timestamp: now}
}
