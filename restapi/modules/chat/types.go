// Package chat adapts Telegram-style bot webhooks to text commands.
package chat

// SecretHeader carries the shared webhook secret
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Update is the subset of a bot update the webhook reads
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an incoming chat message
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// User is the sender of a message; its id is the principal
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// Chat is the conversation a reply goes to
type Chat struct {
	ID int64 `json:"id"`
}

// SendMessage is returned inline as the webhook response
type SendMessage struct {
	Method string `json:"method"`
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}
