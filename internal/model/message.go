package model

import "time"

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is a single entry in a chat transcript.
type ChatMessage struct {
	// ID is the unique identifier for the stored message row.
	ID string `json:"id"`

	// Text is the message body.
	Text string `json:"text"`

	// Sender is "user" or "bot".
	Sender Sender `json:"sender"`

	// Timestamp is when the message was appended to the transcript.
	Timestamp time.Time `json:"time"`
}
