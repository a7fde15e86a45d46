package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageDirection distinguishes candidate replies from our own sends.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// MessageStatus is the delivery status of a message.
type MessageStatus string

const (
	MessageStatusSent        MessageStatus = "sent"
	MessageStatusReceived    MessageStatus = "received"
	MessageStatusDelivered   MessageStatus = "delivered"
	MessageStatusFailed      MessageStatus = "failed"
	MessageStatusUndelivered MessageStatus = "undelivered"
)

// Message is one entry in an interview's append-only message log. QuestionID
// is a lookup back-reference to the question the message asks or answers,
// never an ownership relation. LogSeq is assigned by the database on insert
// and gives a total order for messages created at the same instant.
type Message struct {
	ID          uuid.UUID        `json:"id"`
	InterviewID uuid.UUID        `json:"interview_id"`
	Direction   MessageDirection `json:"direction"`
	MessageText string           `json:"message_text"`
	Status      MessageStatus    `json:"status"`
	QuestionID  uuid.NullUUID    `json:"question_id,omitempty"`
	LogSeq      int64            `json:"log_seq"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewMessage creates a message record for appending to the log.
func NewMessage(interviewID uuid.UUID, direction MessageDirection, text string, status MessageStatus, questionID uuid.NullUUID) *Message {
	return &Message{
		ID:          uuid.New(),
		InterviewID: interviewID,
		Direction:   direction,
		MessageText: text,
		Status:      status,
		QuestionID:  questionID,
		CreatedAt:   time.Now().UTC(),
	}
}

// InboundAnswer pairs an inbound message with the sequence number of the
// question it was correlated to.
type InboundAnswer struct {
	Message        Message
	SequenceNumber int
}
