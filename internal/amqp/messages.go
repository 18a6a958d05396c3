package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// TransactionSavedMessage announces a newly stored transaction. It carries
// only the identity; consumers load the row from the database.
type TransactionSavedMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSavedMessage(id, userID string) *TransactionSavedMessage {
	return &TransactionSavedMessage{
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSavedMessageFromJSON decodes a message and requires an id.
func TransactionSavedMessageFromJSON(data []byte) (*TransactionSavedMessage, error) {
	var msg TransactionSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("message has no transaction id")
	}
	return &msg, nil
}
