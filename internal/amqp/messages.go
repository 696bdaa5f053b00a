package amqp

import (
	"encoding/json"
	"time"
)

// IntegrationSyncMessage asks a worker to complete an integration
// sync. It carries the requesting actor so the resulting audit entry
// is attributed correctly; the worker fetches everything else from the
// repository.
type IntegrationSyncMessage struct {
	IntegrationID string    `json:"integration_id"`
	CompanyID     string    `json:"company_id"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewIntegrationSyncMessage creates a sync message for the given
// integration and actor.
func NewIntegrationSyncMessage(integrationID, companyID, userID, userName string) *IntegrationSyncMessage {
	return &IntegrationSyncMessage{
		IntegrationID: integrationID,
		CompanyID:     companyID,
		UserID:        userID,
		UserName:      userName,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *IntegrationSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// IntegrationSyncMessageFromJSON creates a message from JSON bytes.
func IntegrationSyncMessageFromJSON(data []byte) (*IntegrationSyncMessage, error) {
	var msg IntegrationSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
