package services

import (
	"encoding/json"
	"log"
)

// Routing keys for published domain events.
const (
	EventAccountCreated  = "account.created"
	EventProspectCreated = "prospect.created"
)

// EventPublisher delivers a message body under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// publishEvent sends payload when a publisher is configured. Delivery
// failures are logged and never fail the calling workflow.
func publishEvent(publisher EventPublisher, routingKey string, payload interface{}) {
	if publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
