// Package provisioning defines the Kafka contracts for provisioning commands and results.
package provisioning

import (
	"time"

	"github.com/ortelius/media-provisioner/model"
)

// BatchCompletedEventType is the event_type of every published result
const BatchCompletedEventType = "provisioning.batch.completed"

// SchemaVersion of the published events
const SchemaVersion = "v1"

// CommandEvent is a text command consumed from the command topic
type CommandEvent struct {
	EventID   string `json:"event_id"`
	Principal int64  `json:"principal"`
	Command   string `json:"command"`
}

// BatchCompletedEvent is published after every add or delete batch
type BatchCompletedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Principal int64                      `json:"principal"`
	Action    model.Action               `json:"action"`
	Usernames []string                   `json:"usernames"`
	Succeeded map[model.Backend][]string `json:"succeeded"`
	Failures  []model.Outcome            `json:"failures,omitempty"`
	Complete  bool                       `json:"complete"`

	// Report is the rendered text sent back to the issuer
	Report string `json:"report"`
}
