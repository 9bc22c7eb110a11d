package models

import (
	"gorm.io/datatypes"
)

// Notification is an outbound message queued for delivery by an external
// mail relay.
type Notification struct {
	Base
	Channel   string         `gorm:"size:20;not null;index" json:"channel"`
	Recipient string         `gorm:"size:255;not null" json:"recipient"`
	Subject   string         `gorm:"size:255;not null" json:"subject"`
	Template  string         `gorm:"size:100" json:"template,omitempty"`
	Payload   datatypes.JSON `json:"payload"`
}
