package alert

import (
	"encoding/json"
	"time"
)

// Severity grades how far a reading is outside its permitted range.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notification is the immutable record produced for one out-of-range
// sample. Only the Read/ReadAt pair may change after creation, and only
// through the owning client's mark-read calls.
type Notification struct {
	// ID is a UUIDv7. Its string form sorts in creation order, which makes
	// it both the dedup key and the pagination key.
	ID string `json:"id"`

	// OwnerID is the operator responsible for the originating tag. Empty
	// means the notification is visible in the "all" scope only.
	OwnerID string `json:"owner_id,omitempty"`

	Device   string   `json:"device"`
	Metric   string   `json:"metric"`
	Severity Severity `json:"severity"`

	// Message is free-form alert text. It may carry a serialized Detail
	// document; use Detail to decode it defensively.
	Message string `json:"message"`

	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Detail is the structured payload optionally embedded in Message.
type Detail struct {
	TagID string  `json:"tag_id"`
	Value float64 `json:"value"`
	Limit float64 `json:"limit"`
}

// Detail decodes the structured payload carried in Message. A message that
// is not a valid Detail document degrades to an empty Detail with ok=false;
// decoding never fails delivery.
func (n *Notification) Detail() (Detail, bool) {
	var d Detail
	if err := json.Unmarshal([]byte(n.Message), &d); err != nil {
		return Detail{}, false
	}
	if d.TagID == "" {
		return Detail{}, false
	}
	return d, true
}

// MarkAsRead flips the read flag with the current timestamp.
func (n *Notification) MarkAsRead() {
	n.Read = true
	now := time.Now()
	n.ReadAt = &now
}
