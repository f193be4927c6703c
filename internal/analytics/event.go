package analytics

import "time"

const (
	TopicMappingCreated  = "mapping.created"
	TopicMappingResolved = "mapping.resolved"
)

// MappingCreatedEvent is emitted when a new short code is stored. Requests
// answered from an existing mapping do not emit it.
type MappingCreatedEvent struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	Custom    bool      `json:"custom"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// MappingResolvedEvent is emitted for every successful redirect.
type MappingResolvedEvent struct {
	Code       string    `json:"code"`
	LongURL    string    `json:"longUrl"`
	ResolvedAt time.Time `json:"resolvedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
}
