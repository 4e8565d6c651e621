package outbox

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

type Event struct {
	ID            int64             `json:"id"`
	AggregateType string            `json:"aggregateType"`
	AggregateID   string            `json:"aggregateId"`
	Type          string            `json:"type"`
	Payload       []byte            `json:"payload"`
	Headers       map[string]string `json:"headers,omitempty"`
	Traceparent   string            `json:"traceparent,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	Status        Status            `json:"status"`
	RelayID       string            `json:"relayId,omitempty"`
	LeaseUntil    time.Time         `json:"leaseUntil,omitzero"`
	RetryCount    int               `json:"retryCount,omitempty"`
	LastError     *string           `json:"lastError,omitempty"`
}

// Claimable reports whether a relay may lease the event at now: pending
// events, failed events still under maxRetries, and in-progress events whose
// lease expired.
func (e Event) Claimable(now time.Time, maxRetries int) bool {
	switch e.Status {
	case StatusPending:
		return true
	case StatusFailed:
		return e.RetryCount < maxRetries
	case StatusInProgress:
		return now.After(e.LeaseUntil)
	}
	return false
}
