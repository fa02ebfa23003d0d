package activity

import "time"

// Outcome classifies how a proxied import ended.
type Outcome string

const (
	OutcomeImported   Outcome = "imported"
	OutcomeRejected   Outcome = "rejected"
	OutcomeBadGateway Outcome = "bad_gateway"
)

// OutcomeForStatus maps a relayed backend status to an outcome.
func OutcomeForStatus(status int) Outcome {
	if status >= 200 && status < 300 {
		return OutcomeImported
	}
	return OutcomeRejected
}

// ImportEntry is one audited import attempt that reached the forwarding stage.
type ImportEntry struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	EventID    string    `json:"event_id"`
	Operator   string    `json:"operator"`
	StatusCode int       `json:"status_code"`
	Outcome    Outcome   `json:"outcome"`
	Notes      *string   `json:"notes,omitempty"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
