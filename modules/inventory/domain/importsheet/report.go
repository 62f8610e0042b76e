package importsheet

import (
	"github.com/mdotservice/serviceinfo/modules/inventory/domain/item"
)

type Status string

const (
	// StatusUpdated is the endpoint's own success marker.
	StatusUpdated    Status = "1"
	StatusUnresolved Status = "unresolved"
	StatusRejected   Status = "rejected"
	StatusFailed     Status = "failed"
)

// Outcome is the result of one pair. Every pair that had a name yields
// exactly one outcome.
type Outcome struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	ItemID  string `json:"item_id,omitempty"`
	Status  Status `json:"status"`
	IQ      string `json:"iq,omitempty"`
	SQ      string `json:"sq,omitempty"`
	Balance string `json:"balance,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (o Outcome) Succeeded() bool { return o.Status == StatusUpdated }

type Report struct {
	DateRange       *item.DateRange `json:"date_range,omitempty"`
	DateRangeError  string          `json:"date_range_error,omitempty"`
	Outcomes        []Outcome       `json:"outcomes"`
	SuccessfulCount int             `json:"successful_count"`
	Completed       bool            `json:"completed"`
	Err             string          `json:"error,omitempty"`
}

func NewReport() *Report {
	return &Report{Outcomes: []Outcome{}}
}

// Record appends o and keeps the success counter in step.
func (r *Report) Record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Succeeded() {
		r.SuccessfulCount++
	}
}

// Processed is the number of pairs that were attempted.
func (r *Report) Processed() int { return len(r.Outcomes) }

// Successful returns only the outcomes the endpoint accepted.
func (r *Report) Successful() []Outcome {
	out := make([]Outcome, 0, r.SuccessfulCount)
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}
