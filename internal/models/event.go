package models

import (
	"encoding/json"
	"strings"
)

// EventDate is the free-form date descriptor attached to a candidate event.
// Upstream sources populate it inconsistently; both fields are optional.
type EventDate struct {
	StartDate string `json:"start_date,omitempty"`
	When      string `json:"when,omitempty"`
}

// TicketInfo is a single ticket-info fragment. Price is free text
// ("$15", "Free entry", "$20-$30") and may be empty.
type TicketInfo struct {
	Source string `json:"source,omitempty"`
	Link   string `json:"link,omitempty"`
	Price  string `json:"price,omitempty"`
}

// CandidateEvent is an unvalidated event record from the events source.
// No schema is enforced upstream, so every field is optional and the
// normalizer extracts what it can.
type CandidateEvent struct {
	Title       string       `json:"title,omitempty"`
	Date        EventDate    `json:"date,omitempty"`
	Addresses   []string     `json:"address,omitempty"`
	Description string       `json:"description,omitempty"`
	TicketInfo  []TicketInfo `json:"ticket_info,omitempty"`
}

// Text returns a flattened lowercase representation of the event used for
// loose substring membership tests (e.g. free-event detection).
func (e CandidateEvent) Text() string {
	var b strings.Builder
	b.WriteString(e.Title)
	b.WriteByte(' ')
	b.WriteString(e.Date.StartDate)
	b.WriteByte(' ')
	b.WriteString(e.Date.When)
	b.WriteByte(' ')
	b.WriteString(strings.Join(e.Addresses, " "))
	b.WriteByte(' ')
	b.WriteString(e.Description)
	for _, ti := range e.TicketInfo {
		b.WriteByte(' ')
		b.WriteString(ti.Price)
		b.WriteByte(' ')
		b.WriteString(ti.Source)
	}
	return strings.ToLower(b.String())
}

// Address returns the first address string, or empty when none were provided.
func (e CandidateEvent) Address() string {
	if len(e.Addresses) == 0 {
		return ""
	}
	return e.Addresses[0]
}

// MarshalEvents renders events as indented JSON for inclusion in a
// generation prompt. Marshal failures degrade to an empty array rather
// than failing the plan request.
func MarshalEvents(events []CandidateEvent) string {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
