package types

import "time"

// ShipmentStatusEntry is one append-only row in a shipment's history log.
type ShipmentStatusEntry struct {
	Status    string    `json:"estado"`
	Timestamp time.Time `json:"fecha"`
	Comment   string    `json:"comentario,omitempty"`
}

// ShipmentHistory is the ordered status log stored as jsonb on a shipment.
type ShipmentHistory []ShipmentStatusEntry

// Append returns the history with a new entry added; existing entries are
// never mutated or removed.
func (h ShipmentHistory) Append(status string, at time.Time, comment string) ShipmentHistory {
	return append(h, ShipmentStatusEntry{Status: status, Timestamp: at, Comment: comment})
}
