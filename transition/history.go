package transition

import "time"

// Record is one completed transition, kept for "return to previous".
type Record struct {
	From    string
	To      string
	Payload any
	At      time.Time
}

// History is a bounded most-recent-N list of transition records.
type History struct {
	limit   int
	records []Record
}

// NewHistory creates a history keeping at most limit records.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Push appends a record, evicting the oldest past the limit.
func (h *History) Push(r Record) {
	if h == nil {
		return
	}
	h.records = append(h.records, r)
	if len(h.records) > h.limit {
		h.records = h.records[len(h.records)-h.limit:]
	}
}

// Records returns the retained records, oldest first.
func (h *History) Records() []Record {
	if h == nil {
		return nil
	}
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Previous returns the level id a "return to previous" should target:
// the destination of the second-most-recent record, or the origin of
// the only record when just one transition has happened.
func (h *History) Previous() (string, bool) {
	if h == nil || len(h.records) == 0 {
		return "", false
	}
	if len(h.records) >= 2 {
		return h.records[len(h.records)-2].To, true
	}
	return h.records[0].From, h.records[0].From != ""
}
