package models

import "time"

// Follow-up statuses. Pending is the initial state; MarkComplete moves a
// follow-up to Done. The edit endpoint accepts either value.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// ValidStatus reports whether s is a known follow-up status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusDone
}

// DateLayout is the storage format of next_follow_up_date. Keeping the date
// as a plain YYYY-MM-DD string means lexicographic comparison is calendar
// comparison, so the same queries run on MySQL and SQLite.
const DateLayout = "2006-01-02"

// Followup model. ClientID is immutable after creation; ownership is always
// resolved through the client (followups JOIN clients ON user_id).
type Followup struct {
	ID               int64     `json:"id" db:"id"`
	ClientID         int64     `json:"clientId" db:"client_id"`
	Reason           string    `json:"reason" db:"reason"`
	NextFollowUpDate string    `json:"nextFollowUpDate" db:"next_follow_up_date"`
	Status           string    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}
