// Package quota holds the plan-tier business rules: what a user may create
// and how much of a result set their plan is allowed to see. Everything here
// is a pure function of (plan, counts) so the handlers fetch the numbers and
// this package makes the call.
package quota

import "github.com/followuphq/followup-golang/internal/models"

const (
	// FreeClientLimit is the maximum number of clients a free-tier user may own.
	FreeClientLimit = 5

	// FreeOverdueLimit caps the overdue preview for free-tier users. It caps
	// returned rows only; the raw overdue count is always reported in full.
	FreeOverdueLimit = 3

	// TodayPreviewLimit caps the dashboard's today list for every plan. This
	// is a pagination concern, not a monetization one.
	TodayPreviewLimit = 5
)

// Decision is the outcome of a mutating-operation check.
type Decision struct {
	Allowed bool
	Reason  string
}

// CanCreateClient decides whether a user on the given plan, currently owning
// currentClientCount clients, may create another one. Paid users are never
// denied on this axis.
func CanCreateClient(plan string, currentClientCount int) Decision {
	if plan == models.PlanFree && currentClientCount >= FreeClientLimit {
		return Decision{Allowed: false, Reason: "Free tier limit reached (max 5 clients)"}
	}
	return Decision{Allowed: true}
}

// VisibleOverdueLimit returns the row cap for the overdue preview.
// 0 means uncapped.
func VisibleOverdueLimit(plan string) int {
	if plan == models.PlanFree {
		return FreeOverdueLimit
	}
	return 0
}
