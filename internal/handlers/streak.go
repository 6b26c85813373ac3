package handlers

import (
	"time"

	"github.com/followuphq/followup-golang/internal/models"
)

// ComputeStreak counts consecutive calendar days with at least one completed
// follow-up, ending at today. datesDesc is the distinct set of YYYY-MM-DD
// dates carrying a done follow-up, sorted newest first.
//
// The walk requires today itself to be the first match: if the most recent
// completion day isn't today the streak is 0, and the first gap stops the
// count. Completion day is the follow-up's scheduled date (the model has no
// completion timestamp), so finishing a long-overdue item credits its
// original day, not today.
func ComputeStreak(datesDesc []string, today time.Time) int {
	streak := 0
	expected := today

	for _, date := range datesDesc {
		if date != expected.Format(models.DateLayout) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}

	return streak
}
