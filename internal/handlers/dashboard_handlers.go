package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/followuphq/followup-golang/internal/models"
	"github.com/followuphq/followup-golang/internal/quota"
	"github.com/gin-gonic/gin"
)

//
// --- Dashboard ---
//
// Single endpoint returning everything the dashboard renders. Each view is
// computed by its own helper and every helper applies the ownership predicate
// itself; none of them share a pre-filtered working set.
//

// FollowupPreview is the projection used by the today and overdue lists.
type FollowupPreview struct {
	FollowUpID int64  `json:"followUpId"`
	ClientName string `json:"clientName"`
	Reason     string `json:"reason"`
	DueDate    string `json:"dueDate"`
}

// DashboardCounts are raw totals, independent of any preview cap, so the UI
// can render "showing 3 of 12 overdue".
type DashboardCounts struct {
	TotalClients     int `json:"totalClients"`
	TodayFollowUps   int `json:"todayFollowUps"`
	OverdueFollowUps int `json:"overdueFollowUps"`
}

// CalendarItem is one follow-up on the calendar, any status.
type CalendarItem struct {
	FollowUpID int64  `json:"followUpId"`
	ClientName string `json:"clientName"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

// DashboardResponse bundles the five views.
type DashboardResponse struct {
	TodayFollowUps   []FollowupPreview `json:"todayFollowUps"`
	OverdueFollowUps []FollowupPreview `json:"overdueFollowUps"`
	Counts           DashboardCounts   `json:"counts"`
	Calendar         []CalendarItem    `json:"calendar"`
	Streak           int               `json:"streak"`
}

// GetDashboard is the handler for GET /v1/dashboard.
func (h *Handlers) GetDashboard(c *gin.Context) {
	userID := currentUserID(c)
	today := todayUTC()

	todayList, err := h.todayFollowups(userID, today)
	if err != nil {
		h.serverError(c, "Failed to load today's follow-ups", err)
		return
	}

	overdueList, err := h.overdueFollowups(userID, today)
	if err != nil {
		h.serverError(c, "Failed to load overdue follow-ups", err)
		return
	}

	counts, err := h.dashboardCounts(userID, today)
	if err != nil {
		h.serverError(c, "Failed to load dashboard counts", err)
		return
	}

	calendar, err := h.calendarItems(userID)
	if err != nil {
		h.serverError(c, "Failed to load calendar", err)
		return
	}

	streak, err := h.streak(userID)
	if err != nil {
		h.serverError(c, "Failed to compute streak", err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		TodayFollowUps:   todayList,
		OverdueFollowUps: overdueList,
		Counts:           counts,
		Calendar:         calendar,
		Streak:           streak,
	})
}

// todayFollowups returns pending follow-ups due today, oldest first, capped
// at the preview limit shared by every plan.
func (h *Handlers) todayFollowups(userID int64, today string) ([]FollowupPreview, error) {
	rows, err := h.DB.Query(
		`SELECT f.id, c.name, f.reason, f.next_follow_up_date
		 FROM followups f
		 JOIN clients c ON f.client_id = c.id
		 WHERE c.user_id = ? AND f.status = ? AND f.next_follow_up_date = ?
		 ORDER BY f.next_follow_up_date ASC, f.id ASC
		 LIMIT ?`,
		userID, models.StatusPending, today, quota.TodayPreviewLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPreviews(rows)
}

// overdueFollowups returns pending follow-ups past their date, most urgent
// (oldest) first. The row cap comes from the quota policy: free-tier users
// see a truncated preview, paid users the full set.
func (h *Handlers) overdueFollowups(userID int64, today string) ([]FollowupPreview, error) {
	var plan string
	if err := h.DB.QueryRow("SELECT plan FROM users WHERE id = ?", userID).Scan(&plan); err != nil {
		return nil, err
	}

	query := `SELECT f.id, c.name, f.reason, f.next_follow_up_date
		 FROM followups f
		 JOIN clients c ON f.client_id = c.id
		 WHERE c.user_id = ? AND f.status = ? AND f.next_follow_up_date < ?
		 ORDER BY f.next_follow_up_date ASC, f.id ASC`
	args := []interface{}{userID, models.StatusPending, today}

	if limit := quota.VisibleOverdueLimit(plan); limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPreviews(rows)
}

func scanPreviews(rows *sql.Rows) ([]FollowupPreview, error) {
	previews := make([]FollowupPreview, 0)
	for rows.Next() {
		var p FollowupPreview
		if err := rows.Scan(&p.FollowUpID, &p.ClientName, &p.Reason, &p.DueDate); err != nil {
			return nil, err
		}
		previews = append(previews, p)
	}
	return previews, rows.Err()
}

// dashboardCounts returns the raw totals. These are never capped.
func (h *Handlers) dashboardCounts(userID int64, today string) (DashboardCounts, error) {
	var counts DashboardCounts

	err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM clients WHERE user_id = ?", userID,
	).Scan(&counts.TotalClients)
	if err != nil {
		return counts, err
	}

	err = h.DB.QueryRow(
		`SELECT COUNT(*) FROM followups f JOIN clients c ON f.client_id = c.id
		 WHERE c.user_id = ? AND f.status = ? AND f.next_follow_up_date = ?`,
		userID, models.StatusPending, today,
	).Scan(&counts.TodayFollowUps)
	if err != nil {
		return counts, err
	}

	err = h.DB.QueryRow(
		`SELECT COUNT(*) FROM followups f JOIN clients c ON f.client_id = c.id
		 WHERE c.user_id = ? AND f.status = ? AND f.next_follow_up_date < ?`,
		userID, models.StatusPending, today,
	).Scan(&counts.OverdueFollowUps)

	return counts, err
}

// calendarItems returns every follow-up regardless of status, for the
// calendar view.
func (h *Handlers) calendarItems(userID int64) ([]CalendarItem, error) {
	rows, err := h.DB.Query(
		`SELECT f.id, c.name, f.next_follow_up_date, f.status
		 FROM followups f
		 JOIN clients c ON f.client_id = c.id
		 WHERE c.user_id = ?
		 ORDER BY f.next_follow_up_date ASC, f.id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]CalendarItem, 0)
	for rows.Next() {
		var item CalendarItem
		if err := rows.Scan(&item.FollowUpID, &item.ClientName, &item.Date, &item.Status); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// streak fetches the distinct completion days (newest first) and runs the
// pure walk over them.
func (h *Handlers) streak(userID int64) (int, error) {
	rows, err := h.DB.Query(
		`SELECT DISTINCT f.next_follow_up_date
		 FROM followups f
		 JOIN clients c ON f.client_id = c.id
		 WHERE c.user_id = ? AND f.status = ?
		 ORDER BY f.next_follow_up_date DESC`,
		userID, models.StatusDone,
	)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return 0, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return ComputeStreak(dates, time.Now().UTC()), nil
}

// --- Calendar counts variant ---

// CalendarDayCount is the per-day rollup used by the month grid, which only
// needs dots, not items.
type CalendarDayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// GetCalendarCounts is the handler for GET /v1/dashboard/calendar-counts.
// Same grouping as the calendar view, aggregated to one count per day.
func (h *Handlers) GetCalendarCounts(c *gin.Context) {
	userID := currentUserID(c)

	rows, err := h.DB.Query(
		`SELECT f.next_follow_up_date, COUNT(*)
		 FROM followups f
		 JOIN clients c ON f.client_id = c.id
		 WHERE c.user_id = ?
		 GROUP BY f.next_follow_up_date
		 ORDER BY f.next_follow_up_date ASC`,
		userID,
	)
	if err != nil {
		h.serverError(c, "Database query failed", err)
		return
	}
	defer rows.Close()

	days := make([]CalendarDayCount, 0)
	for rows.Next() {
		var day CalendarDayCount
		if err := rows.Scan(&day.Date, &day.Count); err != nil {
			h.serverError(c, "Failed to scan calendar row", err)
			return
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		h.serverError(c, "Error iterating calendar rows", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}
