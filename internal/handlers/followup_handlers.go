package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/followuphq/followup-golang/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- Inputs ---

type CreateFollowupInput struct {
	ClientID         int64  `json:"clientId" binding:"required"`
	Reason           string `json:"reason" binding:"required"`
	NextFollowUpDate string `json:"nextFollowUpDate" binding:"required"`
}

type EditFollowupInput struct {
	Reason           string `json:"reason" binding:"required"`
	NextFollowUpDate string `json:"nextFollowUpDate" binding:"required"`
	Status           string `json:"status" binding:"required"`
}

// FollowupWithClient is the list/detail projection: the raw follow-up plus
// the owning client's name so the UI doesn't need a second request.
type FollowupWithClient struct {
	models.Followup
	ClientName string `json:"clientName"`
}

// CreateFollowup is the handler for POST /v1/followups.
func (h *Handlers) CreateFollowup(c *gin.Context) {
	userID := currentUserID(c)

	var input CreateFollowupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validDate(input.NextFollowUpDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nextFollowUpDate must be YYYY-MM-DD"})
		return
	}

	// 1. --- Ensure the client belongs to the caller ---
	var clientID int64
	err := h.DB.QueryRow(
		"SELECT id FROM clients WHERE id = ? AND user_id = ?", input.ClientID, userID,
	).Scan(&clientID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}
		h.serverError(c, "Database error", err)
		return
	}

	// 2. --- Insert, always starting as pending ---
	followup := &models.Followup{
		ClientID:         clientID,
		Reason:           input.Reason,
		NextFollowUpDate: input.NextFollowUpDate,
		Status:           models.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}

	result, err := h.DB.Exec(
		`INSERT INTO followups (client_id, reason, next_follow_up_date, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		followup.ClientID, followup.Reason, followup.NextFollowUpDate, followup.Status, followup.CreatedAt,
	)
	if err != nil {
		h.serverError(c, "Failed to create follow-up", err)
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		h.serverError(c, "Failed to get new follow-up ID", err)
		return
	}
	followup.ID = id

	h.log().Info("followup created", zap.Int64("user_id", userID), zap.Int64("followup_id", id))
	c.JSON(http.StatusCreated, gin.H{"followUp": followup})
}

// GetMyFollowups is the handler for GET /v1/followups.
// One endpoint serves the follow-ups page and the dashboard's "view all
// today" link through optional filters:
//
//	?status=pending|done
//	?clientName=<substring>
//	?today=true
//
// Results are ordered by date ascending and paginated.
func (h *Handlers) GetMyFollowups(c *gin.Context) {
	userID := currentUserID(c)
	page, pageSize := pagination(c)

	// Base predicate: transitive ownership through the client.
	where := "c.user_id = ?"
	args := []interface{}{userID}

	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be 'pending' or 'done'"})
			return
		}
		where += " AND f.status = ?"
		args = append(args, status)
	}

	if clientName := c.Query("clientName"); clientName != "" {
		where += " AND c.name LIKE ?"
		args = append(args, "%"+clientName+"%")
	}

	if c.Query("today") == "true" {
		where += " AND f.next_follow_up_date = ?"
		args = append(args, todayUTC())
	}

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM followups f JOIN clients c ON f.client_id = c.id WHERE " + where
	if err := h.DB.QueryRow(countQuery, args...).Scan(&totalCount); err != nil {
		h.serverError(c, "Failed to count follow-ups", err)
		return
	}

	listQuery := `
		SELECT f.id, f.client_id, f.reason, f.next_follow_up_date, f.status, f.created_at, c.name
		FROM followups f
		JOIN clients c ON f.client_id = c.id
		WHERE ` + where + `
		ORDER BY f.next_follow_up_date ASC, f.id ASC
		LIMIT ? OFFSET ?`
	listArgs := append(args, pageSize, (page-1)*pageSize)

	rows, err := h.DB.Query(listQuery, listArgs...)
	if err != nil {
		h.serverError(c, "Database query failed", err)
		return
	}
	defer rows.Close()

	followups := make([]*FollowupWithClient, 0)
	for rows.Next() {
		var f FollowupWithClient
		if err := rows.Scan(
			&f.ID,
			&f.ClientID,
			&f.Reason,
			&f.NextFollowUpDate,
			&f.Status,
			&f.CreatedAt,
			&f.ClientName,
		); err != nil {
			h.serverError(c, "Failed to scan follow-up row", err)
			return
		}
		followups = append(followups, &f)
	}
	if err := rows.Err(); err != nil {
		h.serverError(c, "Error iterating follow-up rows", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalCount": totalCount,
		"pageNumber": page,
		"pageSize":   pageSize,
		"followUps":  followups,
	})
}

// MarkComplete is the handler for PUT /v1/followups/:id/complete.
// The only dedicated lifecycle transition: pending -> done. Marking an
// already-done follow-up again is a no-op that still returns success.
func (h *Handlers) MarkComplete(c *gin.Context) {
	userID := currentUserID(c)
	followupID := c.Param("id")

	// Select first so the idempotent re-complete doesn't read as not-found
	// (MySQL reports zero affected rows for a same-value update).
	var id int64
	err := h.DB.QueryRow(
		`SELECT f.id FROM followups f
		 JOIN clients c ON f.client_id = c.id
		 WHERE f.id = ? AND c.user_id = ?`,
		followupID, userID,
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Follow-up not found"})
			return
		}
		h.serverError(c, "Database error", err)
		return
	}

	if _, err := h.DB.Exec("UPDATE followups SET status = ? WHERE id = ?", models.StatusDone, id); err != nil {
		h.serverError(c, "Failed to mark follow-up complete", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// EditFollowup is the handler for PUT /v1/followups/:id.
// Full-field update: reason, date and status in one step. Status accepts any
// known value, so re-opening a done item is possible here even though the
// dedicated transition only goes one way.
func (h *Handlers) EditFollowup(c *gin.Context) {
	userID := currentUserID(c)
	followupID := c.Param("id")

	var input EditFollowupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validDate(input.NextFollowUpDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nextFollowUpDate must be YYYY-MM-DD"})
		return
	}
	if !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be 'pending' or 'done'"})
		return
	}

	var id int64
	err := h.DB.QueryRow(
		`SELECT f.id FROM followups f
		 JOIN clients c ON f.client_id = c.id
		 WHERE f.id = ? AND c.user_id = ?`,
		followupID, userID,
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Follow-up not found"})
			return
		}
		h.serverError(c, "Database error", err)
		return
	}

	if _, err := h.DB.Exec(
		"UPDATE followups SET reason = ?, next_follow_up_date = ?, status = ? WHERE id = ?",
		input.Reason, input.NextFollowUpDate, input.Status, id,
	); err != nil {
		h.serverError(c, "Failed to update follow-up", err)
		return
	}

	var followup models.Followup
	err = h.DB.QueryRow(
		`SELECT id, client_id, reason, next_follow_up_date, status, created_at
		 FROM followups WHERE id = ?`, id,
	).Scan(&followup.ID, &followup.ClientID, &followup.Reason, &followup.NextFollowUpDate, &followup.Status, &followup.CreatedAt)
	if err != nil {
		h.serverError(c, "Failed to load follow-up", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followUp": followup})
}

// DeleteFollowup is the handler for DELETE /v1/followups/:id.
func (h *Handlers) DeleteFollowup(c *gin.Context) {
	userID := currentUserID(c)
	followupID := c.Param("id")

	result, err := h.DB.Exec(
		`DELETE FROM followups
		 WHERE id = ? AND client_id IN (SELECT id FROM clients WHERE user_id = ?)`,
		followupID, userID,
	)
	if err != nil {
		h.serverError(c, "Failed to delete follow-up", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		h.serverError(c, "Failed to check affected rows", err)
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Follow-up not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// validDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil && len(s) == len(models.DateLayout)
}
