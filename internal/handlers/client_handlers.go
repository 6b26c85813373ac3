package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/followuphq/followup-golang/internal/models"
	"github.com/followuphq/followup-golang/internal/quota"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- Inputs ---

// ClientInput is shared by create and update: name is the only required
// field, the rest are nullable contact details.
type ClientInput struct {
	Name    string  `json:"name" binding:"required"`
	Company *string `json:"company"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Notes   *string `json:"notes"`
}

// CreateClient is the handler for POST /v1/clients.
// Creation is plan-gated: the free tier owns at most five clients, and a
// denied creation is rejected outright, never truncated.
func (h *Handlers) CreateClient(c *gin.Context) {
	userID := currentUserID(c)

	var input ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Quota check: plan + current count ---
	var plan string
	if err := h.DB.QueryRow("SELECT plan FROM users WHERE id = ?", userID).Scan(&plan); err != nil {
		h.serverError(c, "Failed to load user plan", err)
		return
	}

	var clientCount int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM clients WHERE user_id = ?", userID).Scan(&clientCount); err != nil {
		h.serverError(c, "Failed to count clients", err)
		return
	}

	if decision := quota.CanCreateClient(plan, clientCount); !decision.Allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": decision.Reason})
		return
	}

	// 2. --- Insert ---
	client := &models.Client{
		UserID:    userID,
		Name:      input.Name,
		Company:   input.Company,
		Email:     input.Email,
		Phone:     input.Phone,
		Notes:     input.Notes,
		CreatedAt: time.Now().UTC(),
	}

	result, err := h.DB.Exec(
		`INSERT INTO clients (user_id, name, company, email, phone, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		client.UserID, client.Name, client.Company, client.Email, client.Phone, client.Notes, client.CreatedAt,
	)
	if err != nil {
		h.serverError(c, "Failed to create client", err)
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		h.serverError(c, "Failed to get new client ID", err)
		return
	}
	client.ID = id

	h.log().Info("client created", zap.Int64("user_id", userID), zap.Int64("client_id", id))
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// GetMyClients is the handler for GET /v1/clients.
// Returns the caller's clients newest-first with the raw total count, so the
// UI can paginate.
func (h *Handlers) GetMyClients(c *gin.Context) {
	userID := currentUserID(c)
	page, pageSize := pagination(c)

	var totalCount int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM clients WHERE user_id = ?", userID).Scan(&totalCount); err != nil {
		h.serverError(c, "Failed to count clients", err)
		return
	}

	// id DESC tie-break keeps the order stable when rows share a timestamp.
	rows, err := h.DB.Query(
		`SELECT id, user_id, name, company, email, phone, notes, created_at
		 FROM clients
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		h.serverError(c, "Database query failed", err)
		return
	}
	defer rows.Close()

	clients := make([]*models.Client, 0)
	for rows.Next() {
		var client models.Client
		if err := rows.Scan(
			&client.ID,
			&client.UserID,
			&client.Name,
			&client.Company,
			&client.Email,
			&client.Phone,
			&client.Notes,
			&client.CreatedAt,
		); err != nil {
			h.serverError(c, "Failed to scan client row", err)
			return
		}
		clients = append(clients, &client)
	}
	if err := rows.Err(); err != nil {
		h.serverError(c, "Error iterating client rows", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalCount": totalCount,
		"pageNumber": page,
		"pageSize":   pageSize,
		"clients":    clients,
	})
}

// UpdateClient is the handler for PUT /v1/clients/:id.
func (h *Handlers) UpdateClient(c *gin.Context) {
	userID := currentUserID(c)
	clientID := c.Param("id")

	var input ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The WHERE clause carries the ownership predicate: a row belonging to
	// someone else looks exactly like a missing row.
	if _, err := h.DB.Exec(
		`UPDATE clients SET name = ?, company = ?, email = ?, phone = ?, notes = ?
		 WHERE id = ? AND user_id = ?`,
		input.Name, input.Company, input.Email, input.Phone, input.Notes, clientID, userID,
	); err != nil {
		h.serverError(c, "Failed to update client", err)
		return
	}

	var client models.Client
	err := h.DB.QueryRow(
		`SELECT id, user_id, name, company, email, phone, notes, created_at
		 FROM clients WHERE id = ? AND user_id = ?`,
		clientID, userID,
	).Scan(&client.ID, &client.UserID, &client.Name, &client.Company, &client.Email, &client.Phone, &client.Notes, &client.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}
		h.serverError(c, "Failed to load client", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

// DeleteClient is the handler for DELETE /v1/clients/:id.
// Removing a client also removes its follow-ups.
func (h *Handlers) DeleteClient(c *gin.Context) {
	userID := currentUserID(c)
	clientID := c.Param("id")

	tx, err := h.DB.Begin()
	if err != nil {
		h.serverError(c, "Failed to start transaction", err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM followups WHERE client_id IN (SELECT id FROM clients WHERE id = ? AND user_id = ?)`,
		clientID, userID,
	); err != nil {
		h.serverError(c, "Failed to delete follow-ups", err)
		return
	}

	result, err := tx.Exec("DELETE FROM clients WHERE id = ? AND user_id = ?", clientID, userID)
	if err != nil {
		h.serverError(c, "Failed to delete client", err)
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		h.serverError(c, "Failed to check affected rows", err)
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	if err := tx.Commit(); err != nil {
		h.serverError(c, "Failed to commit transaction", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// pagination reads page/pageSize query params with sane defaults and caps.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
