package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/followuphq/followup-golang/internal/auth"
	"github.com/followuphq/followup-golang/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- User Registration ---

// RegisterInput defines the expected JSON data for registration.
// The 'binding' tags are used by Gin for automatic validation.
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register is the handler for POST /v1/auth/register.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Emails are compared case-insensitively, so normalize before storing.
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// 1. --- Reject duplicate emails ---
	var existingID int64
	err := h.DB.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}
	if err != sql.ErrNoRows {
		h.serverError(c, "Database error", err)
		return
	}

	// 2. --- Hash the password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.serverError(c, "Failed to hash password", err)
		return
	}

	// 3. --- Save to database ---
	user := &models.User{
		Name:      input.Name,
		Email:     email,
		Plan:      models.PlanFree,
		CreatedAt: time.Now().UTC(),
	}
	user.PasswordHash = password.Hash

	result, err := h.DB.Exec(
		`INSERT INTO users (name, email, password_hash, plan, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, user.Plan, user.CreatedAt,
	)
	if err != nil {
		h.serverError(c, "Failed to register user", err)
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		h.serverError(c, "Failed to get new user ID", err)
		return
	}
	user.ID = id

	h.log().Info("user registered", zap.Int64("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    user,
	})
}

// --- User Login ---

// LoginInput defines the JSON data expected for a login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, name, password_hash, plan FROM users WHERE email = ?", email,
	).Scan(&user.ID, &user.Name, &user.PasswordHash, &user.Plan)
	if err != nil {
		if err == sql.ErrNoRows {
			// Same response as a bad password so emails can't be probed.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.serverError(c, "Database error", err)
		return
	}

	var password models.Password
	password.Hash = user.PasswordHash
	match, err := password.Matches(input.Password)
	if err != nil {
		h.serverError(c, "Failed to check password", err)
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		h.serverError(c, "Failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":   user.ID,
			"name": user.Name,
			"plan": user.Plan,
		},
	})
}

// --- Profile ---

// GetMyProfile is the handler for GET /v1/profile/me.
func (h *Handlers) GetMyProfile(c *gin.Context) {
	userID := currentUserID(c)

	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, name, email, plan, created_at FROM users WHERE id = ?", userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Plan, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.serverError(c, "Database error", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdatePlanInput defines the JSON for a plan change.
type UpdatePlanInput struct {
	Plan string `json:"plan" binding:"required"`
}

// UpdateMyPlan is the handler for PATCH /v1/profile/plan. Billing is handled
// elsewhere; this endpoint only flips the tier the quota policy reads.
func (h *Handlers) UpdateMyPlan(c *gin.Context) {
	userID := currentUserID(c)

	var input UpdatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidPlan(input.Plan) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan must be 'free' or 'paid'"})
		return
	}

	if _, err := h.DB.Exec("UPDATE users SET plan = ? WHERE id = ?", input.Plan, userID); err != nil {
		h.serverError(c, "Failed to update plan", err)
		return
	}

	h.log().Info("plan changed", zap.Int64("user_id", userID), zap.String("plan", input.Plan))
	c.JSON(http.StatusOK, gin.H{"message": "Plan updated", "plan": input.Plan})
}

// DeleteMyAccount is the handler for DELETE /v1/profile.
// Removal is transitive: the user's clients and their follow-ups go with the
// account. Done explicitly inside one transaction rather than relying on the
// driver honoring the schema's cascade rules.
func (h *Handlers) DeleteMyAccount(c *gin.Context) {
	userID := currentUserID(c)

	tx, err := h.DB.Begin()
	if err != nil {
		h.serverError(c, "Failed to start transaction", err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM followups WHERE client_id IN (SELECT id FROM clients WHERE user_id = ?)", userID,
	); err != nil {
		h.serverError(c, "Failed to delete follow-ups", err)
		return
	}
	if _, err := tx.Exec("DELETE FROM clients WHERE user_id = ?", userID); err != nil {
		h.serverError(c, "Failed to delete clients", err)
		return
	}

	result, err := tx.Exec("DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		h.serverError(c, "Failed to delete user", err)
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		h.serverError(c, "Failed to check affected rows", err)
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := tx.Commit(); err != nil {
		h.serverError(c, "Failed to commit transaction", err)
		return
	}

	h.log().Info("account deleted", zap.Int64("user_id", userID))
	c.Status(http.StatusNoContent)
}
