package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCreateClientFreeTierLimit(t *testing.T) {
	ts := newTestServer(t)
	userID, token := ts.createUser(t, "free@example.com", "free")

	for i := 1; i <= 5; i++ {
		w := ts.do(t, http.MethodPost, "/v1/clients", token, gin.H{
			"name": fmt.Sprintf("Client %d", i),
		})
		requireStatus(t, w, http.StatusCreated)
	}

	// The sixth is refused and nothing is written.
	w := ts.do(t, http.MethodPost, "/v1/clients", token, gin.H{"name": "Client 6"})
	requireStatus(t, w, http.StatusForbidden)
	if got := decode(t, w)["error"]; got != "Free tier limit reached (max 5 clients)" {
		t.Errorf("quota error = %v", got)
	}
	if n := ts.count(t, "SELECT COUNT(*) FROM clients WHERE user_id = ?", userID); n != 5 {
		t.Errorf("client count = %d, want 5", n)
	}
}

func TestCreateClientPaidUnlimited(t *testing.T) {
	ts := newTestServer(t)
	userID, token := ts.createUser(t, "paid@example.com", "paid")

	for i := 1; i <= 8; i++ {
		w := ts.do(t, http.MethodPost, "/v1/clients", token, gin.H{
			"name": fmt.Sprintf("Client %d", i),
		})
		requireStatus(t, w, http.StatusCreated)
	}
	if n := ts.count(t, "SELECT COUNT(*) FROM clients WHERE user_id = ?", userID); n != 8 {
		t.Errorf("client count = %d, want 8", n)
	}
}

func TestCreateClientValidation(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, "val@example.com", "free")

	w := ts.do(t, http.MethodPost, "/v1/clients", token, gin.H{"company": "Acme"})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestGetMyClientsPagination(t *testing.T) {
	ts := newTestServer(t)
	userID, token := ts.createUser(t, "pager@example.com", "paid")
	otherID, _ := ts.createUser(t, "noise@example.com", "paid")

	for i := 1; i <= 12; i++ {
		ts.createClient(t, userID, fmt.Sprintf("Client %02d", i))
	}
	ts.createClient(t, otherID, "Someone Else")

	w := ts.do(t, http.MethodGet, "/v1/clients", token, nil)
	requireStatus(t, w, http.StatusOK)
	body := decode(t, w)
	if body["totalCount"] != float64(12) {
		t.Errorf("totalCount = %v, want 12", body["totalCount"])
	}
	clients := body["clients"].([]interface{})
	if len(clients) != 10 {
		t.Fatalf("page 1 size = %d, want 10", len(clients))
	}
	// Newest first.
	first := clients[0].(map[string]interface{})
	if first["name"] != "Client 12" {
		t.Errorf("first client = %v, want Client 12", first["name"])
	}

	w = ts.do(t, http.MethodGet, "/v1/clients?page=2&pageSize=10", token, nil)
	requireStatus(t, w, http.StatusOK)
	body = decode(t, w)
	if body["pageNumber"] != float64(2) {
		t.Errorf("pageNumber = %v, want 2", body["pageNumber"])
	}
	clients = body["clients"].([]interface{})
	if len(clients) != 2 {
		t.Errorf("page 2 size = %d, want 2", len(clients))
	}

	// Beyond the data: empty list, same total.
	w = ts.do(t, http.MethodGet, "/v1/clients?page=5", token, nil)
	body = decode(t, w)
	if len(body["clients"].([]interface{})) != 0 {
		t.Error("page past the end should be empty")
	}
	if body["totalCount"] != float64(12) {
		t.Errorf("totalCount = %v, want 12", body["totalCount"])
	}
}

func TestUpdateClientOwnership(t *testing.T) {
	ts := newTestServer(t)
	ownerID, _ := ts.createUser(t, "owner@example.com", "free")
	_, intruderToken := ts.createUser(t, "intruder@example.com", "free")

	clientID := ts.createClient(t, ownerID, "Original Name")

	w := ts.do(t, http.MethodPut, fmt.Sprintf("/v1/clients/%d", clientID), intruderToken, gin.H{
		"name": "Hijacked",
	})
	requireStatus(t, w, http.StatusNotFound)

	var name string
	if err := ts.db.QueryRow("SELECT name FROM clients WHERE id = ?", clientID).Scan(&name); err != nil {
		t.Fatalf("read client: %v", err)
	}
	if name != "Original Name" {
		t.Errorf("client name = %q, changed by another user", name)
	}
}

func TestUpdateClient(t *testing.T) {
	ts := newTestServer(t)
	userID, token := ts.createUser(t, "edit@example.com", "free")
	clientID := ts.createClient(t, userID, "Before")

	w := ts.do(t, http.MethodPut, fmt.Sprintf("/v1/clients/%d", clientID), token, gin.H{
		"name":    "After",
		"company": "Acme Corp",
	})
	requireStatus(t, w, http.StatusOK)

	client := decode(t, w)["client"].(map[string]interface{})
	if client["name"] != "After" {
		t.Errorf("name = %v, want After", client["name"])
	}
	if client["company"] != "Acme Corp" {
		t.Errorf("company = %v, want Acme Corp", client["company"])
	}
}

func TestDeleteClientCascades(t *testing.T) {
	ts := newTestServer(t)
	userID, token := ts.createUser(t, "del@example.com", "free")
	clientID := ts.createClient(t, userID, "Doomed")
	ts.createFollowup(t, clientID, "call", dateOffset(0), "pending")
	ts.createFollowup(t, clientID, "email", dateOffset(3), "pending")

	w := ts.do(t, http.MethodDelete, fmt.Sprintf("/v1/clients/%d", clientID), token, nil)
	requireStatus(t, w, http.StatusNoContent)

	if n := ts.count(t, "SELECT COUNT(*) FROM clients WHERE id = ?", clientID); n != 0 {
		t.Error("client row survived deletion")
	}
	if n := ts.count(t, "SELECT COUNT(*) FROM followups WHERE client_id = ?", clientID); n != 0 {
		t.Error("follow-ups survived client deletion")
	}

	// Deleting again: gone is gone.
	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/v1/clients/%d", clientID), token, nil)
	requireStatus(t, w, http.StatusNotFound)
}
