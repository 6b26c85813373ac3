package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/followuphq/followup-golang/internal/auth"
	"github.com/followuphq/followup-golang/internal/database"
	"github.com/followuphq/followup-golang/internal/handlers"
	"github.com/followuphq/followup-golang/internal/models"
	"github.com/followuphq/followup-golang/internal/routes"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// testServer runs the real router against an in-memory SQLite database, so
// every test goes through the same middleware and SQL as production.
type testServer struct {
	router *gin.Engine
	db     *sql.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenDBWithDriver("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := &handlers.Handlers{DB: db, Logger: zap.NewNop()}
	router := routes.SetupRouter(h, zap.NewNop(), nil)

	return &testServer{router: router, db: db}
}

// do performs a request and returns the recorder. body may be nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into a generic map.
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// createUser inserts a user directly and returns its ID and a valid token.
// The password hash is a placeholder; login flows are covered separately.
func (ts *testServer) createUser(t *testing.T, email, plan string) (int64, string) {
	t.Helper()

	result, err := ts.db.Exec(
		"INSERT INTO users (name, email, password_hash, plan, created_at) VALUES (?, ?, ?, ?, ?)",
		"Test User", email, "x", plan, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}

	token, err := auth.GenerateToken(id)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return id, token
}

// createClient inserts a client row directly.
func (ts *testServer) createClient(t *testing.T, userID int64, name string) int64 {
	t.Helper()

	result, err := ts.db.Exec(
		"INSERT INTO clients (user_id, name, created_at) VALUES (?, ?, ?)",
		userID, name, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("insert client: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("client id: %v", err)
	}
	return id
}

// createFollowup inserts a follow-up row directly.
func (ts *testServer) createFollowup(t *testing.T, clientID int64, reason, date, status string) int64 {
	t.Helper()

	result, err := ts.db.Exec(
		"INSERT INTO followups (client_id, reason, next_follow_up_date, status, created_at) VALUES (?, ?, ?, ?, ?)",
		clientID, reason, date, status, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("insert followup: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("followup id: %v", err)
	}
	return id
}

// dateOffset returns today's UTC date shifted by the given number of days,
// in the storage format.
func dateOffset(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(models.DateLayout)
}

// count runs a scalar COUNT query against the test database.
func (ts *testServer) count(t *testing.T, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := ts.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query: %v", err)
	}
	return n
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}
