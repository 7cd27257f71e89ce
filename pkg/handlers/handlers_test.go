package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/auth"
	"github.com/arnavshah/roster-engine-go/pkg/client"
	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	h      *Handler
	router *gin.Engine
	admin  string
	staff  []*database.User
	tokens map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)

	h := NewHandler(db, auth.NewIssuer("test-secret", time.Hour), client.DefaultOptions())
	h.Now = func() time.Time { return time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC) }
	ts := &testServer{h: h, router: NewRouter(h), tokens: map[string]string{}}

	ctx := context.Background()
	admin, err := h.Users.Create(ctx, "root", "unused", database.RoleAdmin)
	require.NoError(t, err)
	ts.admin, err = h.Issuer.CreateToken(admin)
	require.NoError(t, err)

	for _, name := range []string{"alice", "bob"} {
		u, err := h.Users.Create(ctx, name, "unused", database.RoleStaff)
		require.NoError(t, err)
		ts.staff = append(ts.staff, u)
		ts.tokens[name], err = h.Issuer.CreateToken(u)
		require.NoError(t, err)
	}
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) createSchedule(t *testing.T, name string) string {
	t.Helper()
	w := ts.do(http.MethodPost, "/schedules", ts.admin, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["schedule"].(map[string]any)["id"].(string)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	_, err = ts.h.Users.Create(context.Background(), "carol", hash, database.RoleStaff)
	require.NoError(t, err)

	w := ts.do(http.MethodPost, "/auth/login", "", gin.H{"username": "carol", "password": "s3cret!"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "staff", body["role"])
	claims, err := ts.h.Issuer.VerifyToken(body["access_token"].(string))
	require.NoError(t, err)
	require.Equal(t, "carol", claims.Username)

	w = ts.do(http.MethodPost, "/auth/login", "", gin.H{"username": "carol", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/auth/login", "", gin.H{"username": "carol"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_FAILED", decode(t, w)["code"])
}

func TestStrategiesRequireLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/scheduling/strategies", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodGet, "/scheduling/strategies", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	for _, token := range []string{ts.tokens["alice"], ts.admin} {
		w = ts.do(http.MethodGet, "/scheduling/strategies", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		strategies := decode(t, w)["strategies"].([]any)
		require.Len(t, strategies, 5)
		require.Equal(t, "even-distribute", strategies[0])
	}

	// the rest of the scheduling surface stays admin only
	w = ts.do(http.MethodPost, "/scheduling/compare", ts.tokens["alice"], gin.H{})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAutoPopulateEndpoint(t *testing.T) {
	ts := newTestServer(t)
	scheduleID := ts.createSchedule(t, "Ward A")

	w := ts.do(http.MethodPost, "/scheduling/auto-populate", ts.admin, gin.H{
		"schedule_id":   scheduleID,
		"strategy_name": "even-distribute",
		"staff_ids":     []string{ts.staff[0].ID, ts.staff[1].ID},
		"start_date":    "2024-01-01",
		"end_date":      "2024-01-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.EqualValues(t, 4, body["shifts_created"])
	require.Len(t, body["assignments"].([]any), 4)

	w = ts.do(http.MethodGet, "/schedules/"+scheduleID, ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["shifts"].([]any), 4)

	w = ts.do(http.MethodGet, "/schedules/"+scheduleID+"/runs", ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	totals := decode(t, w)["totals"].(map[string]any)
	require.EqualValues(t, 1, totals["runs"])
	require.EqualValues(t, 4, totals["shifts_created"])

	w = ts.do(http.MethodGet, "/schedules/"+scheduleID+"/export.csv", ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "shift_id,staff_id,shift_type,start,end,duration_hours", lines[0])
}

func TestAutoPopulateErrors(t *testing.T) {
	ts := newTestServer(t)
	scheduleID := ts.createSchedule(t, "Ward A")
	staffIDs := []string{ts.staff[0].ID, ts.staff[1].ID}

	w := ts.do(http.MethodPost, "/scheduling/auto-populate", ts.admin, gin.H{
		"schedule_id":   scheduleID,
		"strategy_name": "even-distribute",
		"start_date":    "2024-01-01",
		"end_date":      "2024-01-02",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	require.Equal(t, "VALIDATION_FAILED", body["code"])
	require.Contains(t, body["fields"], "staff_ids")

	w = ts.do(http.MethodPost, "/scheduling/auto-populate", ts.admin, gin.H{
		"schedule_id":   scheduleID,
		"strategy_name": "even-distribute",
		"staff_ids":     staffIDs,
		"start_date":    "01/01/2024",
		"end_date":      "2024-01-02",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_INPUT", decode(t, w)["code"])

	w = ts.do(http.MethodPost, "/scheduling/auto-populate", ts.admin, gin.H{
		"schedule_id":   scheduleID,
		"strategy_name": "round-robin",
		"staff_ids":     staffIDs,
		"start_date":    "2024-01-01",
		"end_date":      "2024-01-02",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body = decode(t, w)
	require.Equal(t, "UNKNOWN_STRATEGY", body["code"])
	require.Contains(t, body["error"], "even-distribute")

	w = ts.do(http.MethodPost, "/scheduling/auto-populate", ts.admin, gin.H{
		"schedule_id":    scheduleID,
		"strategy_name":  "even-distribute",
		"staff_ids":      staffIDs,
		"start_date":     "2024-01-01",
		"end_date":       "2024-01-01",
		"shifts_per_day": 1,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "UNBALANCED_SCHEDULE", decode(t, w)["code"])

	w = ts.do(http.MethodPost, "/scheduling/auto-populate", ts.admin, gin.H{
		"schedule_id":   "missing",
		"strategy_name": "even-distribute",
		"staff_ids":     staffIDs,
		"start_date":    "2024-01-01",
		"end_date":      "2024-01-02",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompareEndpoint(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, "/scheduling/compare", ts.admin, gin.H{
		"staff_ids":  []string{ts.staff[0].ID, ts.staff[1].ID},
		"start_date": "2024-01-01",
		"end_date":   "2024-01-03",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	require.Len(t, body["comparison"].([]any), 5)
	require.NotEmpty(t, body["best_strategy"])
}

func TestGenerateAndValidateJSON(t *testing.T) {
	ts := newTestServer(t)
	payload := gin.H{
		"strategy": "even-distribute",
		"staff":    []gin.H{{"id": "a"}, {"id": "b"}},
		"shifts": []gin.H{
			{"id": "s1", "start": "2024-01-01T08:00:00Z", "end": "2024-01-01T16:00:00Z", "required_staff": 1},
			{"id": "s2", "start": "2024-01-01T16:00:00Z", "end": "2024-01-02T00:00:00Z", "required_staff": 1},
		},
	}

	w := ts.do(http.MethodPost, "/scheduling/validate", ts.admin, payload)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["valid"])

	w = ts.do(http.MethodPost, "/scheduling/generate", ts.admin, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)["result"].(map[string]any)
	require.Equal(t, "even-distribute", result["strategy_key"])
	summary := result["summary"].(map[string]any)
	require.EqualValues(t, 2, summary["shifts_covered"])

	payload["staff"] = []gin.H{{"id": "a"}, {"id": "a"}}
	w = ts.do(http.MethodPost, "/scheduling/validate", ts.admin, payload)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, false, body["valid"])
	require.Contains(t, body["error"], "duplicate staff ID: a")

	w = ts.do(http.MethodPost, "/scheduling/validate", ts.admin, gin.H{"staff": []gin.H{{"id": "a"}}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body = decode(t, w)
	require.Equal(t, false, body["valid"])
	require.Equal(t, "VALIDATION_FAILED", body["code"])
	fields := body["errors"].([]any)
	require.Len(t, fields, 2)
	require.Equal(t, "shifts", fields[0].(map[string]any)["field"])
	require.Equal(t, "strategy", fields[1].(map[string]any)["field"])
	require.Equal(t, "missing required field", fields[1].(map[string]any)["message"])
}

func TestStaffSelfService(t *testing.T) {
	ts := newTestServer(t)
	scheduleID := ts.createSchedule(t, "Ward A")
	alice := ts.staff[0]

	w := ts.do(http.MethodPost, "/shifts", ts.admin, gin.H{
		"schedule_id": scheduleID,
		"staff_id":    alice.ID,
		"start_time":  "2024-01-01T08:00:00Z",
		"end_time":    "2024-01-01T16:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shift := decode(t, w)["shift"].(map[string]any)
	require.Equal(t, "morning", shift["shift_type"])
	shiftID := shift["id"].(string)

	w = ts.do(http.MethodGet, "/me/roster", ts.tokens["alice"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["shifts"].([]any), 1)

	w = ts.do(http.MethodPost, "/shifts/"+shiftID+"/clock-in", ts.tokens["bob"], nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, "/shifts/"+shiftID+"/clock-in", ts.tokens["alice"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodPost, "/shifts/"+shiftID+"/clock-in", ts.tokens["alice"], nil)
	require.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(http.MethodPost, "/shifts/"+shiftID+"/clock-out", ts.tokens["alice"], nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/shifts/report", ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode(t, w)["shifts"].([]any)
	require.Equal(t, "alice", rows[0].(map[string]any)["staff_name"])
}

func TestPreferencesEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/me/preferences", ts.tokens["alice"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode(t, w)["preferences"].(map[string]any)
	require.EqualValues(t, 40, prefs["max_hours_per_week"])

	w = ts.do(http.MethodPut, "/me/preferences", ts.tokens["alice"], gin.H{
		"preferred_shift_types": []string{"night"},
		"unavailable_weekdays":  []int{6},
		"max_hours_per_week":    32,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(http.MethodGet, "/me/preferences", ts.tokens["alice"], nil)
	prefs = decode(t, w)["preferences"].(map[string]any)
	require.EqualValues(t, 32, prefs["max_hours_per_week"])
	require.Equal(t, []any{"night"}, prefs["preferred_shift_types"])

	w = ts.do(http.MethodPut, "/me/preferences", ts.tokens["alice"], gin.H{"unavailable_weekdays": []int{9}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPut, "/admin/preferences/"+ts.staff[1].ID, ts.admin, gin.H{"skills": []string{"forklift"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPut, "/admin/preferences/nobody", ts.admin, gin.H{"skills": []string{"forklift"}})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleCRUDAndUsers(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSchedule(t, "Ward A")

	w := ts.do(http.MethodPost, "/schedules", ts.admin, gin.H{"name": "Ward A"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPut, "/schedules/"+id, ts.admin, gin.H{"name": "Ward Z"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/schedules", ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["schedules"].([]any), 1)

	w = ts.do(http.MethodDelete, "/schedules/"+id, ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodGet, "/schedules/"+id, ts.admin, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/admin/users", ts.admin, gin.H{"username": "dave", "password": "longenough"})
	require.Equal(t, http.StatusCreated, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	require.Equal(t, "staff", user["role"])
	require.NotContains(t, user, "password_hash")

	w = ts.do(http.MethodPost, "/admin/users", ts.admin, gin.H{"username": "erin", "password": "longenough", "role": "owner"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
