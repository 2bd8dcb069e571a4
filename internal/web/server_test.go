// ABOUTME: Tests for the HTTP and WebSocket dashboard feed.
// ABOUTME: Runs handlers against a temp SQLite database and a started Syncer.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/storage"
	"github.com/harperreed/classdash/internal/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "classdash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	syncer := sync.New(db)
	require.NoError(t, syncer.Start(context.Background()))
	t.Cleanup(func() { _ = syncer.Close() })

	return NewServer(db, syncer, nil), db
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func getChart(t *testing.T, s *Server) models.ChartData {
	t.Helper()
	rec := do(t, s, http.MethodGet, "/api/dashboard/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var chart models.ChartData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	return chart
}

func TestChartAfterStartIsSeeded(t *testing.T) {
	s, _ := setupServer(t)

	chart := getChart(t, s)
	assert.Len(t, chart.PerformanceData, 6)
	assert.Len(t, chart.SubjectData, 4)
	assert.Len(t, chart.ClassDistributionData, 4)
	assert.Equal(t, 32, chart.SubjectData[0].Students)
}

func TestDashboardState(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "performance_data")
	assert.Contains(t, body, "subject_data")
	assert.Contains(t, body, "class_distribution")
	assert.NotContains(t, body, "error")
}

func TestSummary(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "Jun", summary.LatestMonth)
	assert.Equal(t, 14, summary.TotalClasses)
}

func TestCreateSubjectUpdatesChart(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodPost, "/api/tables/subjects", map[string]any{
		"name":      "History",
		"students":  "22",
		"avg_score": "74.5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.SubjectRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.DefaultColor, created.Color)

	require.Eventually(t, func() bool {
		return len(getChart(t, s).SubjectData) == 5
	}, 2*time.Second, 20*time.Millisecond)

	chart := getChart(t, s)
	assert.Equal(t, 74.5, chart.SubjectData[4].AvgScore)
}

func TestCreateValidation(t *testing.T) {
	s, _ := setupServer(t)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"missing month", "/api/tables/performance", map[string]any{"score": 80}, http.StatusBadRequest},
		{"bad json number", "/api/tables/distribution", map[string]any{"name": "Art", "value": "lots"}, http.StatusBadRequest},
		{"unknown table", "/api/tables/grades", map[string]any{"name": "x"}, http.StatusNotFound},
		{"infinite score", "/api/tables/performance", map[string]any{"month": "Jul", "score": "Inf", "attendance": 90, "participation": 80}, http.StatusBadRequest},
		{"nan score", "/api/tables/performance", map[string]any{"month": "Jul", "score": "NaN", "attendance": 90, "participation": 80}, http.StatusBadRequest},
		{"infinite students", "/api/tables/subjects", map[string]any{"name": "Art", "students": "-Inf", "avg_score": 70}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestNonFiniteRejectedChartStillServes(t *testing.T) {
	s, db := setupServer(t)

	rec := do(t, s, http.MethodPost, "/api/tables/performance", map[string]any{
		"month": "Jul", "score": "Inf", "attendance": 96, "participation": 91,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	n, err := db.Count(context.Background(), models.TablePerformance)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	chart := getChart(t, s)
	assert.Len(t, chart.PerformanceData, 6)

	rec = do(t, s, http.MethodGet, "/api/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestUpdateRecordRefreshesChart(t *testing.T) {
	s, db := setupServer(t)
	ctx := context.Background()

	rows, err := db.ListDistribution(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	first := rows[0]

	rec := do(t, s, http.MethodPut, "/api/tables/dist/"+itoa(first.ID), map[string]any{
		"name": "Sciences", "value": 9, "color": "#ec4899",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.DistributionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, first.ID, updated.ID)

	require.Eventually(t, func() bool {
		slices := getChart(t, s).ClassDistributionData
		return len(slices) == 4 && slices[0].Name == "Sciences" && slices[0].Value == 9
	}, 2*time.Second, 20*time.Millisecond)

	rec = do(t, s, http.MethodPut, "/api/tables/perf/999", map[string]any{
		"month": "Jan", "score": 1, "attendance": 2, "participation": 3,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/tables/subjects/"+itoa(first.ID), map[string]any{
		"name": " ", "students": 3, "avg_score": 70,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/tables/subjects/abc", map[string]any{"name": "Art"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAndClear(t *testing.T) {
	s, db := setupServer(t)
	ctx := context.Background()

	rows, err := db.ListDistribution(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	rec := do(t, s, http.MethodDelete, "/api/tables/distribution/"+itoa(rows[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/tables/distribution/"+itoa(rows[0].ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/tables/distribution/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/tables/performance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"removed":6`)

	n, err := db.Count(ctx, models.TablePerformance)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedEndpoint(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodPost, "/api/dashboard/seed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data already exists, skipping seed")
}

func TestListTable(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/tables/perf", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.PerformanceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 6)
	assert.Equal(t, "Jan", rows[0].Month)
}

func TestWebSocketPushesSnapshots(t *testing.T) {
	s, _ := setupServer(t)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/dashboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var msg Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	assert.Len(t, msg.Data.PerformanceData, 6)

	rec := do(t, s, http.MethodPost, "/api/tables/performance", map[string]any{
		"month": "Jul", "score": 94, "attendance": 96, "participation": 91,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		require.NoError(t, conn.ReadJSON(&msg))
		if len(msg.Data.PerformanceData) == 7 {
			break
		}
	}
	assert.Equal(t, "Jul", msg.Data.PerformanceData[6].Month)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
