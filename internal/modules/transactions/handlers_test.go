package transactions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/internal/events"
	"github.com/finpulse/finpulse/internal/modules/behavior"
)

// MockRecorder for testing
type MockRecorder struct {
	recorded   []domain.Transaction
	shouldFail bool
}

func (m *MockRecorder) RecordTransaction(tx domain.Transaction, now time.Time) (*behavior.Profile, error) {
	if m.shouldFail {
		return nil, fmt.Errorf("mock profile error")
	}
	m.recorded = append(m.recorded, tx)
	profile := behavior.NewProfile(tx.UserID)
	if !tx.IsCredit() {
		profile.TransactionCount = int64(len(m.recorded))
	}
	return profile, nil
}

func testRouter(handler *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/", handler.HandleIngest)
	r.Get("/user/{userID}", handler.HandleGetByUser)
	return r
}

func newTestHandler(t *testing.T, recorder *MockRecorder) (*Handler, *Repository) {
	t.Helper()
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	handler := NewHandler(repo, recorder, events.NewManager(zerolog.Nop()), zerolog.Nop())
	return handler, repo
}

func postJSON(t *testing.T, router http.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleIngest_Success(t *testing.T) {
	recorder := &MockRecorder{}
	handler, repo := newTestHandler(t, recorder)
	router := testRouter(handler)

	w := postJSON(t, router, IngestRequest{
		UserID:             1,
		Amount:             55.20,
		Category:           "GROCERIES",
		CategoryConfidence: 0.9,
		Type:               "debit",
		Merchant:           "Corner Market",
		Timestamp:          "2025-03-01T10:00:00Z",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response IngestResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Greater(t, response.Transaction.ID, int64(0))
	assert.True(t, response.ProfileUpdated)
	require.Len(t, recorder.recorded, 1)
	assert.Equal(t, "GROCERIES", recorder.recorded[0].Category)

	count, err := repo.CountByUser(1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHandleIngest_InvalidJSON(t *testing.T) {
	handler, _ := newTestHandler(t, &MockRecorder{})
	router := testRouter(handler)

	req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON")
}

func TestHandleIngest_ValidationErrors(t *testing.T) {
	handler, _ := newTestHandler(t, &MockRecorder{})
	router := testRouter(handler)

	tests := []struct {
		name string
		req  IngestRequest
		msg  string
	}{
		{"missing user", IngestRequest{Amount: 10, Category: "GROCERIES", Type: "debit"}, "user_id"},
		{"negative amount", IngestRequest{UserID: 1, Amount: -5, Category: "GROCERIES", Type: "debit"}, "amount"},
		{"missing category", IngestRequest{UserID: 1, Amount: 10, Type: "debit"}, "category"},
		{"bad type", IngestRequest{UserID: 1, Amount: 10, Category: "GROCERIES", Type: "transfer"}, "type"},
		{"bad confidence", IngestRequest{UserID: 1, Amount: 10, Category: "GROCERIES", Type: "debit", CategoryConfidence: 1.5}, "category_confidence"},
		{"bad timestamp", IngestRequest{UserID: 1, Amount: 10, Category: "GROCERIES", Type: "debit", Timestamp: "yesterday"}, "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.msg)
		})
	}
}

func TestHandleIngest_ZeroAmountAllowed(t *testing.T) {
	handler, _ := newTestHandler(t, &MockRecorder{})
	router := testRouter(handler)

	w := postJSON(t, router, IngestRequest{
		UserID:   1,
		Amount:   0,
		Category: "OTHER",
		Type:     "debit",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleIngest_ProfileFailureDoesNotFailIngestion(t *testing.T) {
	recorder := &MockRecorder{shouldFail: true}
	handler, repo := newTestHandler(t, recorder)
	router := testRouter(handler)

	w := postJSON(t, router, IngestRequest{
		UserID:   1,
		Amount:   25,
		Category: "DINING",
		Type:     "debit",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response IngestResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.False(t, response.ProfileUpdated)

	// The transaction itself is stored regardless.
	count, err := repo.CountByUser(1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHandleGetByUser(t *testing.T) {
	handler, repo := newTestHandler(t, &MockRecorder{})
	router := testRouter(handler)

	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		tx := testTx(1, "GROCERIES", float64(10*(i+1)), domain.TransactionDebit, base.AddDate(0, 0, i))
		require.NoError(t, repo.Create(&tx))
	}
	credit := testTx(1, "SALARY", 2500, domain.TransactionCredit, base)
	require.NoError(t, repo.Create(&credit))

	req := httptest.NewRequest("GET", "/user/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var txs []domain.Transaction
	require.NoError(t, json.NewDecoder(w.Body).Decode(&txs))
	assert.Len(t, txs, 4)

	// Type filter
	req = httptest.NewRequest("GET", "/user/1?type=credit", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "SALARY", txs[0].Category)
}

func TestHandleGetByUser_InvalidParams(t *testing.T) {
	handler, _ := newTestHandler(t, &MockRecorder{})
	router := testRouter(handler)

	tests := []struct {
		name string
		url  string
	}{
		{"bad user id", "/user/abc"},
		{"zero user id", "/user/0"},
		{"bad limit", "/user/1?limit=-2"},
		{"bad type", "/user/1?type=transfer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleGetByUser_EmptyList(t *testing.T) {
	handler, _ := newTestHandler(t, &MockRecorder{})
	router := testRouter(handler)

	req := httptest.NewRequest("GET", "/user/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}
