// ABOUTME: Tests for the remote store client against an httptest server.
// ABOUTME: Verifies credential headers, filters, normalization, and error mapping.
package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, nil)
}

// writeJSON responds with a JSON body; the client only unmarshals
// responses that declare a JSON content type.
func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestCredentialHeadersOnEveryRequest(t *testing.T) {
	var gotAPIKey, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, "[]")
	})

	_, err := client.ListParticipants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestGetParticipantNormalizesFilter(t *testing.T) {
	var gotFilter string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("id")
		writeJSON(w, `[{"id":"P001"}]`)
	})

	p, err := client.GetParticipant(context.Background(), "  p001 ")
	require.NoError(t, err)
	assert.Equal(t, "eq.P001", gotFilter)
	assert.Equal(t, "P001", p.ID)
}

func TestGetParticipantNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, "[]")
	})

	_, err := client.GetParticipant(context.Background(), "P404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateParticipantConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	err := client.CreateParticipant(context.Background(), models.Participant{ID: "P001"})
	assert.ErrorIs(t, err, ErrParticipantExists)
}

func TestCreateParticipantNormalizesPayload(t *testing.T) {
	var payload models.Participant
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, client.CreateParticipant(context.Background(), models.Participant{ID: "p001"}))
	assert.Equal(t, "P001", payload.ID)
}

func TestInsertDaySampleSendsExplicitNulls(t *testing.T) {
	var raw map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusCreated)
	})

	sample := models.NewDaySample("P001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	speed := 1.2
	sample.SetValue(models.MetricWalkingSpeed, &speed)

	require.NoError(t, client.InsertDaySample(context.Background(), sample))

	// Partial objects must never be sent: every metric key is present.
	for _, m := range models.AllMetrics {
		_, ok := raw[string(m)]
		assert.True(t, ok, "payload missing key %s", m)
	}
	assert.Equal(t, "null", string(raw["walking_asymmetry"]))
	assert.Equal(t, "1.2", string(raw["walking_speed"]))
}

func TestPatchDaySampleFiltersByKey(t *testing.T) {
	var method, pidFilter, dateFilter string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		pidFilter = r.URL.Query().Get("participant_id")
		dateFilter = r.URL.Query().Get("date")
		w.WriteHeader(http.StatusNoContent)
	})

	sample := models.NewDaySample("p001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, client.PatchDaySample(context.Background(), sample))

	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "eq.P001", pidFilter)
	assert.Equal(t, "eq.2024-03-05", dateFilter)
}

func TestBulkUpsertSetsMergePreference(t *testing.T) {
	var prefer string
	var batchSize int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		prefer = r.Header.Get("Prefer")
		var rows []models.DaySample
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		batchSize = len(rows)
		w.WriteHeader(http.StatusCreated)
	})

	samples := []models.DaySample{
		models.NewDaySample("p001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
		models.NewDaySample("p001", time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, client.BulkUpsertDaySamples(context.Background(), samples))

	assert.Equal(t, "resolution=merge-duplicates", prefer)
	assert.Equal(t, 2, batchSize)
}

func TestBulkUpsertEmptyBatchIsNoop(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	require.NoError(t, client.BulkUpsertDaySamples(context.Background(), nil))
	assert.False(t, called)
}

func TestNonTwoHundredBecomesStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	err := client.InsertDaySample(context.Background(), models.NewDaySample("P001", time.Now()))
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestListResearcherPharmacies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.r-1", r.URL.Query().Get("researcher_id"))
		writeJSON(w, `[{"researcher_id":"r-1","pharmacy_id":"ph-1"},{"researcher_id":"r-1","pharmacy_id":"ph-2"}]`)
	})

	ids, err := client.ListResearcherPharmacies(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ph-1", "ph-2"}, ids)
}
