// ABOUTME: Handler tests over a stub store, exercising auth and pharmacy scoping.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
	"github.com/stepforwardrx/stepforward/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	researchers  map[string]models.Researcher
	access       map[string][]string
	pharmacies   []models.Pharmacy
	participants []models.Participant
	samples      map[string][]models.DaySample
	medications  map[string][]models.Medication
	sideEffects  map[string][]models.SideEffect

	createdMedications []models.Medication
	deletedMedications []int64
	createdSideEffects []models.SideEffect
}

func (s *stubStore) GetResearcherByEmail(_ context.Context, email string) (*models.Researcher, error) {
	r, ok := s.researchers[email]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return &r, nil
}

func (s *stubStore) ListResearcherPharmacies(_ context.Context, researcherID string) ([]string, error) {
	return s.access[researcherID], nil
}

func (s *stubStore) ListPharmacies(_ context.Context) ([]models.Pharmacy, error) {
	return s.pharmacies, nil
}

func (s *stubStore) ListParticipants(_ context.Context) ([]models.Participant, error) {
	return s.participants, nil
}

func (s *stubStore) GetParticipant(_ context.Context, id string) (*models.Participant, error) {
	for i := range s.participants {
		if s.participants[i].ID == id {
			return &s.participants[i], nil
		}
	}
	return nil, remote.ErrNotFound
}

func (s *stubStore) ListDaySamples(_ context.Context, participantID string) ([]models.DaySample, error) {
	return s.samples[participantID], nil
}

func (s *stubStore) ListMedications(_ context.Context, participantID string) ([]models.Medication, error) {
	return s.medications[participantID], nil
}

func (s *stubStore) CreateMedication(_ context.Context, med models.Medication) error {
	s.createdMedications = append(s.createdMedications, med)
	return nil
}

func (s *stubStore) DeleteMedication(_ context.Context, id int64) error {
	s.deletedMedications = append(s.deletedMedications, id)
	return nil
}

func (s *stubStore) ListSideEffects(_ context.Context, participantID string) ([]models.SideEffect, error) {
	return s.sideEffects[participantID], nil
}

func (s *stubStore) CreateSideEffect(_ context.Context, report models.SideEffect) error {
	s.createdSideEffects = append(s.createdSideEffects, report)
	return nil
}

func pharmacyRef(id string) *string { return &id }

func newStubStore() *stubStore {
	return &stubStore{
		researchers: map[string]models.Researcher{
			"jo@lab.example": {ID: "r-1", Email: "jo@lab.example", Name: "Jo"},
		},
		access: map[string][]string{"r-1": {"PH01"}},
		pharmacies: []models.Pharmacy{
			{ID: "PH01", Name: "Central"},
			{ID: "PH02", Name: "Northside"},
		},
		participants: []models.Participant{
			{ID: "P001", PharmacyID: pharmacyRef("PH01")},
			{ID: "P002", PharmacyID: pharmacyRef("PH02")},
			{ID: "P003"},
		},
		samples:     make(map[string][]models.DaySample),
		medications: make(map[string][]models.Medication),
		sideEffects: make(map[string][]models.SideEffect),
	}
}

func newTestHandler(t *testing.T, store Store) http.Handler {
	t.Helper()
	handler, err := NewHTTPHandler(Dependencies{
		Store:  store,
		Tokens: NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("test-secret")}),
		Clock:  func() time.Time { return time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return handler
}

func loginToken(t *testing.T, handler http.Handler, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponsePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func doJSON(handler http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginUnknownEmail(t *testing.T) {
	handler := newTestHandler(t, newStubStore())
	rec := doJSON(handler, http.MethodPost, "/auth/login", "", map[string]string{"email": "stranger@lab.example"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	handler := newTestHandler(t, newStubStore())

	rec := doJSON(handler, http.MethodGet, "/api/participants", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(handler, http.MethodGet, "/api/participants", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListParticipantsScopedToPharmacyAccess(t *testing.T) {
	store := newStubStore()
	handler := newTestHandler(t, store)
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodGet, "/api/participants", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Participants []models.Participant `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Participants, 1)
	assert.Equal(t, "P001", resp.Participants[0].ID)
}

func TestListPharmaciesScoped(t *testing.T) {
	handler := newTestHandler(t, newStubStore())
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodGet, "/api/pharmacies", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Pharmacies []models.Pharmacy `json:"pharmacies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Pharmacies, 1)
	assert.Equal(t, "PH01", resp.Pharmacies[0].ID)
}

func TestParticipantDetailForbiddenOutsideScope(t *testing.T) {
	handler := newTestHandler(t, newStubStore())
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodGet, "/api/participants/P002", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(handler, http.MethodGet, "/api/participants/P999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParticipantDetailFansOut(t *testing.T) {
	store := newStubStore()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sample := models.NewDaySample("P001", date)
	speed := 1.25
	sample.SetValue(models.MetricWalkingSpeed, &speed)
	store.samples["P001"] = []models.DaySample{sample}
	store.medications["P001"] = []models.Medication{{
		ID: 7, ParticipantID: "P001", MedicationName: "Alendronate",
		Dose: "70mg", Frequency: models.FrequencyWeekly, StartDate: "2024-01-01",
	}}
	store.sideEffects["P001"] = []models.SideEffect{
		models.NewSideEffect("P001", "dizzy mornings", date),
	}

	handler := newTestHandler(t, store)
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodGet, "/api/participants/P001", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail participantDetailPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "P001", detail.Participant.ID)
	assert.Len(t, detail.Samples, 1)
	assert.Len(t, detail.Medications, 1)
	assert.Len(t, detail.SideEffects, 1)
}

func TestParticipantAnalysis(t *testing.T) {
	store := newStubStore()
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.DaySample, 0, 20)
	for i := 0; i < 20; i++ {
		s := models.NewDaySample("P001", start.AddDate(0, 0, i))
		speed := 1.2
		s.SetValue(models.MetricWalkingSpeed, &speed)
		samples = append(samples, s)
	}
	store.samples["P001"] = samples
	store.medications["P001"] = []models.Medication{{
		ID: 7, ParticipantID: "P001", MedicationName: "Alendronate",
		Dose: "70mg", Frequency: models.FrequencyWeekly,
		StartDate: "2024-02-01", EndDate: strRef("2024-02-15"),
	}}

	handler := newTestHandler(t, store)
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodGet, "/api/participants/P001/analysis", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analysisResponsePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Metrics, len(models.AllMetrics))

	byMetric := make(map[models.Metric]metricAnalysisPayload)
	for _, m := range resp.Metrics {
		byMetric[m.Metric] = m
	}
	speed := byMetric[models.MetricWalkingSpeed]
	assert.Equal(t, "normal", string(speed.Assessment.Status))
	assert.Len(t, speed.Series, 20)
	assert.Len(t, speed.MovingAverage, 20)

	// Metrics with no readings report insufficient data, not a warning.
	assert.Equal(t, "insufficient", string(byMetric[models.MetricWalkingSteadiness].Assessment.Status))

	require.Len(t, resp.DoseSchedules, 1)
	assert.Equal(t, []string{"2024-02-01", "2024-02-08", "2024-02-15"}, resp.DoseSchedules[0].Dates)
}

func strRef(s string) *string { return &s }

func TestCreateMedicationValidation(t *testing.T) {
	store := newStubStore()
	handler := newTestHandler(t, store)
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodPost, "/api/participants/P001/medications", token, map[string]string{
		"medication_name": "Alendronate", "dose": "70mg",
		"frequency": "fortnightly", "start_date": "2024-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(handler, http.MethodPost, "/api/participants/P001/medications", token, map[string]string{
		"medication_name": "Alendronate", "dose": "70mg",
		"frequency": "weekly", "start_date": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.createdMedications, 1)
	assert.Equal(t, "P001", store.createdMedications[0].ParticipantID)
	assert.Equal(t, models.FrequencyWeekly, store.createdMedications[0].Frequency)
}

func TestDeleteMedicationOwnership(t *testing.T) {
	store := newStubStore()
	store.medications["P001"] = []models.Medication{{ID: 7, ParticipantID: "P001"}}
	handler := newTestHandler(t, store)
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodDelete, "/api/participants/P001/medications/99", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, store.deletedMedications)

	rec = doJSON(handler, http.MethodDelete, "/api/participants/P001/medications/7", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{7}, store.deletedMedications)
}

func TestCreateSideEffectStampsServerTime(t *testing.T) {
	store := newStubStore()
	handler := newTestHandler(t, store)
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodPost, "/api/participants/P001/side-effects", token, map[string]string{
		"message": "  knee stiffness  ",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.createdSideEffects, 1)

	report := store.createdSideEffects[0]
	assert.Equal(t, "P001", report.ParticipantID)
	assert.Equal(t, "knee stiffness", report.Message)
	assert.Equal(t, "2024-03-08T12:00:00.000Z", report.ReportedAt)
}

func TestLoginRejectsEmptyEmail(t *testing.T) {
	handler := newTestHandler(t, newStubStore())
	rec := doJSON(handler, http.MethodPost, "/auth/login", "", map[string]string{"email": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScopedParticipantNormalizesID(t *testing.T) {
	store := newStubStore()
	handler := newTestHandler(t, store)
	token := loginToken(t, handler, "jo@lab.example")

	rec := doJSON(handler, http.MethodGet, fmt.Sprintf("/api/participants/%s", "p001"), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
