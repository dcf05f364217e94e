// ABOUTME: Dashboard API handlers: login, participant browsing, analysis,
// ABOUTME: medication management, and side-effect reporting.
package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stepforwardrx/stepforward/internal/analytics"
	"github.com/stepforwardrx/stepforward/internal/models"
	"github.com/stepforwardrx/stepforward/internal/remote"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type loginRequestPayload struct {
	Email string `json:"email"`
}

type loginResponsePayload struct {
	AccessToken string            `json:"access_token"`
	ExpiresIn   int64             `json:"expires_in"`
	TokenType   string            `json:"token_type"`
	Researcher  models.Researcher `json:"researcher"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(request.Email))
	researcher, err := h.store.GetResearcherByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		h.logger.Error("researcher lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	token, expiresIn, err := h.tokens.IssueToken(researcher.ID)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
		Researcher:  *researcher,
	})
}

func (h *httpHandler) handleListPharmacies(c *gin.Context) {
	researcherID := c.GetString(researcherIDContextKey)
	scope, err := h.accessiblePharmacies(c.Request.Context(), researcherID)
	if err != nil {
		h.logger.Error("pharmacy scope lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scope_failed"})
		return
	}

	all, err := h.store.ListPharmacies(c.Request.Context())
	if err != nil {
		h.logger.Error("pharmacy list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	accessible := make([]models.Pharmacy, 0, len(all))
	for _, pharmacy := range all {
		if scope[pharmacy.ID] {
			accessible = append(accessible, pharmacy)
		}
	}
	c.JSON(http.StatusOK, gin.H{"pharmacies": accessible})
}

func (h *httpHandler) handleListParticipants(c *gin.Context) {
	researcherID := c.GetString(researcherIDContextKey)
	scope, err := h.accessiblePharmacies(c.Request.Context(), researcherID)
	if err != nil {
		h.logger.Error("pharmacy scope lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scope_failed"})
		return
	}

	all, err := h.store.ListParticipants(c.Request.Context())
	if err != nil {
		h.logger.Error("participant list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	visible := make([]models.Participant, 0, len(all))
	for i := range all {
		if inScope(scope, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	c.JSON(http.StatusOK, gin.H{"participants": visible})
}

// scopedParticipant resolves the :id path param to a participant the
// requesting researcher may view, writing the error response itself when
// it returns nil.
func (h *httpHandler) scopedParticipant(c *gin.Context) *models.Participant {
	researcherID := c.GetString(researcherIDContextKey)
	participantID := models.NormalizeParticipantID(c.Param("id"))

	scope, err := h.accessiblePharmacies(c.Request.Context(), researcherID)
	if err != nil {
		h.logger.Error("pharmacy scope lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scope_failed"})
		return nil
	}

	participant, err := h.store.GetParticipant(c.Request.Context(), participantID)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "participant_not_found"})
			return nil
		}
		h.logger.Error("participant lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return nil
	}

	if !inScope(scope, participant) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil
	}
	return participant
}

type participantDetailPayload struct {
	Participant models.Participant  `json:"participant"`
	Samples     []models.DaySample  `json:"samples"`
	Medications []models.Medication `json:"medications"`
	SideEffects []models.SideEffect `json:"side_effects"`
}

func (h *httpHandler) handleParticipantDetail(c *gin.Context) {
	participant := h.scopedParticipant(c)
	if participant == nil {
		return
	}

	detail := participantDetailPayload{Participant: *participant}

	group, ctx := errgroup.WithContext(c.Request.Context())
	group.Go(func() error {
		var err error
		detail.Samples, err = h.store.ListDaySamples(ctx, participant.ID)
		return err
	})
	group.Go(func() error {
		var err error
		detail.Medications, err = h.store.ListMedications(ctx, participant.ID)
		return err
	})
	group.Go(func() error {
		var err error
		detail.SideEffects, err = h.store.ListSideEffects(ctx, participant.ID)
		return err
	})
	if err := group.Wait(); err != nil {
		h.logger.Error("participant detail fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

type metricAnalysisPayload struct {
	Metric        models.Metric        `json:"metric"`
	Label         string               `json:"label"`
	Unit          string               `json:"unit"`
	Assessment    analytics.Assessment `json:"assessment"`
	Series        []analytics.Point    `json:"series"`
	MovingAverage []float64            `json:"moving_average"`
}

type doseSchedulePayload struct {
	MedicationName string   `json:"medication_name"`
	Dates          []string `json:"dates"`
}

type analysisResponsePayload struct {
	ParticipantID string                  `json:"participant_id"`
	Metrics       []metricAnalysisPayload `json:"metrics"`
	DoseSchedules []doseSchedulePayload   `json:"dose_schedules"`
}

func (h *httpHandler) handleParticipantAnalysis(c *gin.Context) {
	participant := h.scopedParticipant(c)
	if participant == nil {
		return
	}

	var (
		samples     []models.DaySample
		medications []models.Medication
	)
	group, ctx := errgroup.WithContext(c.Request.Context())
	group.Go(func() error {
		var err error
		samples, err = h.store.ListDaySamples(ctx, participant.ID)
		return err
	})
	group.Go(func() error {
		var err error
		medications, err = h.store.ListMedications(ctx, participant.ID)
		return err
	})
	if err := group.Wait(); err != nil {
		h.logger.Error("analysis fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return
	}

	response := analysisResponsePayload{
		ParticipantID: participant.ID,
		Metrics:       make([]metricAnalysisPayload, 0, len(models.AllMetrics)),
		DoseSchedules: make([]doseSchedulePayload, 0, len(medications)),
	}

	for _, metric := range models.AllMetrics {
		points := analytics.ExtractPoints(samples, metric)
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
		}
		response.Metrics = append(response.Metrics, metricAnalysisPayload{
			Metric:        metric,
			Label:         models.MetricLabels[metric],
			Unit:          models.MetricUnits[metric],
			Assessment:    analytics.Analyze(points, models.MetricDirections[metric]),
			Series:        points,
			MovingAverage: analytics.MovingAverage(values, analytics.BaselineWindow),
		})
	}

	now := h.clock()
	for _, med := range medications {
		doses, err := analytics.ExpandDoseDates(med, now)
		if err != nil {
			h.logger.Warn("skipping medication with bad dates",
				zap.Int64("medication_id", med.ID), zap.Error(err))
			continue
		}
		dates := make([]string, len(doses))
		for i, d := range doses {
			dates[i] = d.Format(models.DateFormat)
		}
		response.DoseSchedules = append(response.DoseSchedules, doseSchedulePayload{
			MedicationName: med.MedicationName,
			Dates:          dates,
		})
	}

	c.JSON(http.StatusOK, response)
}

type medicationRequestPayload struct {
	MedicationName string  `json:"medication_name"`
	Dose           string  `json:"dose"`
	Frequency      string  `json:"frequency"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date"`
}

func (h *httpHandler) handleCreateMedication(c *gin.Context) {
	participant := h.scopedParticipant(c)
	if participant == nil {
		return
	}

	var request medicationRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if strings.TrimSpace(request.MedicationName) == "" || strings.TrimSpace(request.StartDate) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if !models.IsValidFrequency(request.Frequency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_frequency"})
		return
	}

	med := models.Medication{
		ParticipantID:  participant.ID,
		MedicationName: strings.TrimSpace(request.MedicationName),
		Dose:           strings.TrimSpace(request.Dose),
		Frequency:      models.Frequency(request.Frequency),
		StartDate:      request.StartDate,
		EndDate:        request.EndDate,
	}
	if err := h.store.CreateMedication(c.Request.Context(), med); err != nil {
		h.logger.Error("medication create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

func (h *httpHandler) handleDeleteMedication(c *gin.Context) {
	participant := h.scopedParticipant(c)
	if participant == nil {
		return
	}

	medicationID, err := strconv.ParseInt(c.Param("medID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_medication_id"})
		return
	}

	// The id must belong to the scoped participant; deleting by raw id
	// would let a researcher reach across pharmacies.
	medications, err := h.store.ListMedications(c.Request.Context(), participant.ID)
	if err != nil {
		h.logger.Error("medication list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	owned := false
	for _, med := range medications {
		if med.ID == medicationID {
			owned = true
			break
		}
	}
	if !owned {
		c.JSON(http.StatusNotFound, gin.H{"error": "medication_not_found"})
		return
	}

	if err := h.store.DeleteMedication(c.Request.Context(), medicationID); err != nil {
		h.logger.Error("medication delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type sideEffectRequestPayload struct {
	Message string `json:"message"`
}

func (h *httpHandler) handleCreateSideEffect(c *gin.Context) {
	participant := h.scopedParticipant(c)
	if participant == nil {
		return
	}

	var request sideEffectRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	report := models.NewSideEffect(participant.ID, strings.TrimSpace(request.Message), h.clock())
	if err := h.store.CreateSideEffect(c.Request.Context(), report); err != nil {
		h.logger.Error("side effect create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}
