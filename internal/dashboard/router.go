// ABOUTME: Gin router for the researcher dashboard API.
// ABOUTME: Session auth plus per-researcher pharmacy scoping on every data route.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stepforwardrx/stepforward/internal/models"
	"go.uber.org/zap"
)

const researcherIDContextKey = "stepforward_researcher_id"

var (
	errMissingStore         = errors.New("store dependency required")
	errMissingTokens        = errors.New("token issuer dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// Store is the slice of the remote client the dashboard reads and writes.
type Store interface {
	GetResearcherByEmail(ctx context.Context, email string) (*models.Researcher, error)
	ListResearcherPharmacies(ctx context.Context, researcherID string) ([]string, error)
	ListPharmacies(ctx context.Context) ([]models.Pharmacy, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id string) (*models.Participant, error)
	ListDaySamples(ctx context.Context, participantID string) ([]models.DaySample, error)
	ListMedications(ctx context.Context, participantID string) ([]models.Medication, error)
	CreateMedication(ctx context.Context, med models.Medication) error
	DeleteMedication(ctx context.Context, id int64) error
	ListSideEffects(ctx context.Context, participantID string) ([]models.SideEffect, error)
	CreateSideEffect(ctx context.Context, report models.SideEffect) error
}

// SessionTokens issues and validates researcher session tokens.
type SessionTokens interface {
	IssueToken(researcherID string) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// Dependencies wires the dashboard handler together.
type Dependencies struct {
	Store  Store
	Tokens SessionTokens
	Logger *zap.Logger
	Clock  func() time.Time
}

// NewHTTPHandler builds the dashboard API handler.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errMissingStore
	}
	if deps.Tokens == nil {
		return nil, errMissingTokens
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		store:  deps.Store,
		tokens: deps.Tokens,
		logger: logger,
		clock:  clock,
	}

	router.POST("/auth/login", handler.handleLogin)

	api := router.Group("/api")
	api.Use(handler.authorizeRequest)
	api.GET("/pharmacies", handler.handleListPharmacies)
	api.GET("/participants", handler.handleListParticipants)
	api.GET("/participants/:id", handler.handleParticipantDetail)
	api.GET("/participants/:id/analysis", handler.handleParticipantAnalysis)
	api.POST("/participants/:id/medications", handler.handleCreateMedication)
	api.DELETE("/participants/:id/medications/:medID", handler.handleDeleteMedication)
	api.POST("/participants/:id/side-effects", handler.handleCreateSideEffect)

	return router, nil
}

type httpHandler struct {
	store  Store
	tokens SessionTokens
	logger *zap.Logger
	clock  func() time.Time
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	researcherID, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(researcherIDContextKey, researcherID)
	c.Next()
}

// accessiblePharmacies returns the researcher's pharmacy scope as a set.
func (h *httpHandler) accessiblePharmacies(ctx context.Context, researcherID string) (map[string]bool, error) {
	ids, err := h.store.ListResearcherPharmacies(ctx, researcherID)
	if err != nil {
		return nil, err
	}
	scope := make(map[string]bool, len(ids))
	for _, id := range ids {
		scope[id] = true
	}
	return scope, nil
}

func inScope(scope map[string]bool, p *models.Participant) bool {
	return p.PharmacyID != nil && scope[*p.PharmacyID]
}
