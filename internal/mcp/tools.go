// ABOUTME: MCP tool implementations for the gait collector.
// ABOUTME: Cache inspection, sync control, metric analysis, side-effect reports.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stepforwardrx/stepforward/internal/analytics"
	"github.com/stepforwardrx/stepforward/internal/engine"
	"github.com/stepforwardrx/stepforward/internal/models"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cache_window",
		Description: "Inspect the cached gait samples for the tracked day window",
	}, s.handleCacheWindow)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_status",
		Description: "Show enrollment state and the last successful upload time",
	}, s.handleSyncStatus)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_now",
		Description: "Run a collect-and-upload pass, optionally bypassing the rate guard",
	}, s.handleSyncNow)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "analyze_metric",
		Description: "Run baseline anomaly analysis for one gait metric",
	}, s.handleAnalyzeMetric)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "report_side_effect",
		Description: "File a free-text side-effect report for the enrolled participant",
	}, s.handleReportSideEffect)
}

// Tool input/output types

type emptyInput struct{}

type cachedDayOutput struct {
	Date       string               `json:"date"`
	CapturedAt string               `json:"captured_at,omitempty"`
	Stale      bool                 `json:"stale"`
	Values     map[string]*float64 `json:"values,omitempty"`
}

type cacheWindowOutput struct {
	Days []cachedDayOutput `json:"days"`
}

type syncStatusOutput struct {
	ParticipantID        string `json:"participant_id"`
	PharmacyID           string `json:"pharmacy_id,omitempty"`
	SetupComplete        bool   `json:"setup_complete"`
	DeviceID             string `json:"device_id"`
	LastSuccessfulUpload string `json:"last_successful_upload,omitempty"`
}

type syncNowInput struct {
	Force bool `json:"force,omitempty" jsonschema:"Bypass the one-hour rate guard"`
}

type syncNowOutput struct {
	Summary engine.Summary `json:"summary"`
	Message string         `json:"message"`
}

type analyzeMetricInput struct {
	Metric string `json:"metric" jsonschema:"Metric column name (double_support_time, walking_asymmetry, walking_speed, walking_step_length, walking_steadiness)"`
}

type analyzeMetricOutput struct {
	Metric     string               `json:"metric"`
	Label      string               `json:"label"`
	Unit       string               `json:"unit"`
	Assessment analytics.Assessment `json:"assessment"`
}

type reportSideEffectInput struct {
	Message string `json:"message" jsonschema:"Free-text description of the side effect"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleCacheWindow(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, cacheWindowOutput, error) {
	now := time.Now()
	out := cacheWindowOutput{Days: make([]cachedDayOutput, 0, len(s.cache.WindowDates()))}

	for _, date := range s.cache.WindowDates() {
		day := cachedDayOutput{Date: date.Format(models.DateFormat)}
		entry, err := s.cache.ReadDay(date)
		if err != nil {
			return nil, cacheWindowOutput{}, err
		}
		if entry != nil {
			day.CapturedAt = entry.CapturedAt.Format(time.RFC3339)
			day.Stale = entry.IsStale(now)
			day.Values = make(map[string]*float64, len(models.AllMetrics))
			for _, m := range models.AllMetrics {
				day.Values[string(m)] = entry.Sample.Value(m)
			}
		}
		out.Days = append(out.Days, day)
	}
	return nil, out, nil
}

func (s *Server) handleSyncStatus(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, syncStatusOutput, error) {
	participantID, err := s.cache.ParticipantID()
	if err != nil {
		return nil, syncStatusOutput{}, err
	}
	pharmacyID, err := s.cache.PharmacyID()
	if err != nil {
		return nil, syncStatusOutput{}, err
	}
	setupDone, err := s.cache.SetupComplete()
	if err != nil {
		return nil, syncStatusOutput{}, err
	}
	deviceID, err := s.cache.DeviceID()
	if err != nil {
		return nil, syncStatusOutput{}, err
	}

	out := syncStatusOutput{
		ParticipantID: participantID,
		PharmacyID:    pharmacyID,
		SetupComplete: setupDone,
		DeviceID:      deviceID,
	}

	last, err := s.cache.LastSuccessfulUpload()
	if err != nil {
		return nil, syncStatusOutput{}, err
	}
	if !last.IsZero() {
		out.LastSuccessfulUpload = last.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleSyncNow(ctx context.Context, _ *mcp.CallToolRequest, input syncNowInput) (*mcp.CallToolResult, syncNowOutput, error) {
	summary, err := s.engine.SyncPass(ctx, input.Force)
	if errors.Is(err, engine.ErrRecentlySynced) {
		return nil, syncNowOutput{Message: "skipped: synced within the last hour, pass force=true to override"}, nil
	}
	if err != nil {
		return nil, syncNowOutput{}, err
	}

	return nil, syncNowOutput{
		Summary: summary,
		Message: fmt.Sprintf("uploaded %d day(s), %d without data, %d stale, %d failed",
			summary.Uploaded, summary.SkippedNoData, summary.SkippedStale, summary.Failed),
	}, nil
}

func (s *Server) handleAnalyzeMetric(ctx context.Context, _ *mcp.CallToolRequest, input analyzeMetricInput) (*mcp.CallToolResult, analyzeMetricOutput, error) {
	if !models.IsValidMetric(input.Metric) {
		return nil, analyzeMetricOutput{}, fmt.Errorf("unknown metric: %s", input.Metric)
	}
	metric := models.Metric(input.Metric)

	participantID, err := s.cache.ParticipantID()
	if err != nil {
		return nil, analyzeMetricOutput{}, err
	}
	if participantID == "" {
		return nil, analyzeMetricOutput{}, engine.ErrNotEnrolled
	}

	samples, err := s.remote.ListDaySamples(ctx, participantID)
	if err != nil {
		return nil, analyzeMetricOutput{}, err
	}

	points := analytics.ExtractPoints(samples, metric)
	return nil, analyzeMetricOutput{
		Metric:     input.Metric,
		Label:      models.MetricLabels[metric],
		Unit:       models.MetricUnits[metric],
		Assessment: analytics.Analyze(points, models.MetricDirections[metric]),
	}, nil
}

func (s *Server) handleReportSideEffect(ctx context.Context, _ *mcp.CallToolRequest, input reportSideEffectInput) (*mcp.CallToolResult, simpleOutput, error) {
	if input.Message == "" {
		return nil, simpleOutput{}, fmt.Errorf("message is required")
	}

	participantID, err := s.cache.ParticipantID()
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if participantID == "" {
		return nil, simpleOutput{}, engine.ErrNotEnrolled
	}

	report := models.NewSideEffect(participantID, input.Message, time.Now())
	if err := s.remote.CreateSideEffect(ctx, report); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: "side effect reported"}, nil
}
