// ABOUTME: Gait metrics resource operations, including bulk merge upserts.
// ABOUTME: Insert-or-patch is layered over a plain REST API with no native upsert.
package remote

import (
	"context"
	"fmt"

	"github.com/stepforwardrx/stepforward/internal/models"
	"go.uber.org/zap"
)

// GetDaySample fetches the row for (participant, date), ErrNotFound when
// absent.
func (c *Client) GetDaySample(ctx context.Context, participantID, date string) (*models.DaySample, error) {
	participantID = models.NormalizeParticipantID(participantID)

	var rows []models.DaySample
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("participant_id", eq(participantID)).
		SetQueryParam("date", eq(date)).
		SetResult(&rows).
		Get("/gait_metrics")
	if err != nil {
		return nil, fmt.Errorf("get day sample: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// InsertDaySample inserts a full day payload. All five metric columns are
// always present, missing readings as explicit nulls.
func (c *Client) InsertDaySample(ctx context.Context, sample models.DaySample) error {
	sample.ParticipantID = models.NormalizeParticipantID(sample.ParticipantID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sample).
		Post("/gait_metrics")
	if err != nil {
		return fmt.Errorf("insert day sample: %w", err)
	}
	return statusError(resp, nil)
}

// PatchDaySample updates the existing row for the sample's key, avoiding
// the duplicate-key failure a second insert would hit.
func (c *Client) PatchDaySample(ctx context.Context, sample models.DaySample) error {
	sample.ParticipantID = models.NormalizeParticipantID(sample.ParticipantID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("participant_id", eq(sample.ParticipantID)).
		SetQueryParam("date", eq(sample.Date)).
		SetBody(sample).
		Patch("/gait_metrics")
	if err != nil {
		return fmt.Errorf("patch day sample: %w", err)
	}
	return statusError(resp, nil)
}

// BulkUpsertDaySamples submits a batch with merge-on-duplicate-key conflict
// resolution, so re-running a backfill never duplicates rows.
func (c *Client) BulkUpsertDaySamples(ctx context.Context, samples []models.DaySample) error {
	if len(samples) == 0 {
		return nil
	}
	for i := range samples {
		samples[i].ParticipantID = models.NormalizeParticipantID(samples[i].ParticipantID)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates").
		SetBody(samples).
		Post("/gait_metrics")
	if err != nil {
		return fmt.Errorf("bulk upsert day samples: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return err
	}

	c.log.Debug("batch uploaded", zap.Int("rows", len(samples)))
	return nil
}

// ListDaySamples returns a participant's full series ordered by date.
func (c *Client) ListDaySamples(ctx context.Context, participantID string) ([]models.DaySample, error) {
	var rows []models.DaySample
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("participant_id", eq(models.NormalizeParticipantID(participantID))).
		SetQueryParam("order", "date").
		SetResult(&rows).
		Get("/gait_metrics")
	if err != nil {
		return nil, fmt.Errorf("list day samples: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}
	return rows, nil
}
