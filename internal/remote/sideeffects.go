// ABOUTME: Side-effect report operations. Append-only from this client.
// ABOUTME: Reports are free-text notes with a fractional-seconds timestamp.
package remote

import (
	"context"
	"fmt"

	"github.com/stepforwardrx/stepforward/internal/models"
)

// ListSideEffects returns a participant's reports, newest first.
func (c *Client) ListSideEffects(ctx context.Context, participantID string) ([]models.SideEffect, error) {
	var rows []models.SideEffect
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("participant_id", eq(models.NormalizeParticipantID(participantID))).
		SetQueryParam("order", "reported_at.desc").
		SetResult(&rows).
		Get("/side_effects")
	if err != nil {
		return nil, fmt.Errorf("list side effects: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateSideEffect appends a report.
func (c *Client) CreateSideEffect(ctx context.Context, report models.SideEffect) error {
	report.ParticipantID = models.NormalizeParticipantID(report.ParticipantID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(report).
		Post("/side_effects")
	if err != nil {
		return fmt.Errorf("create side effect: %w", err)
	}
	return statusError(resp, nil)
}
