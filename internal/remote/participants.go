// ABOUTME: Participant resource operations against the remote store.
// ABOUTME: Creation is check-then-insert with conflict tolerated by callers.
package remote

import (
	"context"
	"fmt"

	"github.com/stepforwardrx/stepforward/internal/models"
	"go.uber.org/zap"
)

// GetParticipant fetches a participant row by id, ErrNotFound when absent.
func (c *Client) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	id = models.NormalizeParticipantID(id)

	var rows []models.Participant
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", eq(id)).
		SetQueryParam("select", "id,pharmacy_id").
		SetResult(&rows).
		Get("/participants")
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// CreateParticipant inserts a participant row. A uniqueness conflict maps
// to ErrParticipantExists so callers can decide whether it matters.
func (c *Client) CreateParticipant(ctx context.Context, p models.Participant) error {
	p.ID = models.NormalizeParticipantID(p.ID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(p).
		Post("/participants")
	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	if err := statusError(resp, ErrParticipantExists); err != nil {
		return err
	}

	c.log.Info("participant created", zap.String("participant_id", p.ID))
	return nil
}

// ListParticipants returns every participant row, ordered by id.
func (c *Client) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	var rows []models.Participant
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("order", "id").
		SetResult(&rows).
		Get("/participants")
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteParticipant removes a participant row by id.
func (c *Client) DeleteParticipant(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", eq(models.NormalizeParticipantID(id))).
		Delete("/participants")
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return statusError(resp, nil)
}
