// ABOUTME: Medication resource operations for dashboard chart annotations.
// ABOUTME: Medication records never mutate metric data.
package remote

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stepforwardrx/stepforward/internal/models"
)

// ListMedications returns a participant's medications ordered by start
// date, most recent first.
func (c *Client) ListMedications(ctx context.Context, participantID string) ([]models.Medication, error) {
	var rows []models.Medication
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("participant_id", eq(models.NormalizeParticipantID(participantID))).
		SetQueryParam("order", "start_date.desc").
		SetResult(&rows).
		Get("/medications")
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateMedication inserts a medication record.
func (c *Client) CreateMedication(ctx context.Context, med models.Medication) error {
	med.ParticipantID = models.NormalizeParticipantID(med.ParticipantID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(med).
		Post("/medications")
	if err != nil {
		return fmt.Errorf("create medication: %w", err)
	}
	return statusError(resp, nil)
}

// DeleteMedication removes a medication record by id.
func (c *Client) DeleteMedication(ctx context.Context, id int64) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", eq(strconv.FormatInt(id, 10))).
		Delete("/medications")
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	return statusError(resp, nil)
}
