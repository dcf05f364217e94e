// ABOUTME: Pharmacy and researcher access queries for dashboard scoping.
// ABOUTME: Authorization is enforced at this query layer, not by the store.
package remote

import (
	"context"
	"fmt"

	"github.com/stepforwardrx/stepforward/internal/models"
)

// ListPharmacies returns every pharmacy row. Read-only resource.
func (c *Client) ListPharmacies(ctx context.Context) ([]models.Pharmacy, error) {
	var rows []models.Pharmacy
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("order", "name").
		SetResult(&rows).
		Get("/pharmacies")
	if err != nil {
		return nil, fmt.Errorf("list pharmacies: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetResearcherByEmail looks up a researcher identity, ErrNotFound when the
// email is unknown.
func (c *Client) GetResearcherByEmail(ctx context.Context, email string) (*models.Researcher, error) {
	var rows []models.Researcher
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("email", eq(email)).
		SetResult(&rows).
		Get("/researchers")
	if err != nil {
		return nil, fmt.Errorf("get researcher: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

type pharmacyAccessRow struct {
	ResearcherID string `json:"researcher_id"`
	PharmacyID   string `json:"pharmacy_id"`
}

// ListResearcherPharmacies returns the pharmacy ids a researcher may view,
// via the researcher_pharmacy_access join table.
func (c *Client) ListResearcherPharmacies(ctx context.Context, researcherID string) ([]string, error) {
	var rows []pharmacyAccessRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("researcher_id", eq(researcherID)).
		SetQueryParam("select", "researcher_id,pharmacy_id").
		SetResult(&rows).
		Get("/researcher_pharmacy_access")
	if err != nil {
		return nil, fmt.Errorf("list researcher pharmacies: %w", err)
	}
	if err := statusError(resp, nil); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PharmacyID)
	}
	return ids, nil
}
