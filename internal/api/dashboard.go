package api

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fairsight-ai/fairsight/internal/domain"
)

// DashboardData combines the two independent dashboard fetches.
type DashboardData struct {
	Summary   *domain.DashboardSummary
	ModelRisk []domain.ModelRiskEntry
}

// FetchDashboard dispatches the summary and model-risk fetches
// concurrently and waits for both. If either fails, the aggregate fails
// as a whole; there is no partial-success merging. Falling back to
// placeholder data on failure is the caller's policy, not this layer's.
func (c *Client) FetchDashboard(ctx context.Context) (*DashboardData, error) {
	var data DashboardData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := c.GetSummary(ctx)
		if err != nil {
			return err
		}
		data.Summary = summary
		return nil
	})
	g.Go(func() error {
		risk, err := c.GetModelRisk(ctx)
		if err != nil {
			return err
		}
		data.ModelRisk = risk
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}
