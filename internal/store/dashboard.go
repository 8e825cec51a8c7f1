package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

type DashboardAPI interface {
	Summary(ctx context.Context) (model.DashboardSummary, error)
}

type DashboardState struct {
	Data      *model.DashboardSummary `json:"data"`
	IsLoading bool                    `json:"isLoading"`
	Error     string                  `json:"error,omitempty"`
}

type DashboardSlice struct {
	base
	svc  DashboardAPI
	now  func() time.Time
	data *model.DashboardSummary
}

func (s *DashboardSlice) State() DashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var data *model.DashboardSummary
	if s.data != nil {
		cp := *s.data
		cp.ChartData = clone(s.data.ChartData)
		data = &cp
	}
	return DashboardState{Data: data, IsLoading: s.loading(), Error: s.err}
}

func (s *DashboardSlice) FetchSummary(ctx context.Context) (model.DashboardSummary, error) {
	return run(ctx, &s.base, "fetchSummary", "", "Failed to fetch dashboard data",
		func(ctx context.Context) (model.DashboardSummary, error) {
			sum, err := s.svc.Summary(ctx)
			if err != nil {
				return sum, err
			}
			sum.ChartData = PadChart(sum.ChartData, s.now())
			return sum, nil
		},
		func(sum model.DashboardSummary) { s.data = &sum }, nil)
}

// PadChart returns points unchanged when there are any. Otherwise it yields
// the seven days ending at now with zero views, labelled day/month.
func PadChart(points []model.ChartPoint, now time.Time) []model.ChartPoint {
	if len(points) > 0 {
		return points
	}
	out := make([]model.ChartPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		out = append(out, model.ChartPoint{Date: fmt.Sprintf("%d/%d", d.Day(), int(d.Month()))})
	}
	return out
}
