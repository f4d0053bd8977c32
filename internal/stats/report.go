package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/typerace/internal/model"
	"github.com/verte-zerg/typerace/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Races       []model.RaceRecord
	Summary     Summary
	PlaceCounts map[int]int
	CurveWindow int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	races, err := st.ListRaces(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list races: %w", err)
	}
	counts, err := st.PlaceCounts(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to count places: %w", err)
	}
	return Report{
		Races:       races,
		Summary:     Summarize(races),
		PlaceCounts: counts,
		CurveWindow: cfg.CurveWindow,
	}, nil
}

// RenderReport prints the summary, curves and race table of a report.
func RenderReport(w io.Writer, report Report, width int) error {
	if err := RenderSummary(w, report.Races); err != nil {
		return err
	}
	if len(report.Races) == 0 {
		return nil
	}
	if err := RenderCurves(w, report.Races, report.CurveWindow, width); err != nil {
		return err
	}
	return RenderRaceTable(w, report.Races)
}
