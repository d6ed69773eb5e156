package course

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ComponentStats summarizes one grade component across a course, in the
// shape of a describe() row: count, mean, sample standard deviation and
// the five-number spread.
type ComponentStats struct {
	Component string
	Count     int
	Mean      float64
	Std       float64
	Min       float64
	Q1        float64
	Median    float64
	Q3        float64
	Max       float64
}

// Statistics computes per-component summaries over every student grade
// record of the course, in component order. A course without grade
// records yields an empty result.
func (svc *Service) Statistics(courseID string) ([]ComponentStats, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return nil, err
	}
	if len(crs.Grades) == 0 {
		return nil, nil
	}

	summaries := make([]ComponentStats, 0, len(crs.Components))
	for _, comp := range crs.Components {
		values := make([]float64, 0, len(crs.Grades))
		for _, record := range crs.Grades {
			values = append(values, record[comp])
		}
		sort.Float64s(values)

		cs := ComponentStats{
			Component: comp,
			Count:     len(values),
			Mean:      stat.Mean(values, nil),
			Std:       stat.StdDev(values, nil),
			Min:       values[0],
			Q1:        stat.Quantile(0.25, stat.LinInterp, values, nil),
			Median:    stat.Quantile(0.5, stat.LinInterp, values, nil),
			Q3:        stat.Quantile(0.75, stat.LinInterp, values, nil),
			Max:       values[len(values)-1],
		}
		summaries = append(summaries, cs)
	}
	return summaries, nil
}
