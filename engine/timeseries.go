package engine

import (
	"strconv"
	"time"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
	"reportauto/internal/stats"
)

var timeSeriesHeader = []string{"Timestamp", "Value"}

// runTimeSeries buckets the metric by calendar period and aggregates
// per bucket. Rows whose date or metric fail to parse are skipped. For
// sum and count the gaps between the first and last observed bucket are
// zero-filled so the series is continuous; average omits empty buckets
// since no meaningful value exists for them.
func runTimeSeries(v view, step *recipe.Step) (*SectionResult, *artifactRows, error) {
	dateCol, ok := v.tbl.ColumnIndex(step.DateColumn)
	if !ok {
		return nil, nil, errors.Dataf("date column %q not found", step.DateColumn)
	}
	metricCol, ok := v.tbl.ColumnIndex(step.MetricColumn)
	if !ok {
		return nil, nil, errors.Dataf("metric column %q not found", step.MetricColumn)
	}

	buckets := make(map[time.Time][]float64)
	var minBucket, maxBucket time.Time
	for _, row := range v.tbl.Rows {
		ts, ok := table.ParseTime(row[dateCol])
		if !ok {
			continue
		}
		n, ok := table.ParseNumber(row[metricCol])
		if !ok {
			continue
		}
		b := bucketStart(ts, step.Frequency)
		buckets[b] = append(buckets[b], n)
		if minBucket.IsZero() || b.Before(minBucket) {
			minBucket = b
		}
		if b.After(maxBucket) {
			maxBucket = b
		}
	}
	if len(buckets) == 0 {
		return nil, nil, errors.Data("no parseable date/metric pairs")
	}

	fillGaps := step.Metric == "sum" || step.Metric == "count"

	var rows [][]string
	for b := minBucket; !b.After(maxBucket); b = nextBucket(b, step.Frequency) {
		vals, present := buckets[b]
		if !present && !fillGaps {
			continue
		}
		var value string
		switch step.Metric {
		case "sum":
			if len(vals) == 0 {
				value = table.FormatRounded(0)
			} else {
				value = table.FormatRounded(stats.Sum(vals))
			}
		case "average":
			value = table.FormatRounded(stats.Mean(vals))
		case "count":
			value = strconv.Itoa(len(vals))
		}
		rows = append(rows, []string{bucketLabel(b, step.Frequency), value})
	}

	return &SectionResult{OutputName: step.OutputName, Header: timeSeriesHeader, Rows: rows}, nil, nil
}

// bucketStart truncates a timestamp to the start of its period: the day
// itself, the Monday of its week, or the first of its month.
func bucketStart(ts time.Time, frequency string) time.Time {
	y, m, d := ts.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	switch frequency {
	case "W":
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case "M":
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextBucket(b time.Time, frequency string) time.Time {
	switch frequency {
	case "W":
		return b.AddDate(0, 0, 7)
	case "M":
		return b.AddDate(0, 1, 0)
	default:
		return b.AddDate(0, 0, 1)
	}
}

func bucketLabel(b time.Time, frequency string) string {
	if frequency == "M" {
		return b.Format("2006-01")
	}
	return b.Format("2006-01-02")
}
