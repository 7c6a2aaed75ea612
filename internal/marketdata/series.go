package marketdata

import (
	"fmt"
	"sort"
	"time"

	"lopf/internal/model"
)

// AlignToSnapshots maps a dataset response onto a network's snapshots by
// matching each snapshot's wall-clock time to the interval that contains
// it. Snapshots that fall outside every interval are left unset so callers
// can apply their own fallback via Series.At.
func AlignToSnapshots(resp *Response, snapshotTimes map[model.Snapshot]time.Time) model.Series {
	out := make(model.Series, len(snapshotTimes))
	if resp == nil || len(resp.Data) == 0 {
		return out
	}

	intervals := make([]Interval, len(resp.Data))
	copy(intervals, resp.Data)
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].StartUTC.Before(intervals[j].StartUTC) })

	for sn, t := range snapshotTimes {
		t = t.UTC()
		idx := sort.Search(len(intervals), func(i int) bool { return !intervals[i].StartUTC.Before(t) })
		var match *Interval
		if idx < len(intervals) && intervals[idx].StartUTC.Equal(t) {
			match = &intervals[idx]
		} else if idx > 0 {
			candidate := intervals[idx-1]
			end := candidate.EndUTC
			if end.IsZero() {
				end = candidate.StartUTC.Add(candidate.Duration())
			}
			if !t.Before(candidate.StartUTC) && t.Before(end) {
				match = &candidate
			}
		}
		if match != nil {
			out[sn] = match.Value
		}
	}
	return out
}

// EvenlySpacedSnapshotTimes builds the snapshotTimes argument AlignToSnapshots
// expects, for the common case of evenly spaced snapshots starting at start.
func EvenlySpacedSnapshotTimes(snapshots []model.Snapshot, start time.Time, step time.Duration) map[model.Snapshot]time.Time {
	out := make(map[model.Snapshot]time.Time, len(snapshots))
	for i, sn := range snapshots {
		out[sn] = start.Add(time.Duration(i) * step)
	}
	return out
}

// FetchLoadSeries fetches a load dataset for location and aligns it onto
// snapshotTimes, suitable for assignment to a Load's PSet.
func (c *Client) FetchLoadSeries(datasetID, locationID string, snapshotTimes map[model.Snapshot]time.Time) (model.Series, error) {
	return c.fetchSeries(datasetID, locationID, snapshotTimes)
}

// FetchMarginalCostSeries fetches a price dataset for location and aligns
// it onto snapshotTimes. Generator.MarginalCost is a scalar, so callers
// building a scenario with time-varying fuel or import prices solve one
// snapshot range per price level, or average the series into the scalar.
func (c *Client) FetchMarginalCostSeries(datasetID, locationID string, snapshotTimes map[model.Snapshot]time.Time) (model.Series, error) {
	return c.fetchSeries(datasetID, locationID, snapshotTimes)
}

func (c *Client) fetchSeries(datasetID, locationID string, snapshotTimes map[model.Snapshot]time.Time) (model.Series, error) {
	if len(snapshotTimes) == 0 {
		return model.Series{}, nil
	}
	start, end := timeBounds(snapshotTimes)
	resp, err := c.Query(QueryParams{
		DatasetID:  datasetID,
		LocationID: locationID,
		StartTime:  start,
		EndTime:    end.Add(24 * time.Hour),
		Timezone:   "UTC",
	})
	if err != nil {
		return nil, fmt.Errorf("marketdata: fetch %s/%s: %w", datasetID, locationID, err)
	}
	return AlignToSnapshots(resp, snapshotTimes), nil
}

func timeBounds(times map[model.Snapshot]time.Time) (time.Time, time.Time) {
	var min, max time.Time
	first := true
	for _, t := range times {
		if first {
			min, max = t, t
			first = false
			continue
		}
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return min, max
}
