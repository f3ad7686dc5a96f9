package fitness

import "time"

// DefaultHeartRateSource is the merged heart-rate stream maintained by Google Fit.
const DefaultHeartRateSource = "derived:com.google.heart_rate.bpm:com.google.android.gms:merge_heart_rate_bpm"

// DefaultHeartRateMetric is the human readable label attached to heart-rate samples.
const DefaultHeartRateMetric = "Heart Rate (BPM)"

const millisPerDay = 24 * 60 * 60 * 1000

// Sample is one reading of one metric at one instant.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is the ordered set of samples for a single metric, in provider delivery order.
// Skipped counts provider points that carried no usable value.
type Series struct {
	Metric  string   `json:"metric"`
	Samples []Sample `json:"samples"`
	Skipped int      `json:"skipped"`
}

// EmptySeries returns a series with no samples that still serializes as an empty list.
func EmptySeries(metric string) Series {
	return Series{Metric: metric, Samples: []Sample{}}
}

// Len reports the number of samples.
func (s Series) Len() int {
	return len(s.Samples)
}

// Window is a time range expressed in epoch milliseconds.
type Window struct {
	StartMillis int64
	EndMillis   int64
}

// TrailingWindow returns the window of the given number of days ending at now.
func TrailingWindow(now time.Time, days int) Window {
	end := now.UnixMilli()
	return Window{
		StartMillis: end - int64(days)*millisPerDay,
		EndMillis:   end,
	}
}

// Config controls which stream the fitness service reads.
type Config struct {
	DataSourceID string
	MetricName   string
	WindowDays   int
}
