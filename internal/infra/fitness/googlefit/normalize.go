package googlefit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
)

// ErrMalformedSample marks a point that carries neither fpVal nor intVal, or
// whose start time cannot be read.
var ErrMalformedSample = errors.New("malformed sample")

type dataset struct {
	DataSourceID   string      `json:"dataSourceId"`
	MinStartTimeNs string      `json:"minStartTimeNs"`
	MaxEndTimeNs   string      `json:"maxEndTimeNs"`
	Point          []dataPoint `json:"point"`
}

type dataPoint struct {
	DataTypeName   string          `json:"dataTypeName"`
	StartTimeNanos json.RawMessage `json:"startTimeNanos"`
	EndTimeNanos   json.RawMessage `json:"endTimeNanos"`
	Value          []valueEntry    `json:"value"`
}

// valueEntry keeps pointer fields so an explicit zero is distinguishable from an absent field.
type valueEntry struct {
	FpVal  *float64 `json:"fpVal"`
	IntVal *int64   `json:"intVal"`
}

// Normalize converts a raw dataset payload into a series tagged with metric.
// An empty payload yields an empty series; malformed points are skipped and counted.
func Normalize(body []byte, metric string) (fitness.Series, error) {
	series := fitness.EmptySeries(metric)
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return series, nil
	}

	var raw dataset
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fitness.Series{}, err
	}

	for _, pt := range raw.Point {
		sample, err := toSample(pt)
		if err != nil {
			series.Skipped++
			continue
		}
		series.Samples = append(series.Samples, sample)
	}
	return series, nil
}

func toSample(pt dataPoint) (fitness.Sample, error) {
	nanos, err := parseNanos(pt.StartTimeNanos)
	if err != nil {
		return fitness.Sample{}, ErrMalformedSample
	}
	if len(pt.Value) == 0 {
		return fitness.Sample{}, ErrMalformedSample
	}
	value := pt.Value[0]
	var v float64
	switch {
	case value.FpVal != nil:
		v = *value.FpVal
	case value.IntVal != nil:
		v = float64(*value.IntVal)
	default:
		return fitness.Sample{}, ErrMalformedSample
	}
	return fitness.Sample{
		Timestamp: time.Unix(0, nanos).UTC(),
		Value:     v,
	}, nil
}

// parseNanos accepts both the quoted int64 form the API returns and a bare number.
func parseNanos(raw json.RawMessage) (int64, error) {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		return 0, ErrMalformedSample
	}
	return strconv.ParseInt(text, 10, 64)
}
