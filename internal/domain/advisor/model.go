package advisor

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
	"github.com/yanqian/nutrition-advisor/internal/domain/questionnaire"
	"github.com/yanqian/nutrition-advisor/pkg/metrics"
)

// DefaultPrompt is the instruction placed ahead of the serialized payload.
const DefaultPrompt = "Analyze the following data to predict potential nutrition deficiencies and provide dietary suggestions. Be specific in recommendations:"

// NoDataNotice is shown when the heart rate series could not be fetched.
const NoDataNotice = "no data available"

// Config holds the model settings and the prompt instruction.
type Config struct {
	Model       string
	Temperature float32
	Prompt      string
}

// Response is serialized back to API consumers.
type Response struct {
	Advice     string              `json:"advice"`
	HeartRate  fitness.Series      `json:"heartRate"`
	Notice     string              `json:"notice,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// Payload is the fixed schema sent to the model. Field order is the wire order.
type Payload struct {
	Gender        string            `json:"gender"`
	Weight        int               `json:"weight"`
	Diet          string            `json:"diet"`
	Alcohol       int               `json:"alcohol"`
	Smoking       string            `json:"smoking"`
	Drugs         string            `json:"drugs"`
	SleepTime     int               `json:"sleep_time"`
	Periods       *string           `json:"periods,omitempty"`
	HeartRateData []HeartRateRecord `json:"heart_rate_data"`
}

// HeartRateRecord is one sample keyed by the metric's display name.
type HeartRateRecord struct {
	Timestamp time.Time
	Metric    string
	Value     float64
}

// MarshalJSON renders {"timestamp": ..., "<metric>": value}.
func (r HeartRateRecord) MarshalJSON() ([]byte, error) {
	ts, err := json.Marshal(r.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(r.Metric)
	if err != nil {
		return nil, err
	}
	val, err := json.Marshal(r.Value)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"timestamp":`)
	buf.Write(ts)
	buf.WriteByte(',')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BuildPayload merges a validated record with a series. A nil-sample series
// still yields an empty list.
func BuildPayload(rec questionnaire.Record, series fitness.Series) Payload {
	records := make([]HeartRateRecord, 0, len(series.Samples))
	for _, s := range series.Samples {
		records = append(records, HeartRateRecord{Timestamp: s.Timestamp, Metric: series.Metric, Value: s.Value})
	}
	return Payload{
		Gender:        rec.Gender,
		Weight:        rec.Weight,
		Diet:          rec.Diet,
		Alcohol:       rec.Alcohol,
		Smoking:       rec.Smoking,
		Drugs:         rec.Drugs,
		SleepTime:     rec.SleepTime,
		Periods:       rec.Periods,
		HeartRateData: records,
	}
}

// RenderPrompt returns the instruction followed by the indented payload.
// The output depends only on its inputs.
func RenderPrompt(instruction string, payload Payload) (string, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return instruction + "\n\n" + string(body), nil
}
