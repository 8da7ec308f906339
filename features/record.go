package features

import (
	"encoding/json"
	"fmt"
)

// FeatureRecord summarizes the musical features of one audio clip
type FeatureRecord struct {
	BPM            float64 `json:"bpm"`             // Estimated tempo in beats per minute
	Key            string  `json:"key"`             // One of the 12 pitch-class labels
	KeyConfidence  float64 `json:"key_confidence"`  // Dominant chroma-bin magnitude
	EnergyRMS      float64 `json:"energy_rms"`      // Mean short-time RMS amplitude
	Brightness     float64 `json:"brightness"`      // Mean spectral centroid in Hz
	DynamicRange   float64 `json:"dynamic_range"`   // Max - min frame-wise RMS
	TempoStability float64 `json:"tempo_stability"` // 1 - stddev of inter-beat intervals, 0 when < 2 beats
	DurationSec    float64 `json:"duration_sec"`    // Clip duration in seconds
}

// Result is the outcome of an analysis run. Failures are carried as data
// rather than errors: callers branch on Failed() before reading the record.
type Result struct {
	Record *FeatureRecord
	Err    string
}

// Ok wraps a successful feature record
func Ok(record *FeatureRecord) Result {
	return Result{Record: record}
}

// Errf builds a failed result from a format string
func Errf(format string, args ...any) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}

// Failed reports whether the analysis produced an error instead of a record
func (r Result) Failed() bool {
	return r.Err != ""
}

// MarshalJSON serializes either the record or the single-key error shape
// {"error": message}
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(map[string]string{"error": r.Err})
	}
	return json.Marshal(r.Record)
}

// UnmarshalJSON restores a Result from either serialized shape
func (r *Result) UnmarshalJSON(data []byte) error {
	var probe struct {
		Err *string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.Err != nil {
		r.Err = *probe.Err
		r.Record = nil
		return nil
	}

	record := &FeatureRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return err
	}
	r.Record = record
	r.Err = ""
	return nil
}
