// Package feed reads the published warning files: it finds the newest one
// under the feed root and turns its delimited rows into records.
package feed

// DataRecord is one row of the warning feed.
type DataRecord struct {
	Code            string  `json:"code"`
	ValidTime       string  `json:"validTime"`
	IntervalMinutes int     `json:"intervalMinutes"`
	Grade           int     `json:"grade"`
	SuppressFlag    float64 `json:"suppressFlag"`
	Threshold       float64 `json:"threshold"`
	// WarningTypeID is only populated when records are read back from storage.
	WarningTypeID *int `json:"warningTypeId,omitempty"`
}
