package model

// ReplicateStat summarises the fractional error at one (D, N) point over
// several independent sweeps.
type ReplicateStat struct {
	D int `json:"d"`
	N int `json:"N"` //nolint:tagliatelle // matches the CSV header

	// Replicates is the number of independent sweeps that contributed.
	Replicates int `json:"replicates"`

	MeanEstimate float64 `json:"mean_estimate"`
	MeanError    float64 `json:"mean_error"`
	MedianError  float64 `json:"median_error"`
	StdDevError  float64 `json:"stddev_error"`
}
