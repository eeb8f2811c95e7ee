package model

// HealthStatus represents the health check status. Indices reports how
// many index files the post pipeline can currently see; a daemon with
// an empty corpus is alive but degraded.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Indices int    `json:"indices"`
}
