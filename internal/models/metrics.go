package models

import "time"

// MetricsSnapshot summarises in-process counters for the metrics endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	ReportsBuilt             uint64    `json:"reports_built"`
	TransitionsApplied       uint64    `json:"transitions_applied"`
	TransitionsRefused       uint64    `json:"transitions_refused"`
	NotificationsSent        uint64    `json:"notifications_sent"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
