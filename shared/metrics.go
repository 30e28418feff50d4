package shared

import (
	"sync"
	"time"
)

// ServiceMetrics tracks request and degradation counters for a service.
// Degradations are the cases where a failure was converted into fallback
// content instead of an error: parse failures, shape mismatches and
// transport errors all land here.
type ServiceMetrics struct {
	ServiceName           string        `json:"service_name"`
	TotalRequests         int64         `json:"total_requests"`
	SuccessfulRequests    int64         `json:"successful_requests"`
	FailedRequests        int64         `json:"failed_requests"`
	ParseFailures         int64         `json:"parse_failures"`
	FallbackActivations   int64         `json:"fallback_activations"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	LastUpdated           time.Time     `json:"last_updated"`
	mutex                 sync.RWMutex
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		ServiceName: serviceName,
		LastUpdated: time.Now(),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRequests++
	m.TotalProcessingTime += processingTime
	m.AverageProcessingTime = time.Duration(int64(m.TotalProcessingTime) / m.TotalRequests)

	if success {
		m.SuccessfulRequests++
	} else {
		m.FailedRequests++
	}

	m.LastUpdated = time.Now()
}

// RecordParseFailure counts an AI response that could not be parsed as JSON
func (m *ServiceMetrics) RecordParseFailure() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.ParseFailures++
	m.LastUpdated = time.Now()
}

// RecordFallbackActivation counts a cycle that served fallback data
func (m *ServiceMetrics) RecordFallbackActivation() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.FallbackActivations++
	m.LastUpdated = time.Now()
}

// GetSuccessRate returns the success rate as a percentage
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalRequests == 0 {
		return 0.0
	}

	return float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100.0
}

// Snapshot returns a copy of the current counters for serialization
func (m *ServiceMetrics) Snapshot() ServiceMetrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return ServiceMetrics{
		ServiceName:           m.ServiceName,
		TotalRequests:         m.TotalRequests,
		SuccessfulRequests:    m.SuccessfulRequests,
		FailedRequests:        m.FailedRequests,
		ParseFailures:         m.ParseFailures,
		FallbackActivations:   m.FallbackActivations,
		TotalProcessingTime:   m.TotalProcessingTime,
		AverageProcessingTime: m.AverageProcessingTime,
		LastUpdated:           m.LastUpdated,
	}
}
