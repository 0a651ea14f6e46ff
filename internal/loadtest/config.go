// Package loadtest drives a running podium server with generated seasons and
// checks every outcome against a local sequential run.
package loadtest

import "time"

// Config holds configuration for a load test.
type Config struct {
	BaseURL     string        // Base URL of the service
	Requests    int           // Number of simulation requests to submit
	Workers     int           // Number of concurrent requests
	Timeout     time.Duration // HTTP request timeout
	Competitors int           // Roster size per request
	MaxEvents   int           // Upper bound for remaining events per request
	Trials      int           // Trials per request
	Seed        uint64        // Generator seed; 0 picks a random one
	Verbose     bool          // Log every request
}

// Scenario is one generated simulation request.
type Scenario struct {
	RequestID       string       `json:"request_id"`
	Competitors     []competitor `json:"competitors"`
	RemainingEvents int          `json:"remaining_events"`
	Trials          int          `json:"trials"`
	Seed            uint64       `json:"seed"`
}

type competitor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Response is the subset of the simulation response the test checks.
type Response struct {
	RequestID     string             `json:"request_id"`
	Trials        int                `json:"trials"`
	Seed          uint64             `json:"seed"`
	TiedTrials    int                `json:"tied_trials"`
	Titles        map[string]int     `json:"titles"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Stats holds test statistics.
type Stats struct {
	Submitted   int
	Successful  int
	RateLimited int
	Failed      int
	Verified    int
	Mismatched  int
	Duration    time.Duration
}
