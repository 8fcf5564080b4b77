// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

import (
	"errors"
	"fmt"
	"time"
)

// Stats tracks exchange statistics and error rates for a session. A nil
// *Stats is valid and counts nothing.
type Stats struct {
	StartTime time.Time

	// Counters
	Exchanges     uint64
	Completed     uint64
	Continuations uint64 // reads needed beyond the first to finish a response
	BadMessages   uint64 // CRC failures and malformed frames
	BusErrors     uint64
	Timeouts      uint64

	// Rates (calculated)
	ExchangeRate float64 // exchanges/sec
	ErrorRate    float64 // errors/sec
}

// NewStats creates a statistics tracker.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

func (s *Stats) countExchange() {
	if s != nil {
		s.Exchanges++
	}
}

func (s *Stats) countContinuation() {
	if s != nil {
		s.Continuations++
	}
}

func (s *Stats) countTimeout() {
	if s != nil {
		s.Timeouts++
	}
}

func (s *Stats) countResult(err error) {
	if s == nil {
		return
	}
	var be BusError
	switch {
	case err == nil:
		s.Completed++
	case errors.As(err, &be):
		s.BusErrors++
	case errors.Is(err, ErrBadMessage):
		s.BadMessages++
	case errors.Is(err, ErrDataTooLong):
		// over-long read-n still delivered data
		s.Completed++
	}
}

// CalculateRates recomputes the exchange and error rates.
func (s *Stats) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.ExchangeRate = float64(s.Exchanges) / elapsed
		errorCount := s.BadMessages + s.BusErrors + s.Timeouts
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Stats) String() string {
	s.CalculateRates()

	var completedPercent float64
	if s.Exchanges > 0 {
		completedPercent = float64(s.Completed) * 100.0 / float64(s.Exchanges)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Exchanges:       %8d\n", s.Exchanges)
	result += fmt.Sprintf("Completed:       %8d (%.1f%%)\n", s.Completed, completedPercent)
	if s.Continuations > 0 {
		result += fmt.Sprintf("Continuations:   %8d\n", s.Continuations)
	}
	if s.BadMessages > 0 {
		result += fmt.Sprintf("Bad Messages:    %8d\n", s.BadMessages)
	}
	if s.BusErrors > 0 {
		result += fmt.Sprintf("Bus Errors:      %8d\n", s.BusErrors)
	}
	if s.Timeouts > 0 {
		result += fmt.Sprintf("Timeouts:        %8d\n", s.Timeouts)
	}
	result += fmt.Sprintf("Exchange Rate:   %8.1f exch/sec\n", s.ExchangeRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset clears all counters and restarts the clock.
func (s *Stats) Reset() {
	*s = Stats{StartTime: time.Now()}
}
