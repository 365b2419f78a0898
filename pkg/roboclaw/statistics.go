// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks dispatcher calls, attempts and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	Calls           uint64
	Succeeded       uint64
	Failed          uint64
	Attempts        uint64
	Retries         uint64
	ChecksumErrors  uint64
	ShortReads      uint64
	Timeouts        uint64
	TransportErrors uint64
	EncodingErrors  uint64

	// Rates (calculated)
	CallRate  float64 // calls/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// recordAttemptError counts one failed attempt by error kind
func (s *Statistics) recordAttemptError(err error) {
	var te *TransportError
	switch {
	case errors.Is(err, ErrChecksum):
		s.ChecksumErrors++
	case errors.Is(err, ErrShortRead):
		s.ShortReads++
	case errors.Is(err, ErrTimeout):
		s.Timeouts++
	case errors.As(err, &te):
		s.TransportErrors++
	}
	s.LastUpdateTime = time.Now()
}

// AttemptErrors returns the number of failed attempts of any kind
func (s *Statistics) AttemptErrors() uint64 {
	return s.ChecksumErrors + s.ShortReads + s.Timeouts + s.TransportErrors
}

// CalculateRates calculates call and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.CallRate = float64(s.Calls) / elapsed
		s.ErrorRate = float64(s.AttemptErrors()+s.Failed) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var successPercent, retryPercent float64
	if s.Calls > 0 {
		successPercent = float64(s.Succeeded) * 100.0 / float64(s.Calls)
	}
	if s.Attempts > 0 {
		retryPercent = float64(s.Retries) * 100.0 / float64(s.Attempts)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Calls:           %8d\n", s.Calls)
	result += fmt.Sprintf("Succeeded:       %8d (%.1f%%)\n", s.Succeeded, successPercent)
	if s.Failed > 0 {
		result += fmt.Sprintf("Failed:          %8d\n", s.Failed)
	}
	result += fmt.Sprintf("Attempts:        %8d\n", s.Attempts)
	result += fmt.Sprintf("Retries:         %8d (%.1f%%)\n", s.Retries, retryPercent)

	if s.AttemptErrors() > 0 {
		if s.ChecksumErrors > 0 {
			result += fmt.Sprintf("  Checksum:         %5d\n", s.ChecksumErrors)
		}
		if s.ShortReads > 0 {
			result += fmt.Sprintf("  Short Read:       %5d\n", s.ShortReads)
		}
		if s.Timeouts > 0 {
			result += fmt.Sprintf("  Timeout:          %5d\n", s.Timeouts)
		}
		if s.TransportErrors > 0 {
			result += fmt.Sprintf("  Transport:        %5d\n", s.TransportErrors)
		}
	}
	if s.EncodingErrors > 0 {
		result += fmt.Sprintf("Encoding Errors: %8d\n", s.EncodingErrors)
	}

	result += fmt.Sprintf("Call Rate:       %8.1f calls/sec\n", s.CallRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
