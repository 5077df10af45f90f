package logging

import "strings"

// ProgressSampler suppresses repetitive transfer progress logs while preserving
// signal when the subject changes or the percentage crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize  float64
	lastSubject string
	lastBucket  int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 10%) or when the subject changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event for sent of total bytes should be
// logged. A non-positive total means the size is unknown, in which case only
// subject changes are reported.
func (s *ProgressSampler) ShouldLog(sent, total int64, subject string) bool {
	if s == nil {
		return true
	}
	subject = strings.TrimSpace(subject)
	emit := false
	if subject != "" && subject != s.lastSubject {
		s.lastSubject = subject
		s.lastBucket = -1
		emit = true
	}
	if total > 0 {
		percent := Percent(sent, total)
		bucket := int(percent / s.bucketSize)
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastSubject = ""
	s.lastBucket = -1
}

// Percent returns sent as a percentage of total clamped to [0, 100].
func Percent(sent, total int64) float64 {
	if total <= 0 || sent <= 0 {
		return 0
	}
	if sent >= total {
		return 100
	}
	return float64(sent) * 100 / float64(total)
}
