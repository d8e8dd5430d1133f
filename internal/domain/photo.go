package domain

import (
	"time"

	"gocv.io/x/gocv"
)

// Status is the lifecycle state of a photo. It is always derived from the
// check results: pending while none exist, approved when all passed,
// rejected as soon as one failed.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// CheckResult is the outcome of a single compliance check. Immutable once
// constructed; build instances through NewCheckResult so the confidence
// range is enforced.
type CheckResult struct {
	CheckName  string                 `json:"check_name"`
	Passed     bool                   `json:"passed"`
	Confidence float64                `json:"confidence"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// NewCheckResult creates a CheckResult and rejects confidence values outside
// [0, 1] instead of clamping them.
func NewCheckResult(checkName string, passed bool, confidence float64, message string, details map[string]interface{}) (CheckResult, error) {
	if confidence < 0.0 || confidence > 1.0 {
		return CheckResult{}, ErrInvalidConfidence
	}
	return CheckResult{
		CheckName:  checkName,
		Passed:     passed,
		Confidence: confidence,
		Message:    message,
		Details:    details,
	}, nil
}

// Photo is the record a validation run decorates. The image buffer is
// supplied by the caller (camera capture or file loader) and is read-only as
// far as the pipeline is concerned. The ID is assigned at persistence time,
// never by the pipeline.
type Photo struct {
	ID        string                 `json:"id,omitempty"`
	Image     gocv.Mat               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	Status    Status                 `json:"status"`
	Results   []CheckResult          `json:"results"`
	FilePath  string                 `json:"file_path,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
}

// NewPhoto wraps a captured image in a pending record.
func NewPhoto(image gocv.Mat) *Photo {
	return &Photo{
		Image:     image,
		Timestamp: time.Now(),
		Status:    StatusPending,
		Metadata:  map[string]interface{}{},
	}
}

// AddResult appends a check result and recomputes the status. This is the
// only way Results may change during a run, which keeps Status consistent
// with the results at all times.
func (p *Photo) AddResult(result CheckResult) {
	p.Results = append(p.Results, result)
	p.Status = statusFor(p.Results)
}

// IsValid reports whether every check so far has passed. An unvalidated
// photo is not valid.
func (p *Photo) IsValid() bool {
	if len(p.Results) == 0 {
		return false
	}
	for _, r := range p.Results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// OverallConfidence is the arithmetic mean of all check confidences, 0 when
// no checks have run.
func (p *Photo) OverallConfidence() float64 {
	if len(p.Results) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, r := range p.Results {
		sum += r.Confidence
	}
	return sum / float64(len(p.Results))
}

// FailedResults returns the results of every check that did not pass.
func (p *Photo) FailedResults() []CheckResult {
	var failed []CheckResult
	for _, r := range p.Results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func statusFor(results []CheckResult) Status {
	if len(results) == 0 {
		return StatusPending
	}
	for _, r := range results {
		if !r.Passed {
			return StatusRejected
		}
	}
	return StatusApproved
}
