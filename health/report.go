package health

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Label returns the short tag printed on stage lines.
func (s Status) Label() string {
	switch s {
	case StatusHealthy:
		return "PASS"
	case StatusDegraded:
		return "WARN"
	case StatusUnhealthy:
		return "FAIL"
	case StatusSkipped:
		return "SKIP"
	default:
		return "????"
	}
}

// Reporter writes the human diagnostic trail: one line per stage and a
// final verdict line.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Start announces the run.
func (r *Reporter) Start() {
	fmt.Fprintln(r.w, "Running BBS health checks...")
}

// Stage writes "[name] LABEL: message".
func (r *Reporter) Stage(sr StageResult) {
	fmt.Fprintf(r.w, "[%s] %s: %s\n", sr.Name, sr.Result.Status.Label(), sr.Result.Message)
}

// Verdict writes HEALTHY or "UNHEALTHY: stage: reason".
func (r *Reporter) Verdict(v Verdict) {
	if v.Passed {
		fmt.Fprintln(r.w, "HEALTHY")
		return
	}
	fmt.Fprintf(r.w, "UNHEALTHY: %s: %s\n", v.FailedStage, v.Reason)
}

// HealthResponse is the JSON form of a Verdict.
type HealthResponse struct {
	Status      string          `json:"status"`
	Timestamp   string          `json:"timestamp"`
	FailedStage string          `json:"failed_stage,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Checks      []CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON form of a single stage result.
type CheckResponse struct {
	Name     string         `json:"name"`
	Gate     string         `json:"gate"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewHealthResponse converts a verdict for JSON output.
func NewHealthResponse(v Verdict) HealthResponse {
	status := StatusHealthy
	if !v.Passed {
		status = StatusUnhealthy
	}

	response := HealthResponse{
		Status:      status.String(),
		Timestamp:   v.Timestamp.UTC().Format(time.RFC3339),
		FailedStage: v.FailedStage,
		Reason:      v.Reason,
		Checks:      make([]CheckResponse, 0, len(v.Stages)),
	}

	for _, sr := range v.Stages {
		check := CheckResponse{
			Name:     sr.Name,
			Gate:     sr.Gate.String(),
			Status:   sr.Result.Status.String(),
			Message:  sr.Result.Message,
			Duration: sr.Result.Duration.String(),
			Details:  sr.Result.Details,
		}
		if sr.Result.Error != nil {
			check.Error = sr.Result.Error.Error()
		}
		response.Checks = append(response.Checks, check)
	}
	return response
}

// WriteJSON encodes the verdict as one JSON object followed by a newline.
func WriteJSON(w io.Writer, v Verdict) error {
	return json.NewEncoder(w).Encode(NewHealthResponse(v))
}
