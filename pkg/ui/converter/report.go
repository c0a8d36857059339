// Package converter turns the outcome of a deploy run into the display model
// shared by every renderer.
package converter

import (
	stderrors "errors"

	"github.com/arthur-debert/dotseed/pkg/archive"
	"github.com/arthur-debert/dotseed/pkg/deploy"
	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/arthur-debert/dotseed/pkg/style"
)

// StepLine is one step as shown to the user.
type StepLine struct {
	Step   string       `json:"step"`
	Status style.Status `json:"status"`
	Source string       `json:"source,omitempty"`
	Target string       `json:"target,omitempty"`
}

// ErrorInfo describes why a run stopped.
type ErrorInfo struct {
	Step    string                 `json:"step,omitempty"`
	Code    errors.ErrorCode       `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Report is the display model of a run.
type Report struct {
	Home    string          `json:"home"`
	DryRun  bool            `json:"dry_run"`
	Steps   []StepLine      `json:"steps"`
	Archive *archive.Result `json:"archive,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

// OK reports whether every step completed.
func (r *Report) OK() bool { return r.Error == nil }

// ConvertRun builds a Report listing every step, completed or not, in
// execution order. runErr is the error returned by Deployer.Run, if any.
func ConvertRun(res *deploy.Result, runErr error) *Report {
	if res == nil {
		res = &deploy.Result{}
	}
	report := &Report{Home: res.Home, DryRun: res.DryRun, Archive: res.Archive}

	completed := make(map[string]deploy.StepResult, len(res.Steps))
	for _, s := range res.Steps {
		completed[s.Step] = s
	}

	var failedStep string
	if runErr != nil {
		var stepErr *deploy.StepError
		if stderrors.As(runErr, &stepErr) {
			failedStep = stepErr.Step
		}
		report.Error = &ErrorInfo{
			Step:    failedStep,
			Code:    errors.GetErrorCode(runErr),
			Message: runErr.Error(),
			Details: errors.GetErrorDetails(runErr),
		}
	}

	for _, name := range deploy.Steps() {
		line := StepLine{Step: name, Status: style.StatusSkipped}
		if s, ok := completed[name]; ok {
			line.Source, line.Target = s.Source, s.Target
			line.Status = style.StatusDone
			if s.DryRun {
				line.Status = style.StatusPlanned
			}
		} else if name == failedStep {
			line.Status = style.StatusFailed
		}
		report.Steps = append(report.Steps, line)
	}
	return report
}
