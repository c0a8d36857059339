package converter

import (
	"testing"

	"github.com/arthur-debert/dotseed/pkg/deploy"
	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/arthur-debert/dotseed/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRunSuccess(t *testing.T) {
	res := &deploy.Result{Home: "/home/u"}
	for _, name := range deploy.Steps() {
		res.Steps = append(res.Steps, deploy.StepResult{Step: name, Target: "/home/u/x"})
	}

	report := ConvertRun(res, nil)
	assert.True(t, report.OK())
	require.Len(t, report.Steps, 4)
	for _, line := range report.Steps {
		assert.Equal(t, style.StatusDone, line.Status, line.Step)
	}
}

func TestConvertRunFailure(t *testing.T) {
	res := &deploy.Result{Home: "/home/u", Steps: []deploy.StepResult{
		{Step: deploy.StepDeployProfile},
	}}
	cause := errors.New(errors.ErrIO, "permission denied").WithDetail("path", "/home/u/.zprofile")
	runErr := &deploy.StepError{Step: deploy.StepLinkAltProfile, Err: cause}

	report := ConvertRun(res, runErr)
	assert.False(t, report.OK())

	var statuses []style.Status
	for _, line := range report.Steps {
		statuses = append(statuses, line.Status)
	}
	assert.Equal(t, []style.Status{
		style.StatusDone, style.StatusFailed, style.StatusSkipped, style.StatusSkipped,
	}, statuses)

	require.NotNil(t, report.Error)
	assert.Equal(t, deploy.StepLinkAltProfile, report.Error.Step)
	assert.Equal(t, errors.ErrIO, report.Error.Code)
	assert.Equal(t, "/home/u/.zprofile", report.Error.Details["path"])
}

func TestConvertRunDryRun(t *testing.T) {
	res := &deploy.Result{DryRun: true, Steps: []deploy.StepResult{
		{Step: deploy.StepDeployProfile, DryRun: true},
	}}
	report := ConvertRun(res, nil)
	assert.True(t, report.DryRun)
	assert.Equal(t, style.StatusPlanned, report.Steps[0].Status)
}

func TestConvertRunNilResult(t *testing.T) {
	report := ConvertRun(nil, errors.New(errors.ErrConfigValid, "bad"))
	assert.Len(t, report.Steps, 4)
	assert.Equal(t, errors.ErrConfigValid, report.Error.Code)
	assert.Empty(t, report.Error.Step)
}
