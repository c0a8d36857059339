package style

import (
	"github.com/pterm/pterm"
)

// Status is the outcome of a step as shown to the user.
type Status string

const (
	StatusDone    Status = "done"    // Step completed
	StatusPlanned Status = "planned" // Dry run: step would run
	StatusFailed  Status = "failed"  // Step failed, the run stopped here
	StatusSkipped Status = "skipped" // Not reached after an earlier failure
)

// StatusStyle returns the pterm style for a status badge
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusDone:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case StatusFailed:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	case StatusPlanned:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// Badge renders the status as a padded, styled label.
func Badge(status Status) string {
	return StatusStyle(status).Sprintf(" %-7s ", string(status))
}
