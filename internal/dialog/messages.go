package dialog

import (
	"github.com/mkarlen/keyden/internal/update"
)

// State identifies the dialog's position in the update flow.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateCheckFailed
	StateVersionsListed
	StateDownloading
	StateInstalling
	StateInstalled
	StateDownloadFailed
	StateCancelled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateCheckFailed:
		return "check failed"
	case StateVersionsListed:
		return "versions listed"
	case StateDownloading:
		return "downloading"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateDownloadFailed:
		return "download failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the dialog has reached a final state.
// Failure and cancellation are not terminal: they drop back to the
// version list or re-run the check, so only a completed install ends
// the flow.
func (s State) Terminal() bool {
	return s == StateInstalled
}

// checkDoneMsg carries the completed update check.
type checkDoneMsg struct {
	result    update.Result
	releases  []update.Release
	changelog string
}

// checkFailedMsg reports a failed update check.
type checkFailedMsg struct {
	err error
}

// progressMsg carries one download progress snapshot.
type progressMsg update.Progress

// downloadDoneMsg reports that the download goroutine exited.
type downloadDoneMsg struct {
	err error
}

// installDoneMsg reports the result of the binary swap.
type installDoneMsg struct {
	err error
}
