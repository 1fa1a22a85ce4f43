package session

import "time"

// Result messages reported by reconciliation operations.
const (
	MsgReady            = "ready"
	MsgStarting         = "starting"
	MsgApplying         = "applying"
	MsgSwitchInProgress = "switch_in_progress"
	MsgRestarted        = "restarted"
)

// Status is the advisory state snapshot included in every response.
// Timestamps are unix seconds with fractional precision; zero means
// "never since process start".
type Status struct {
	Services       map[string]string `json:"services"`
	Running        bool              `json:"running"`
	LastSwitchTS   float64           `json:"last_switch_ts"`
	KioskScript    string            `json:"kiosk_script"`
	WMService      string            `json:"wm_service"`
	DesktopService string            `json:"desktop_service"`
	CurrentMode    Mode              `json:"current_mode"`
	LastApplyTS    float64           `json:"last_apply_ts"`
}

// Result is the record returned by mutating reconciliation operations.
//
//   - OK: the stack is running, the mode apply succeeded or was validly
//     skipped, and the current mode matches the requested mode.
//   - Busy: another reconciliation held the switch lock; nothing was done.
//   - Changed: the stack was started or restarted during this call.
//   - Applied: the mode toggle was actually invoked (false when the
//     flicker-suppression rule skipped it).
//   - ModeOK / ModeMsg: outcome of the toggle invocation; ModeOK is true
//     when the apply was skipped.
type Result struct {
	Status

	OK            bool   `json:"ok"`
	Busy          bool   `json:"busy"`
	Changed       bool   `json:"changed"`
	RequestedMode Mode   `json:"requested_mode,omitempty"`
	Applied       bool   `json:"applied"`
	ModeOK        bool   `json:"mode_ok"`
	ModeMsg       string `json:"mode_msg,omitempty"`
	Message       string `json:"message"`
}

// unixSeconds converts t to fractional unix seconds; the zero time maps
// to 0.
func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}
