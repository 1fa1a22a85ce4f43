// Package session owns kiosk-mode reconciliation: deciding, under
// concurrent requests, whether the desktop stack must be (re)started,
// whether readiness must be probed, and whether the kiosk-mode toggle must
// be (re)applied, with single-flight serialization and idempotent
// convergence.
package session

// Mode is the kiosk-mode state domain. The zero-ish value is ModeUnknown:
// nothing has been applied since process start, so the next request always
// applies.
type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeOn      Mode = "on"
	ModeOff     Mode = "off"
)

// DesiredMode maps a request's kiosk intent to the mode to converge on.
func DesiredMode(wantKiosk bool) Mode {
	if wantKiosk {
		return ModeOn
	}
	return ModeOff
}
