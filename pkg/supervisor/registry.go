// Package supervisor manages the desktop service stack through an external
// process supervisor (supervisorctl). It owns the ordered service registry
// and the status/start/stop client the reconciler drives.
package supervisor

import "strings"

// companionDisabled are the sentinel values meaning "no companion service".
var companionDisabled = map[string]bool{
	"":      true,
	"none":  true,
	"null":  true,
	"0":     true,
	"false": true,
}

// Registry computes the ordered list of managed services from static
// configuration. It is a pure value: no errors, no external calls.
type Registry struct {
	wm        string
	companion string
}

// NewRegistry builds a Registry for the window-manager service and an
// optional companion service. The companion is disabled when its name is
// blank, a disable sentinel (none/null/0/false, case-insensitive), or
// equal to the WM service.
func NewRegistry(wmService, desktopService string) Registry {
	return Registry{
		wm:        strings.TrimSpace(wmService),
		companion: strings.TrimSpace(desktopService),
	}
}

// CompanionEnabled reports whether a distinct companion service is managed.
func (r Registry) CompanionEnabled() bool {
	if companionDisabled[strings.ToLower(r.companion)] {
		return false
	}
	return r.companion != r.wm
}

// WMService returns the window-manager service name.
func (r Registry) WMService() string { return r.wm }

// CompanionService returns the companion service name, or "none" when
// disabled.
func (r Registry) CompanionService() string {
	if !r.CompanionEnabled() {
		return "none"
	}
	return r.companion
}

// StartOrder returns the services in start order: the window manager
// first, then the companion if enabled.
func (r Registry) StartOrder() []string {
	if r.CompanionEnabled() {
		return []string{r.wm, r.companion}
	}
	return []string{r.wm}
}

// StopOrder returns the exact reverse of StartOrder.
func (r Registry) StopOrder() []string {
	order := r.StartOrder()
	rev := make([]string, len(order))
	for i, s := range order {
		rev[len(order)-1-i] = s
	}
	return rev
}
