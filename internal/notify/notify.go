// Package notify is the system notification boundary: one "fire a
// notification with title and body" capability that degrades silently when
// no desktop notification service is available.
package notify

import "github.com/gen2brain/beeep"

// Desktop delivers notifications through the platform notification service.
type Desktop struct{}

// NewDesktop returns the platform notifier.
func NewDesktop() *Desktop {
	return &Desktop{}
}

// Notify sends a single notification. The returned error is informational;
// callers are expected to treat delivery as best-effort.
func (d *Desktop) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}
