package dbus

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification is one reconstructed Notify frame.
type Notification struct {
	App     string
	Summary string
	Body    string
}

// SynthesizeID derives an identifier from notification content and
// arrival time. The monitored trace does not expose the server-assigned
// notification id on the Notify path, so identity here is best-effort:
// identical content arriving in the same microsecond collides, and a
// closed-and-reopened notification gets a fresh id. Callers must not
// rely on correlating these ids with NotificationClosed arguments.
func SynthesizeID(n Notification, at time.Time) string {
	seed := fmt.Sprintf("%s\x00%s\x00%s\x00%d", n.App, n.Summary, n.Body, at.UnixMicro())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}
