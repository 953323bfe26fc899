package platform

// AppName identifies the application to the notification service.
const AppName = "Retouch"

// Urgency mirrors the freedesktop urgency levels.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	Urgency  Urgency
	// TimeoutMS is the display time in milliseconds. Zero uses the platform
	// default.
	TimeoutMS int32
}
