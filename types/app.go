package types

// ModeEvent is published retained on app/<name>/status whenever the render
// loop observes a status change, and on app/active when an app is activated.
type ModeEvent struct {
	App    string `json:"app"`
	Status string `json:"status,omitempty"`
}
