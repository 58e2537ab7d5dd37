package dto

// View is one entry of the role-based navigation menu.
type View struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}
