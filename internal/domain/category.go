package domain

// Category is one top-level parametric category discovered at startup.
type Category struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
