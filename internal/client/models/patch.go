package models

// Patch carries the fields of a kept item that changed. Nil fields are left
// unchanged remotely.
type Patch struct {
	Notes *string
	Tags  []string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Notes == nil && p.Tags == nil
}
