package model

import "fmt"

// Patch is an ordered change list between two revisions. FromRev and
// ToRev default to the SHA-256 of the respective document text, so a
// patch has content-addressed identity without any VCS. Changes are
// never reordered after creation.
type Patch struct {
	FromRev string            `json:"from_rev"`
	ToRev   string            `json:"to_rev"`
	Changes []Change          `json:"changes"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Validate checks every change for a payload matching its kind. Call
// it on patches that crossed a serialization boundary before feeding
// them to the merge engine.
func (p *Patch) Validate() error {
	for i, c := range p.Changes {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
	}
	return nil
}
