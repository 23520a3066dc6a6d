package model

import "fmt"

type ChangeKind string

const (
	KindInsertBlock  ChangeKind = "insert_block"
	KindDeleteBlock  ChangeKind = "delete_block"
	KindUpdateBlock  ChangeKind = "update_block"
	KindMoveBlock    ChangeKind = "move_block"
	KindJSONLDAdd    ChangeKind = "jsonld_add"
	KindJSONLDRemove ChangeKind = "jsonld_remove"
	KindJSONLDUpdate ChangeKind = "jsonld_update"
)

type TokenOpKind string

const (
	OpKeep   TokenOpKind = "keep"
	OpInsert TokenOpKind = "insert"
	OpDelete TokenOpKind = "delete"
)

type TokenOp struct {
	Op    TokenOpKind `json:"op"`
	Value string      `json:"value"`
}

// Path locates a change: Blocks for structural changes, Key for
// semantic changes keyed by (subject, predicate).
type Path struct {
	Blocks []int  `json:"blocks,omitempty"`
	Key    string `json:"key,omitempty"`
}

func (p Path) Equal(other Path) bool {
	if p.Key != "" || other.Key != "" {
		return p.Key == other.Key
	}
	if len(p.Blocks) != len(other.Blocks) {
		return false
	}
	for i, v := range p.Blocks {
		if other.Blocks[i] != v {
			return false
		}
	}
	return true
}

// PrefixOf reports whether p is a strict block-path prefix of other.
func (p Path) PrefixOf(other Path) bool {
	if p.Key != "" || other.Key != "" {
		return false
	}
	if len(p.Blocks) == 0 || len(p.Blocks) >= len(other.Blocks) {
		return false
	}
	for i, v := range p.Blocks {
		if other.Blocks[i] != v {
			return false
		}
	}
	return true
}

// Overlaps reports whether two paths touch the same document region:
// equal, or one a strict prefix of the other.
func (p Path) Overlaps(other Path) bool {
	return p.Equal(other) || p.PrefixOf(other) || other.PrefixOf(p)
}

type UpdatePayload struct {
	Type   BlockType `json:"type"`
	Before string    `json:"before"`
	After  string    `json:"after"`
	Ops    []TokenOp `json:"ops,omitempty"`
}

type MovePayload struct {
	From []int `json:"from"`
	To   []int `json:"to"`
}

type TriplePayload struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object,omitempty"`
	Datatype  string `json:"datatype,omitempty"`
	Lang      string `json:"lang,omitempty"`
	Before    string `json:"before,omitempty"`
	After     string `json:"after,omitempty"`
}

// Change is one structural or semantic edit. Exactly one payload field
// is set, matching Kind. Changes are immutable once created.
type Change struct {
	Kind   ChangeKind     `json:"kind"`
	Path   Path           `json:"path"`
	Block  *Block         `json:"block,omitempty"`
	Update *UpdatePayload `json:"update,omitempty"`
	Move   *MovePayload   `json:"move,omitempty"`
	Triple *TriplePayload `json:"triple,omitempty"`
}

// IsSemantic reports whether the change carries a jsonld_* kind.
func (c Change) IsSemantic() bool {
	switch c.Kind {
	case KindJSONLDAdd, KindJSONLDRemove, KindJSONLDUpdate:
		return true
	default:
		return false
	}
}

// Validate checks that the payload matching Kind is present. Changes
// built by the engine always satisfy this; deserialized ones may not.
func (c Change) Validate() error {
	switch c.Kind {
	case KindInsertBlock, KindDeleteBlock:
		if c.Block == nil {
			return fmt.Errorf("%s change missing block payload", c.Kind)
		}
	case KindUpdateBlock:
		if c.Update == nil {
			return fmt.Errorf("update_block change missing update payload")
		}
	case KindMoveBlock:
		if c.Move == nil {
			return fmt.Errorf("move_block change missing move payload")
		}
	case KindJSONLDAdd, KindJSONLDRemove, KindJSONLDUpdate:
		if c.Triple == nil {
			return fmt.Errorf("%s change missing triple payload", c.Kind)
		}
	default:
		return fmt.Errorf("unknown change kind %q", c.Kind)
	}
	return nil
}
