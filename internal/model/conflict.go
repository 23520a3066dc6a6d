package model

type ConflictReason string

const (
	ReasonSameSegmentEdit ConflictReason = "same_segment_edit"
	ReasonDeleteVsEdit    ConflictReason = "delete_vs_edit"
	ReasonMoveVsEdit      ConflictReason = "move_vs_edit"
	ReasonJSONLDSemantic  ConflictReason = "jsonld_semantic"
)

type Resolution string

const (
	ResolutionNone      Resolution = ""
	ResolutionIdentical Resolution = "identical"
	ResolutionSuperset  Resolution = "superset"
)

// Conflict pairs two changes from divergent edits that touch the same
// region. Resolution records how the merge engine settled it; empty
// means unresolved.
type Conflict struct {
	Path       Path           `json:"path"`
	Reason     ConflictReason `json:"reason"`
	Ours       Change         `json:"ours"`
	Theirs     Change         `json:"theirs"`
	Resolution Resolution     `json:"resolution,omitempty"`
}
