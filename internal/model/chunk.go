package model

// Chunk is one transport unit of a document. StableID is a pure
// function of heading path and normalized content, never of position:
// recomputing it on identical content yields the same id, and a chunk
// that only moves keeps its id.
type Chunk struct {
	Ordinal     int      `json:"ordinal"`
	Content     string   `json:"content"`
	StableID    string   `json:"stable_id"`
	HeadingPath []string `json:"heading_path,omitempty"`
}

type EventType string

const (
	EventInitSnapshot EventType = "init_snapshot"
	EventChunkPatch   EventType = "chunk_patch"
	EventComplete     EventType = "complete"
)

type EventMeta struct {
	StableID     string   `json:"stable_id,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// SnapshotPayload declares the baseline revision and the ordered
// stable-id layout of the target document.
type SnapshotPayload struct {
	BaseRev  string   `json:"base_rev"`
	Manifest []string `json:"manifest"`
}

type ChunkPayload struct {
	Ordinal int    `json:"ordinal"`
	Content string `json:"content"`
}

// StreamEvent is one element of an emitted stream. Events are emitted
// in a total order but consumers must tolerate replay out of order.
type StreamEvent struct {
	Type     EventType        `json:"type"`
	Meta     EventMeta        `json:"meta"`
	Snapshot *SnapshotPayload `json:"snapshot,omitempty"`
	Chunk    *ChunkPayload    `json:"chunk,omitempty"`
}
