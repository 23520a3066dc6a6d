package model

type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockListItem  BlockType = "list_item"
	BlockCode      BlockType = "code_block"
)

// Block is one segment of a document snapshot. Path is the tree
// position at segmentation time and is only meaningful against the
// snapshot it was computed from.
type Block struct {
	Type  BlockType         `json:"type"`
	Path  []int             `json:"path"`
	Text  string            `json:"text"`
	Attrs map[string]string `json:"attrs,omitempty"`
}
