package ui

import (
	"github.com/dori/notetags/internal/model"
)

// Messages for inter-component communication

// TagsLoadedMsg contains the tag tree and per-tag note counts
type TagsLoadedMsg struct {
	Nodes    []model.TagNode
	Counts   map[int64]int
	ActiveID int64
}

// TagDeletedMsg indicates a tag and its children were deleted
type TagDeletedMsg struct {
	Tag model.Tag
}

// ActiveTagChangedMsg indicates the active tag selection changed.
// A zero Tag means the selection was cleared.
type ActiveTagChangedMsg struct {
	Tag model.Tag
}

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}
