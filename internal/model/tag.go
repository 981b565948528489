package model

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Tag represents a hierarchical label that can be attached to notes
type Tag struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Priority int    `db:"priority" json:"priority"`
	ParentID int64  `db:"parent_id" json:"parent_id"`
	Color    string `db:"color" json:"color,omitempty"`
}

// NewTag returns an unsaved tag
func NewTag(name string, parentID int64) *Tag {
	return &Tag{Name: name, ParentID: parentID}
}

// IsFetched returns true if the tag was stored or loaded from the database
func (t *Tag) IsFetched() bool {
	return t != nil && t.ID > 0
}

// IsRoot returns true if the tag has no parent
func (t *Tag) IsRoot() bool {
	return t.ParentID == 0
}

// HasColor returns true if the tag carries a parseable color
func (t *Tag) HasColor() bool {
	_, ok := ParseColor(t.Color)
	return ok
}

func (t Tag) String() string {
	return fmt.Sprintf("Tag: <id>%d <name>%s <parentId>%d", t.ID, t.Name, t.ParentID)
}

// ParseColor parses a #rgb or #rrggbb color and returns it in lowercase
// #rrggbb form
func ParseColor(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return "", false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", false
	}
	return c.Hex(), true
}

// NormalizeColor returns the stored form of a color: normalized hex, or ""
// for anything that does not parse
func NormalizeColor(s string) string {
	c, _ := ParseColor(s)
	return c
}

// TagNode is a tag positioned in the tag tree
type TagNode struct {
	Tag
	Depth int
}
