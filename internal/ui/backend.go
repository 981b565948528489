package ui

import (
	"github.com/dori/notetags/internal/app"
	"github.com/dori/notetags/internal/model"
)

// Backend is the data access the tag browser needs
type Backend interface {
	GetTagTree() ([]model.TagNode, error)
	DeleteTag(t *model.Tag) error
	CountLinkedNoteFileNames(t *model.Tag) (int, error)
	ActiveTagID() int64
	SetActiveTag(t *model.Tag) error
}

type appBackend struct {
	app *app.App
}

// NewAppBackend adapts an application instance to Backend
func NewAppBackend(a *app.App) Backend {
	return appBackend{app: a}
}

func (b appBackend) GetTagTree() ([]model.TagNode, error) {
	return b.app.DB.GetTagTree()
}

// DeleteTag also clears the active selection when it pointed into the
// deleted subtree
func (b appBackend) DeleteTag(t *model.Tag) error {
	activeID := b.app.ActiveTagID()
	inSubtree := activeID == t.ID
	if !inSubtree && activeID > 0 {
		var err error
		inSubtree, err = b.app.DB.HasChildTag(t.ID, activeID)
		if err != nil {
			return err
		}
	}

	if err := b.app.DB.DeleteTag(t); err != nil {
		return err
	}

	if inSubtree {
		return b.app.SetActiveTag(nil)
	}
	return nil
}

func (b appBackend) CountLinkedNoteFileNames(t *model.Tag) (int, error) {
	return b.app.CountLinkedNoteFileNames(t)
}

func (b appBackend) ActiveTagID() int64 {
	return b.app.ActiveTagID()
}

func (b appBackend) SetActiveTag(t *model.Tag) error {
	return b.app.SetActiveTag(t)
}
