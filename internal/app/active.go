package app

import (
	"github.com/dori/notetags/internal/model"
)

// ActiveTagID returns the id of the active tag of the current note folder,
// 0 if there is none
func (a *App) ActiveTagID() int64 {
	return a.Settings.ActiveTagID(a.Config.NoteFolder)
}

// SetActiveTag remembers t as the active tag of the current note folder.
// A nil or unsaved tag clears the selection.
func (a *App) SetActiveTag(t *model.Tag) error {
	var id int64
	if t.IsFetched() {
		id = t.ID
	}
	if err := a.Settings.SetActiveTagID(a.Config.NoteFolder, id); err != nil {
		a.Log.Warn().Err(err).Int64("tag_id", id).Msg("failed to store active tag")
		return err
	}
	return nil
}

// IsActiveTag reports whether t is the active tag of the current note folder
func (a *App) IsActiveTag(t *model.Tag) bool {
	return t.IsFetched() && a.ActiveTagID() == t.ID
}

// ActiveTag returns the active tag, or nil if none is set or it was deleted
func (a *App) ActiveTag() (*model.Tag, error) {
	id := a.ActiveTagID()
	if id == 0 {
		return nil, nil
	}
	return a.DB.GetTag(id)
}

// ActiveSubFolder returns the subfolder that scopes link queries
func (a *App) ActiveSubFolder() string {
	return a.Settings.ActiveSubFolder(a.Config.NoteFolder)
}

// SetActiveSubFolder changes the subfolder that scopes link queries
func (a *App) SetActiveSubFolder(subFolder string) error {
	return a.Settings.SetActiveSubFolder(a.Config.NoteFolder, subFolder)
}

// RenameNoteFileNamesOfLinks renames link rows of a note in the active
// subfolder
func (a *App) RenameNoteFileNamesOfLinks(oldFileName, newFileName string) error {
	return a.DB.RenameNoteFileNamesOfLinks(oldFileName, newFileName, a.ActiveSubFolder())
}

// TagsLinkedToNoteNames returns the tags linked to any of the named notes in
// the active subfolder
func (a *App) TagsLinkedToNoteNames(fileNames []string) ([]model.Tag, error) {
	return a.DB.GetTagsLinkedToNoteNames(fileNames, a.ActiveSubFolder())
}

// LinkedNoteFileNames returns the notes of the active subfolder linked to t
func (a *App) LinkedNoteFileNames(t *model.Tag) ([]string, error) {
	return a.DB.GetLinkedNoteFileNames(t, a.ActiveSubFolder())
}

// CountLinkedNoteFileNames counts the notes of the active subfolder linked
// to t
func (a *App) CountLinkedNoteFileNames(t *model.Tag) (int, error) {
	return a.DB.CountLinkedNoteFileNames(t, a.ActiveSubFolder())
}
