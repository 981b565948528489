package db

import (
	"github.com/dori/notetags/internal/model"
	"github.com/jmoiron/sqlx"
)

// LinkTagToNote links a stored tag to a note. Linking twice is a no-op.
func (db *DB) LinkTagToNote(t *model.Tag, note model.Note) error {
	if !t.IsFetched() {
		return ErrTagNotFetched
	}

	_, err := db.Exec(`
		INSERT OR IGNORE INTO noteTagLink (tag_id, note_file_name, note_sub_folder_path)
		VALUES (?, ?, ?)
	`, t.ID, note.FileName, note.RelativeSubFolderPath())
	return db.warn("LinkTagToNote", err)
}

// UnlinkTagFromNote removes the link between a stored tag and a note.
// Removing a link that does not exist is not an error.
func (db *DB) UnlinkTagFromNote(t *model.Tag, note model.Note) error {
	if !t.IsFetched() {
		return ErrTagNotFetched
	}

	_, err := db.Exec(`
		DELETE FROM noteTagLink
		WHERE tag_id = ? AND note_file_name = ? AND note_sub_folder_path = ?
	`, t.ID, note.FileName, note.RelativeSubFolderPath())
	return db.warn("UnlinkTagFromNote", err)
}

// RemoveAllLinksToNote removes every tag link of a note
func (db *DB) RemoveAllLinksToNote(note model.Note) error {
	_, err := db.Exec(`
		DELETE FROM noteTagLink
		WHERE note_file_name = ? AND note_sub_folder_path = ?
	`, note.FileName, note.RelativeSubFolderPath())
	return db.warn("RemoveAllLinksToNote", err)
}

// RenameNoteFileNamesOfLinks points the links of a renamed note file in
// subFolder to its new name
func (db *DB) RenameNoteFileNamesOfLinks(oldFileName, newFileName, subFolder string) error {
	_, err := db.Exec(`
		UPDATE OR REPLACE noteTagLink SET note_file_name = ?
		WHERE note_file_name = ? AND note_sub_folder_path = ?
	`, newFileName, oldFileName, model.NormalizeSubFolderPath(subFolder))
	return db.warn("RenameNoteFileNamesOfLinks", err)
}

// GetNoteTags returns the tags linked to a note
func (db *DB) GetNoteTags(note model.Note) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	err := db.Select(&tags, `
		SELECT t.id, t.name, t.priority, t.parent_id, t.color
		FROM tag t
		JOIN noteTagLink l ON t.id = l.tag_id
		WHERE l.note_file_name = ? AND l.note_sub_folder_path = ?
		ORDER BY t.priority ASC, t.name ASC
	`, note.FileName, note.RelativeSubFolderPath())
	if err != nil {
		return nil, db.warn("GetNoteTags", err)
	}
	return tags, nil
}

// GetNoteTagWithColor returns the first linked tag of a note that has a
// valid color, or nil
func (db *DB) GetNoteTagWithColor(note model.Note) (*model.Tag, error) {
	tags, err := db.GetNoteTags(note)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if tags[i].HasColor() {
			return &tags[i], nil
		}
	}
	return nil, nil
}

// CountNoteTags returns the number of tags linked to a note
func (db *DB) CountNoteTags(note model.Note) (int, error) {
	var n int
	err := db.Get(&n, `
		SELECT COUNT(*) FROM noteTagLink
		WHERE note_file_name = ? AND note_sub_folder_path = ?
	`, note.FileName, note.RelativeSubFolderPath())
	if err != nil {
		return 0, db.warn("CountNoteTags", err)
	}
	return n, nil
}

// IsTagLinkedToNote reports whether a tag is linked to a note
func (db *DB) IsTagLinkedToNote(t *model.Tag, note model.Note) (bool, error) {
	if !t.IsFetched() {
		return false, nil
	}

	var n int
	err := db.Get(&n, `
		SELECT COUNT(*) FROM noteTagLink
		WHERE tag_id = ? AND note_file_name = ? AND note_sub_folder_path = ?
	`, t.ID, note.FileName, note.RelativeSubFolderPath())
	if err != nil {
		return false, db.warn("IsTagLinkedToNote", err)
	}
	return n > 0, nil
}

// GetTagsLinkedToNoteNames returns the distinct tags linked to any of the
// given note file names in subFolder
func (db *DB) GetTagsLinkedToNoteNames(fileNames []string, subFolder string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	if len(fileNames) == 0 {
		return tags, nil
	}

	query, args, err := sqlx.In(`
		SELECT t.id, t.name, t.priority, t.parent_id, t.color
		FROM tag t
		JOIN noteTagLink l ON t.id = l.tag_id
		WHERE l.note_file_name IN (?) AND l.note_sub_folder_path = ?
		GROUP BY t.id
		ORDER BY t.priority ASC, t.name ASC
	`, fileNames, model.NormalizeSubFolderPath(subFolder))
	if err != nil {
		return nil, db.warn("GetTagsLinkedToNoteNames", err)
	}

	if err := db.Select(&tags, db.Rebind(query), args...); err != nil {
		return nil, db.warn("GetTagsLinkedToNoteNames", err)
	}
	return tags, nil
}

// GetLinkedNoteFileNames returns the file names of the notes in subFolder
// that are linked to a tag
func (db *DB) GetLinkedNoteFileNames(t *model.Tag, subFolder string) ([]string, error) {
	names := make([]string, 0)
	if !t.IsFetched() {
		return names, nil
	}
	err := db.Select(&names, `
		SELECT note_file_name FROM noteTagLink
		WHERE tag_id = ? AND note_sub_folder_path = ?
		ORDER BY note_file_name
	`, t.ID, model.NormalizeSubFolderPath(subFolder))
	if err != nil {
		return nil, db.warn("GetLinkedNoteFileNames", err)
	}
	return names, nil
}

// CountLinkedNoteFileNames returns the number of notes in subFolder that are
// linked to a tag
func (db *DB) CountLinkedNoteFileNames(t *model.Tag, subFolder string) (int, error) {
	if !t.IsFetched() {
		return 0, nil
	}

	var n int
	err := db.Get(&n, `
		SELECT COUNT(note_file_name) FROM noteTagLink
		WHERE tag_id = ? AND note_sub_folder_path = ?
	`, t.ID, model.NormalizeSubFolderPath(subFolder))
	if err != nil {
		return 0, db.warn("CountLinkedNoteFileNames", err)
	}
	return n, nil
}

// ConvertDirSeparator rewrites backslashes in stored subfolder paths to
// forward slashes and returns the number of rows changed
func (db *DB) ConvertDirSeparator() (int64, error) {
	res, err := db.Exec(`
		UPDATE OR REPLACE noteTagLink
		SET note_sub_folder_path = REPLACE(note_sub_folder_path, '\', '/')
		WHERE note_sub_folder_path LIKE '%\%'
	`)
	if err != nil {
		return 0, db.warn("ConvertDirSeparator", err)
	}
	return res.RowsAffected()
}
