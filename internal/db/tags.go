package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dori/notetags/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrTagNotFetched is returned when an operation needs a stored tag
	ErrTagNotFetched = errors.New("tag is not stored in the database")
	// ErrTagCycle is returned when a parent assignment would make a tag its
	// own ancestor
	ErrTagCycle = errors.New("tag parent would create a cycle")
)

const tagColumns = `id, name, priority, parent_id, color`

// GetTags returns all tags ordered by priority and name
func (db *DB) GetTags() ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	err := db.Select(&tags, `
		SELECT `+tagColumns+`
		FROM tag
		ORDER BY priority ASC, name ASC
	`)
	if err != nil {
		return nil, db.warn("GetTags", err)
	}
	return tags, nil
}

// GetChildTags returns the direct children of a tag, 0 for root tags
func (db *DB) GetChildTags(parentID int64) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	err := db.Select(&tags, `
		SELECT `+tagColumns+`
		FROM tag
		WHERE parent_id = ?
		ORDER BY priority ASC, name ASC
	`, parentID)
	if err != nil {
		return nil, db.warn("GetChildTags", err)
	}
	return tags, nil
}

// GetTag returns a single tag by ID
func (db *DB) GetTag(id int64) (*model.Tag, error) {
	var t model.Tag
	err := db.Get(&t, `SELECT `+tagColumns+` FROM tag WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, db.warn("GetTag", err)
	}
	return &t, nil
}

// GetTagByName returns the first tag whose name matches case-insensitively
func (db *DB) GetTagByName(name string) (*model.Tag, error) {
	var t model.Tag
	err := db.Get(&t, `
		SELECT `+tagColumns+`
		FROM tag WHERE LOWER(name) = LOWER(?)
		ORDER BY id LIMIT 1
	`, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, db.warn("GetTagByName", err)
	}
	return &t, nil
}

// GetTagByNameAndParent returns a tag by case-insensitive name below a parent
func (db *DB) GetTagByNameAndParent(name string, parentID int64) (*model.Tag, error) {
	var t model.Tag
	err := db.Get(&t, `
		SELECT `+tagColumns+`
		FROM tag WHERE LOWER(name) = LOWER(?) AND parent_id = ?
		ORDER BY id LIMIT 1
	`, name, parentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, db.warn("GetTagByNameAndParent", err)
	}
	return &t, nil
}

// GetTagNames returns all tag names in alphabetical order
func (db *DB) GetTagNames() ([]string, error) {
	names := make([]string, 0)
	if err := db.Select(&names, `SELECT name FROM tag ORDER BY name`); err != nil {
		return nil, db.warn("GetTagNames", err)
	}
	return names, nil
}

// CountTags returns the number of tags
func (db *DB) CountTags() (int, error) {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM tag`); err != nil {
		return 0, db.warn("CountTags", err)
	}
	return n, nil
}

// CountChildTags returns the number of direct children of a tag
func (db *DB) CountChildTags(parentID int64) (int, error) {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM tag WHERE parent_id = ?`, parentID); err != nil {
		return 0, db.warn("CountChildTags", err)
	}
	return n, nil
}

// HasChildTag reports whether candidateID is a descendant of tagID at any depth
func (db *DB) HasChildTag(tagID, candidateID int64) (bool, error) {
	ids, err := descendantIDs(db, tagID)
	if err != nil {
		return false, db.warn("HasChildTag", err)
	}
	for _, id := range ids {
		if id == candidateID {
			return true, nil
		}
	}
	return false, nil
}

// GetTagTree returns all tags depth-first, children after their parent.
// Tags whose parent is missing or part of a cycle are listed as roots.
func (db *DB) GetTagTree() ([]model.TagNode, error) {
	tags, err := db.GetTags()
	if err != nil {
		return nil, err
	}

	children := make(map[int64][]model.Tag)
	for _, t := range tags {
		children[t.ParentID] = append(children[t.ParentID], t)
	}

	nodes := make([]model.TagNode, 0, len(tags))
	visited := make(map[int64]bool, len(tags))

	var walk func(t model.Tag, depth int)
	walk = func(t model.Tag, depth int) {
		if visited[t.ID] {
			return
		}
		visited[t.ID] = true
		nodes = append(nodes, model.TagNode{Tag: t, Depth: depth})
		for _, c := range children[t.ID] {
			walk(c, depth+1)
		}
	}

	stored := make(map[int64]bool, len(tags))
	for _, t := range tags {
		stored[t.ID] = true
	}

	for _, t := range children[0] {
		walk(t, 0)
	}
	for _, t := range tags {
		if !t.IsRoot() && !stored[t.ParentID] {
			walk(t, 0)
		}
	}
	// only cycles are left
	for _, t := range tags {
		walk(t, 0)
	}

	return nodes, nil
}

// SaveTag inserts a new tag or updates an existing one. On insert the
// generated ID is assigned to t.
func (db *DB) SaveTag(t *model.Tag) error {
	t.Color = model.NormalizeColor(t.Color)

	if t.ID > 0 {
		if t.ParentID == t.ID {
			return ErrTagCycle
		}
		if t.ParentID > 0 {
			cyclic, err := db.HasChildTag(t.ID, t.ParentID)
			if err != nil {
				return err
			}
			if cyclic {
				return ErrTagCycle
			}
		}

		_, err := db.Exec(`
			UPDATE tag SET name = ?, priority = ?, parent_id = ?, color = ?
			WHERE id = ?
		`, t.Name, t.Priority, t.ParentID, t.Color, t.ID)
		return db.warn("SaveTag", err)
	}

	res, err := db.Exec(`
		INSERT INTO tag (name, priority, parent_id, color)
		VALUES (?, ?, ?, ?)
	`, t.Name, t.Priority, t.ParentID, t.Color)
	if err != nil {
		return db.warn("SaveTag", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return db.warn("SaveTag", err)
	}
	t.ID = id

	return nil
}

// GetOrCreateTag gets a tag by name below parentID or creates it
func (db *DB) GetOrCreateTag(name string, parentID int64) (*model.Tag, error) {
	tag, err := db.GetTagByNameAndParent(name, parentID)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	tag = model.NewTag(name, parentID)
	if err := db.SaveTag(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag deletes a tag, all of its descendants and every note link that
// references one of them. Either everything is removed or nothing is.
func (db *DB) DeleteTag(t *model.Tag) error {
	if !t.IsFetched() {
		return ErrTagNotFetched
	}

	err := db.Transaction(func(tx *sqlx.Tx) error {
		ids, err := descendantIDs(tx, t.ID)
		if err != nil {
			return fmt.Errorf("failed to collect child tags: %w", err)
		}
		ids = append(ids, t.ID)

		query, args, err := sqlx.In(`DELETE FROM tag WHERE id IN (?)`, ids)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to delete tags: %w", err)
		}

		query, args, err = sqlx.In(`DELETE FROM noteTagLink WHERE tag_id IN (?)`, ids)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to delete note links: %w", err)
		}

		db.log.Debug().Int64("tag_id", t.ID).Int("removed", len(ids)).Msg("tag deleted")
		return nil
	})

	return db.warn("DeleteTag", err)
}

// TagExists reports whether the tag is still present in the database
func (db *DB) TagExists(t *model.Tag) (bool, error) {
	if !t.IsFetched() {
		return false, nil
	}
	found, err := db.GetTag(t.ID)
	if err != nil {
		return false, err
	}
	return found.IsFetched(), nil
}

// descendantIDs returns the IDs of every tag below rootID, breadth first.
// Each level is fully read before the next query so it is safe on a single
// connection. Already seen IDs are skipped, so a cyclic parent graph
// terminates.
func descendantIDs(q sqlx.Queryer, rootID int64) ([]int64, error) {
	seen := map[int64]bool{rootID: true}
	var result []int64
	queue := []int64{rootID}

	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		var childIDs []int64
		if err := sqlx.Select(q, &childIDs, `SELECT id FROM tag WHERE parent_id = ? ORDER BY id`, parentID); err != nil {
			return nil, err
		}

		for _, id := range childIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			result = append(result, id)
			queue = append(queue, id)
		}
	}

	return result, nil
}
