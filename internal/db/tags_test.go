package db

import (
	"testing"

	"github.com/dori/notetags/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveTagRoundTrip(t *testing.T) {
	db := openTestDB(t)

	parent := mustSaveTag(t, db, "Projects", 0, 0)
	tag := &model.Tag{Name: "Work", Priority: 3, ParentID: parent.ID, Color: "#FF8800"}
	require.NoError(t, db.SaveTag(tag))

	got, err := db.GetTag(tag.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *tag, *got)
	assert.Equal(t, "#ff8800", got.Color)
}

func TestSaveTagUpdatesExisting(t *testing.T) {
	db := openTestDB(t)

	tag := mustSaveTag(t, db, "Draft", 0, 0)
	id := tag.ID

	tag.Name = "Final"
	tag.Priority = 7
	tag.Color = "#abc"
	require.NoError(t, db.SaveTag(tag))
	assert.Equal(t, id, tag.ID)

	got, err := db.GetTag(id)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Name)
	assert.Equal(t, 7, got.Priority)
	assert.Equal(t, "#aabbcc", got.Color)

	n, err := db.CountTags()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveTagDropsInvalidColor(t *testing.T) {
	db := openTestDB(t)

	tag := &model.Tag{Name: "x", Color: "not-a-color"}
	require.NoError(t, db.SaveTag(tag))

	got, err := db.GetTag(tag.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Color)
	assert.False(t, got.HasColor())
}

func TestInMemoryChangesNeedSave(t *testing.T) {
	db := openTestDB(t)

	tag := mustSaveTag(t, db, "Original", 0, 0)
	tag.Name = "Changed"

	got, err := db.GetTag(tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Name)
}

func TestGetTagNotFound(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetTag(42)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = db.GetTagByName("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetTagByNameIsCaseInsensitive(t *testing.T) {
	db := openTestDB(t)

	tag := mustSaveTag(t, db, "Work", 0, 0)

	for _, name := range []string{"Work", "work", "WORK", "wOrK"} {
		got, err := db.GetTagByName(name)
		require.NoError(t, err)
		require.NotNil(t, got, name)
		assert.Equal(t, tag.ID, got.ID, name)
	}
}

func TestGetTagByNameAndParent(t *testing.T) {
	db := openTestDB(t)

	home := mustSaveTag(t, db, "Home", 0, 0)
	office := mustSaveTag(t, db, "Office", 0, 0)
	homeTodo := mustSaveTag(t, db, "Todo", 0, home.ID)
	officeTodo := mustSaveTag(t, db, "Todo", 0, office.ID)

	got, err := db.GetTagByNameAndParent("todo", home.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, homeTodo.ID, got.ID)

	got, err = db.GetTagByNameAndParent("TODO", office.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, officeTodo.ID, got.ID)

	got, err = db.GetTagByNameAndParent("todo", 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetOrCreateTag(t *testing.T) {
	db := openTestDB(t)

	first, err := db.GetOrCreateTag("Inbox", 0)
	require.NoError(t, err)
	require.True(t, first.IsFetched())

	second, err := db.GetOrCreateTag("inbox", 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	n, err := db.CountTags()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNonASCIINameLookup(t *testing.T) {
	db := openTestDB(t)

	tag := mustSaveTag(t, db, "Ärger", 0, 0)

	got, err := db.GetTagByName("Ärger")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tag.ID, got.ID)

	got, err = db.GetTagByName("ärger")
	require.NoError(t, err)
	if got != nil {
		assert.Equal(t, tag.ID, got.ID)
	}

	for i := 0; i < 2; i++ {
		again, err := db.GetOrCreateTag("Ärger", 0)
		require.NoError(t, err)
		assert.Equal(t, tag.ID, again.ID)
	}

	n, err := db.CountTags()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTagOrdering(t *testing.T) {
	db := openTestDB(t)

	parent := mustSaveTag(t, db, "parent", 5, 0)
	mustSaveTag(t, db, "beta", 1, 0)
	mustSaveTag(t, db, "alpha", 1, 0)
	mustSaveTag(t, db, "zulu", 0, 0)
	mustSaveTag(t, db, "c", 2, parent.ID)
	mustSaveTag(t, db, "b", 0, parent.ID)
	mustSaveTag(t, db, "a", 2, parent.ID)

	tags, err := db.GetTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "zulu", "alpha", "beta", "a", "c", "parent"}, names(tags))
	assertOrdered(t, tags)

	children, err := db.GetChildTags(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, names(children))

	roots, err := db.GetChildTags(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"zulu", "alpha", "beta", "parent"}, names(roots))
}

func TestCounts(t *testing.T) {
	db := openTestDB(t)

	n, err := db.CountTags()
	require.NoError(t, err)
	assert.Zero(t, n)

	parent := mustSaveTag(t, db, "p", 0, 0)
	mustSaveTag(t, db, "c1", 0, parent.ID)
	mustSaveTag(t, db, "c2", 0, parent.ID)

	n, err = db.CountTags()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = db.CountChildTags(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = db.CountChildTags(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetTagNames(t *testing.T) {
	db := openTestDB(t)

	names, err := db.GetTagNames()
	require.NoError(t, err)
	assert.Empty(t, names)

	mustSaveTag(t, db, "pear", 0, 0)
	mustSaveTag(t, db, "apple", 9, 0)
	mustSaveTag(t, db, "fig", 1, 0)

	names, err = db.GetTagNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "fig", "pear"}, names)
}

func TestHasChildTag(t *testing.T) {
	db := openTestDB(t)

	a := mustSaveTag(t, db, "a", 0, 0)
	b := mustSaveTag(t, db, "b", 0, a.ID)
	c := mustSaveTag(t, db, "c", 0, b.ID)
	d := mustSaveTag(t, db, "d", 0, c.ID)
	other := mustSaveTag(t, db, "other", 0, 0)

	for _, id := range []int64{b.ID, c.ID, d.ID} {
		ok, err := db.HasChildTag(a.ID, id)
		require.NoError(t, err)
		assert.True(t, ok, "a should have descendant %d", id)
	}

	for _, id := range []int64{a.ID, other.ID} {
		ok, err := db.HasChildTag(a.ID, id)
		require.NoError(t, err)
		assert.False(t, ok, "a should not have descendant %d", id)
	}

	ok, err := db.HasChildTag(d.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasChildTagTerminatesOnCycle(t *testing.T) {
	db := openTestDB(t)

	a := mustSaveTag(t, db, "a", 0, 0)
	b := mustSaveTag(t, db, "b", 0, a.ID)

	// Bypass SaveTag's guard to build a cycle a -> b -> a
	_, err := db.Exec(`UPDATE tag SET parent_id = ? WHERE id = ?`, b.ID, a.ID)
	require.NoError(t, err)

	ok, err := db.HasChildTag(a.ID, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.HasChildTag(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSaveTagRejectsCycle(t *testing.T) {
	db := openTestDB(t)

	a := mustSaveTag(t, db, "a", 0, 0)
	b := mustSaveTag(t, db, "b", 0, a.ID)
	c := mustSaveTag(t, db, "c", 0, b.ID)

	a.ParentID = a.ID
	assert.ErrorIs(t, db.SaveTag(a), ErrTagCycle)

	a.ParentID = c.ID
	assert.ErrorIs(t, db.SaveTag(a), ErrTagCycle)

	got, err := db.GetTag(a.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ParentID)

	// Moving a leaf under a sibling branch is fine
	other := mustSaveTag(t, db, "other", 0, 0)
	c.ParentID = other.ID
	assert.NoError(t, db.SaveTag(c))
}

func TestSaveTagAcceptsMissingParent(t *testing.T) {
	db := openTestDB(t)

	orphan := mustSaveTag(t, db, "orphan", 0, 12345)

	children, err := db.GetChildTags(orphan.ID)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestDeleteTagCascades(t *testing.T) {
	db := openTestDB(t)

	a := mustSaveTag(t, db, "A", 0, 0)
	b := mustSaveTag(t, db, "B", 0, a.ID)
	c := mustSaveTag(t, db, "C", 0, b.ID)
	keep := mustSaveTag(t, db, "Keep", 0, 0)

	notes := []model.Note{
		{FileName: "a.md"},
		{FileName: "b.md", SubFolderPath: "sub"},
		{FileName: "c.md", SubFolderPath: "sub/deeper"},
	}
	for i, tag := range []*model.Tag{a, b, c} {
		require.NoError(t, db.LinkTagToNote(tag, notes[i]))
	}
	require.NoError(t, db.LinkTagToNote(keep, notes[0]))

	require.NoError(t, db.DeleteTag(a))

	for _, tag := range []*model.Tag{a, b, c} {
		exists, err := db.TagExists(tag)
		require.NoError(t, err)
		assert.False(t, exists, tag.Name)
	}

	var links int
	require.NoError(t, db.Get(&links, `SELECT COUNT(*) FROM noteTagLink WHERE tag_id IN (?, ?, ?)`, a.ID, b.ID, c.ID))
	assert.Zero(t, links)

	exists, err := db.TagExists(keep)
	require.NoError(t, err)
	assert.True(t, exists)

	linked, err := db.IsTagLinkedToNote(keep, notes[0])
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestDeleteTagRollsBackOnFailure(t *testing.T) {
	db := openTestDB(t)

	a := mustSaveTag(t, db, "A", 0, 0)
	b := mustSaveTag(t, db, "B", 0, a.ID)
	note := model.Note{FileName: "n.md"}
	require.NoError(t, db.LinkTagToNote(b, note))

	// Make the link cleanup fail after the tag rows are gone
	_, err := db.Exec(`
		CREATE TRIGGER fail_link_delete BEFORE DELETE ON noteTagLink
		BEGIN SELECT RAISE(ABORT, 'link delete blocked'); END
	`)
	require.NoError(t, err)

	assert.Error(t, db.DeleteTag(a))

	for _, tag := range []*model.Tag{a, b} {
		exists, err := db.TagExists(tag)
		require.NoError(t, err)
		assert.True(t, exists, tag.Name)
	}

	linked, err := db.IsTagLinkedToNote(b, note)
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestDeleteTagRequiresStoredTag(t *testing.T) {
	db := openTestDB(t)

	root := mustSaveTag(t, db, "root", 0, 0)

	assert.ErrorIs(t, db.DeleteTag(&model.Tag{Name: "unsaved"}), ErrTagNotFetched)
	assert.ErrorIs(t, db.DeleteTag(nil), ErrTagNotFetched)

	exists, err := db.TagExists(root)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTagExists(t *testing.T) {
	db := openTestDB(t)

	exists, err := db.TagExists(&model.Tag{})
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = db.TagExists(&model.Tag{ID: 77})
	require.NoError(t, err)
	assert.False(t, exists)

	tag := mustSaveTag(t, db, "t", 0, 0)
	exists, err = db.TagExists(tag)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetTagTree(t *testing.T) {
	db := openTestDB(t)

	home := mustSaveTag(t, db, "Home", 1, 0)
	work := mustSaveTag(t, db, "Work", 0, 0)
	mustSaveTag(t, db, "Garden", 0, home.ID)
	meetings := mustSaveTag(t, db, "Meetings", 0, work.ID)
	mustSaveTag(t, db, "Weekly", 0, meetings.ID)
	mustSaveTag(t, db, "Lost", 0, 9999)
	zoo := mustSaveTag(t, db, "Zoo", 0, 9999)
	mustSaveTag(t, db, "Ant", 0, zoo.ID)

	nodes, err := db.GetTagTree()
	require.NoError(t, err)

	var got []string
	var depths []int
	for _, n := range nodes {
		got = append(got, n.Name)
		depths = append(depths, n.Depth)
	}
	assert.Equal(t, []string{"Work", "Meetings", "Weekly", "Home", "Garden", "Lost", "Zoo", "Ant"}, got)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 0, 0, 1}, depths)
}

// Scenario: two tags, a link on the child, then removing the parent
func TestParentChildLinkScenario(t *testing.T) {
	db := openTestDB(t)

	home := mustSaveTag(t, db, "Home", 0, 0)
	sub := mustSaveTag(t, db, "Home/Sub", 0, home.ID)

	note := model.Note{FileName: "todo.md"}
	require.NoError(t, db.LinkTagToNote(sub, note))

	tags, err := db.GetNoteTags(note)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, sub.ID, tags[0].ID)

	fetched, err := db.GetTag(home.ID)
	require.NoError(t, err)
	require.NoError(t, db.DeleteTag(fetched))

	n, err := db.CountTags()
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = db.CountNoteTags(note)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func names(tags []model.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func assertOrdered(t *testing.T, tags []model.Tag) {
	t.Helper()
	for i := 1; i < len(tags); i++ {
		prev, cur := tags[i-1], tags[i]
		ok := prev.Priority < cur.Priority || (prev.Priority == cur.Priority && prev.Name <= cur.Name)
		assert.True(t, ok, "%s (%d) listed before %s (%d)", prev.Name, prev.Priority, cur.Name, cur.Priority)
	}
}
