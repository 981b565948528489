package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dori/notetags/internal/app"
	"github.com/dori/notetags/internal/model"
)

type command struct {
	writes bool
	run    func(a *app.App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"list":           {run: cmdList},
	"names":          {run: cmdNames},
	"add":            {writes: true, run: cmdAdd},
	"edit":           {writes: true, run: cmdEdit},
	"rm":             {writes: true, run: cmdRemove},
	"link":           {writes: true, run: cmdLink},
	"unlink":         {writes: true, run: cmdUnlink},
	"unlink-all":     {writes: true, run: cmdUnlinkAll},
	"note":           {run: cmdNote},
	"notes":          {run: cmdNotes},
	"tagged":         {run: cmdTagged},
	"rename-links":   {writes: true, run: cmdRenameLinks},
	"fix-separators": {writes: true, run: cmdFixSeparators},
	"active":         {writes: true, run: cmdActive},
	"subfolder":      {writes: true, run: cmdSubFolder},
}

func cmdList(a *app.App, args []string, out io.Writer) error {
	nodes, err := a.DB.GetTagTree()
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		fmt.Fprintln(out, "No tags")
		return nil
	}

	activeID := a.ActiveTagID()
	for _, n := range nodes {
		marker := " "
		if n.ID == activeID {
			marker = "*"
		}
		line := fmt.Sprintf("%s %4d  %s%s", marker, n.ID, strings.Repeat("  ", n.Depth), n.Name)
		if n.Priority != 0 {
			line += fmt.Sprintf("  !%d", n.Priority)
		}
		if n.Color != "" {
			line += "  " + n.Color
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func cmdNames(a *app.App, args []string, out io.Writer) error {
	names, err := a.DB.GetTagNames()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

func cmdAdd(a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	parent := fs.Int64("parent", 0, "parent tag id")
	priority := fs.Int("priority", 0, "sort priority")
	color := fs.String("color", "", "color as #rrggbb")

	name, err := parseWithLeadingArg(fs, args)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("usage: notetags add <name> [-parent id] [-priority n] [-color #rrggbb]")
	}
	if *color != "" {
		if _, ok := model.ParseColor(*color); !ok {
			return fmt.Errorf("invalid color %q", *color)
		}
	}
	if err := checkParent(a, *parent); err != nil {
		return err
	}

	tag := &model.Tag{Name: name, Priority: *priority, ParentID: *parent, Color: *color}
	if err := a.DB.SaveTag(tag); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created: %s (id %d)\n", tag.Name, tag.ID)
	return nil
}

func cmdEdit(a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "new name")
	parent := fs.Int64("parent", -1, "new parent tag id, 0 for root")
	priority := fs.Int("priority", 0, "new sort priority")
	color := fs.String("color", "", "new color as #rrggbb, or none")

	idArg, err := parseWithLeadingArg(fs, args)
	if err != nil {
		return err
	}
	tag, err := fetchTag(a, idArg)
	if err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["name"] {
		tag.Name = *name
	}
	if set["parent"] {
		if err := checkParent(a, *parent); err != nil {
			return err
		}
		tag.ParentID = *parent
	}
	if set["priority"] {
		tag.Priority = *priority
	}
	if set["color"] {
		switch {
		case *color == "none":
			tag.Color = ""
		default:
			if _, ok := model.ParseColor(*color); !ok {
				return fmt.Errorf("invalid color %q", *color)
			}
			tag.Color = *color
		}
	}

	if err := a.DB.SaveTag(tag); err != nil {
		return err
	}

	fmt.Fprintf(out, "Updated: %s\n", tag)
	return nil
}

func cmdRemove(a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: notetags rm <id>")
	}
	tag, err := fetchTag(a, args[0])
	if err != nil {
		return err
	}

	if err := a.DB.DeleteTag(tag); err != nil {
		return err
	}

	// Clear the active tag if it was removed with the subtree
	if a.ActiveTagID() != 0 {
		active, err := a.ActiveTag()
		if err != nil {
			return err
		}
		if active == nil {
			if err := a.SetActiveTag(nil); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(out, "Deleted: %s\n", tag.Name)
	return nil
}

func cmdLink(a *app.App, args []string, out io.Writer) error {
	tag, note, err := tagAndNote(a, args, "link")
	if err != nil {
		return err
	}
	if err := a.DB.LinkTagToNote(tag, note); err != nil {
		return err
	}
	fmt.Fprintf(out, "Linked %s to %s\n", tag.Name, note.RelativePath())
	return nil
}

func cmdUnlink(a *app.App, args []string, out io.Writer) error {
	tag, note, err := tagAndNote(a, args, "unlink")
	if err != nil {
		return err
	}
	if err := a.DB.UnlinkTagFromNote(tag, note); err != nil {
		return err
	}
	fmt.Fprintf(out, "Unlinked %s from %s\n", tag.Name, note.RelativePath())
	return nil
}

func cmdUnlinkAll(a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: notetags unlink-all <note>")
	}
	note := model.NewNote(args[0])
	if err := a.DB.RemoveAllLinksToNote(note); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed all tags from %s\n", note.RelativePath())
	return nil
}

func cmdNote(a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: notetags note <note>")
	}
	note := model.NewNote(args[0])

	tags, err := a.DB.GetNoteTags(note)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Fprintf(out, "%s has no tags\n", note.RelativePath())
		return nil
	}

	colored, err := a.DB.GetNoteTagWithColor(note)
	if err != nil {
		return err
	}

	for _, t := range tags {
		line := fmt.Sprintf("%4d  %s", t.ID, t.Name)
		if colored != nil && colored.ID == t.ID {
			line += "  " + t.Color + " (note color)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func cmdNotes(a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: notetags notes <id>")
	}
	tag, err := fetchTag(a, args[0])
	if err != nil {
		return err
	}

	files, err := a.LinkedNoteFileNames(tag)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(out, f)
	}

	n, err := a.CountLinkedNoteFileNames(tag)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d notes tagged %s in /%s\n", n, tag.Name, a.ActiveSubFolder())
	return nil
}

func cmdTagged(a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: notetags tagged <file>...")
	}
	tags, err := a.TagsLinkedToNoteNames(args)
	if err != nil {
		return err
	}
	for _, t := range tags {
		fmt.Fprintf(out, "%4d  %s\n", t.ID, t.Name)
	}
	return nil
}

func cmdRenameLinks(a *app.App, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("usage: notetags rename-links <old> <new>")
	}
	if err := a.RenameNoteFileNamesOfLinks(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Renamed links %s -> %s\n", args[0], args[1])
	return nil
}

func cmdFixSeparators(a *app.App, args []string, out io.Writer) error {
	n, err := a.DB.ConvertDirSeparator()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Converted %d link paths\n", n)
	return nil
}

func cmdActive(a *app.App, args []string, out io.Writer) error {
	switch {
	case len(args) == 0:
		tag, err := a.ActiveTag()
		if err != nil {
			return err
		}
		if tag == nil {
			fmt.Fprintln(out, "No active tag")
			return nil
		}
		fmt.Fprintf(out, "%d  %s\n", tag.ID, tag.Name)
		return nil

	case args[0] == "none":
		if err := a.SetActiveTag(nil); err != nil {
			return err
		}
		fmt.Fprintln(out, "Active tag cleared")
		return nil

	default:
		tag, err := fetchTag(a, args[0])
		if err != nil {
			return err
		}
		if err := a.SetActiveTag(tag); err != nil {
			return err
		}
		fmt.Fprintf(out, "Active tag: %s\n", tag.Name)
		return nil
	}
}

func cmdSubFolder(a *app.App, args []string, out io.Writer) error {
	if len(args) > 0 {
		if err := a.SetActiveSubFolder(args[0]); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "/%s\n", a.ActiveSubFolder())
	return nil
}

// parseWithLeadingArg parses flags that follow one positional argument, as in
// `add <name> -parent 3`, and returns the positional argument
func parseWithLeadingArg(fs *flag.FlagSet, args []string) (string, error) {
	var positional string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	rest := fs.Args()
	if positional == "" && len(rest) > 0 {
		positional, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return "", fmt.Errorf("%s: unexpected argument %q", fs.Name(), rest[0])
	}
	return positional, nil
}

func fetchTag(a *app.App, idArg string) (*model.Tag, error) {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid tag id %q", idArg)
	}
	tag, err := a.DB.GetTag(id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("tag %d not found", id)
	}
	return tag, nil
}

func checkParent(a *app.App, parentID int64) error {
	if parentID == 0 {
		return nil
	}
	parent, err := a.DB.GetTag(parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("parent tag %d not found", parentID)
	}
	return nil
}

func tagAndNote(a *app.App, args []string, name string) (*model.Tag, model.Note, error) {
	if len(args) != 2 {
		return nil, model.Note{}, fmt.Errorf("usage: notetags %s <id> <note>", name)
	}
	tag, err := fetchTag(a, args[0])
	if err != nil {
		return nil, model.Note{}, err
	}
	return tag, model.NewNote(args[1]), nil
}
