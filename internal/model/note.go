package model

import (
	"path"
	"path/filepath"
	"strings"
)

// Note identifies a note file inside a note folder. Notes have no numeric id;
// the file name plus the subfolder path is the identity used by tag links.
type Note struct {
	FileName      string `json:"file_name"`
	SubFolderPath string `json:"sub_folder_path"`
}

// NewNote builds a note from a path relative to the note folder root,
// e.g. "projects/work/todo.md"
func NewNote(relPath string) Note {
	p := filepath.ToSlash(relPath)
	p = strings.Trim(p, "/")
	dir, file := path.Split(p)
	return Note{
		FileName:      file,
		SubFolderPath: strings.TrimSuffix(dir, "/"),
	}
}

// RelativeSubFolderPath returns the subfolder path with forward slashes
func (n Note) RelativeSubFolderPath() string {
	return NormalizeSubFolderPath(n.SubFolderPath)
}

// RelativePath returns the note path relative to the note folder root
func (n Note) RelativePath() string {
	sub := n.RelativeSubFolderPath()
	if sub == "" {
		return n.FileName
	}
	return sub + "/" + n.FileName
}

// NormalizeSubFolderPath converts backslashes to slashes and strips leading
// and trailing separators
func NormalizeSubFolderPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.Trim(p, "/")
}
