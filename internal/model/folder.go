package model

// NoteFolder holds the remembered selection state of one note folder
type NoteFolder struct {
	Name            string `mapstructure:"name" yaml:"name"`
	ActiveTagID     int64  `mapstructure:"active_tag_id" yaml:"active_tag_id"`
	ActiveSubFolder string `mapstructure:"active_sub_folder" yaml:"active_sub_folder"`
}

// HasActiveTag returns true if a tag is selected in this folder
func (f NoteFolder) HasActiveTag() bool {
	return f.ActiveTagID > 0
}
