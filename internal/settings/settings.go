// Package settings persists the per note folder selection state: the active
// tag and the active subfolder.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dori/notetags/internal/model"
	"github.com/spf13/viper"
)

// Folder names may contain dots, so keys use a delimiter that paths can't
const keyDelim = "::"

// Store reads and writes note folder settings in a YAML file
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open loads the settings file at path. A missing file yields empty settings;
// it is created on the first write.
func Open(path string) (*Store, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat settings: %w", err)
	}

	return &Store{v: v, path: path}, nil
}

// Path returns the settings file location
func (s *Store) Path() string {
	return s.path
}

// Folder returns the settings of a note folder. Unknown folders have no
// active tag and the root as active subfolder.
func (s *Store) Folder(name string) model.NoteFolder {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.NoteFolder{
		Name:            name,
		ActiveTagID:     s.v.GetInt64(key(name, "active_tag_id")),
		ActiveSubFolder: s.v.GetString(key(name, "active_sub_folder")),
	}
}

// ActiveTagID returns the active tag of a note folder, 0 if none
func (s *Store) ActiveTagID(folder string) int64 {
	return s.Folder(folder).ActiveTagID
}

// SetActiveTagID stores the active tag of a note folder; 0 clears it
func (s *Store) SetActiveTagID(folder string, id int64) error {
	if id < 0 {
		id = 0
	}
	return s.set(folder, "active_tag_id", id)
}

// ActiveSubFolder returns the relative path of the active subfolder
func (s *Store) ActiveSubFolder(folder string) string {
	return s.Folder(folder).ActiveSubFolder
}

// SetActiveSubFolder stores the active subfolder of a note folder
func (s *Store) SetActiveSubFolder(folder, subFolder string) error {
	return s.set(folder, "active_sub_folder", model.NormalizeSubFolderPath(subFolder))
}

func (s *Store) set(folder, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(key(folder, field), value)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func key(folder, field string) string {
	if folder == "" {
		folder = "default"
	}
	folder = strings.ReplaceAll(folder, keyDelim, "_")
	return strings.Join([]string{"folders", folder, field}, keyDelim)
}
