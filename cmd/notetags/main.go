package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/notetags/internal/app"
	"github.com/dori/notetags/internal/config"
	"github.com/dori/notetags/internal/ui"
	"github.com/dori/notetags/internal/ui/theme"
)

var (
	version = "0.1.0"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return runTUI(nil)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "tui":
		return runTUI(rest)
	case "version":
		fmt.Fprintf(out, "notetags v%s\n", version)
		return nil
	case "help", "-h", "--help":
		printHelp(out)
		return nil
	}

	handler, ok := commands[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q (see `notetags help`)", cmd)
	}

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	open := app.OpenShared
	if handler.writes {
		open = app.New
	}
	application, err := open(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	return handler.run(application, rest, out)
}

func printHelp(out io.Writer) {
	help := `notetags - hierarchical tags for a note folder

Usage:
  notetags                              Start the tag browser
  notetags list                         Show the tag tree
  notetags names                        List tag names alphabetically
  notetags add <name> [flags]           Create a tag
      -parent <id>  -priority <n>  -color <#rrggbb>
  notetags edit <id> [flags]            Change a tag
      -name <name>  -parent <id>  -priority <n>  -color <#rrggbb|none>
  notetags rm <id>                      Delete a tag, its children and links
  notetags link <id> <note>             Link a tag to a note
  notetags unlink <id> <note>           Remove a link
  notetags unlink-all <note>            Remove all links of a note
  notetags note <note>                  Show the tags of a note
  notetags notes <id>                   Notes in the active subfolder with a tag
  notetags tagged <file>...             Tags of any of the named notes
  notetags rename-links <old> <new>     Follow a note file rename
  notetags fix-separators               Rewrite '\' in stored subfolder paths
                                        (also done whenever the database opens)
  notetags active [<id>|none]           Show or set the active tag
  notetags subfolder [<path>]           Show or set the active subfolder
  notetags version                      Show version

Notes are given relative to the note folder, e.g. projects/work/todo.md.
Files for 'tagged' and 'rename-links' are names inside the active subfolder.

Environment:
  NOTETAGS_DATA_DIR     Data directory (default ~/.local/share/notetags)
  NOTETAGS_NOTE_FOLDER  Note folder whose settings are used
  NOTETAGS_LOG_LEVEL    debug, info, warn, error`

	fmt.Fprintln(out, help)
}

func runTUI(args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	themeName := cfg.Theme
	if len(args) > 0 {
		themeName = args[0]
	}
	if t, ok := theme.ByName(themeName); ok {
		theme.SetTheme(t)
	}

	// The browser owns the terminal, so never log to stderr
	if cfg.LogPath() == "" {
		cfg.Log.File = "notetags.log"
	}

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	model := ui.NewRootModel(ui.NewAppBackend(application), cfg.NoteFolder)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
