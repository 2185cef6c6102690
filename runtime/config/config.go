// Package config loads texstack settings from a TOML file and watches the
// file for changes.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml"

	"github.com/aledsdavies/texstack/core/engine"
	"github.com/aledsdavies/texstack/core/invariant"
	"github.com/aledsdavies/texstack/runtime/interp"
	"github.com/aledsdavies/texstack/runtime/keymap"
)

// Settings is the contents of the settings file.
type Settings struct {
	UndoDepth        int      `toml:"undo_depth" default:"100"`
	Autoparenthesize bool     `toml:"autoparenthesize" default:"true"`
	Debug            bool     `toml:"debug"`
	Keymap           string   `toml:"keymap"`
	EngineCommand    []string `toml:"engine_command"`
	HistoryFile      string   `toml:"history_file"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		UndoDepth:        100,
		Autoparenthesize: true,
	}
}

// DefaultPath returns ~/.config/texstack/settings.toml, or "" when the
// config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "texstack", "settings.toml")
}

// Parse decodes settings from TOML. Keys that are absent keep their
// defaults.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads the settings file at path. A missing file yields the
// defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	if s.UndoDepth < 2 {
		return fmt.Errorf("settings: undo_depth must be at least 2, got %d", s.UndoDepth)
	}
	for _, arg := range s.EngineCommand {
		if arg == "" {
			return fmt.Errorf("settings: engine_command has an empty argument")
		}
	}
	return nil
}

// InterpreterOptions turns the settings into interpreter options, logging
// to logOutput. An engine is configured only when engine_command is set.
func (s Settings) InterpreterOptions(logOutput io.Writer) interp.Options {
	opts := interp.DefaultOptions()
	opts.UndoDepth = s.UndoDepth
	opts.Autoparenthesize = s.Autoparenthesize
	opts.Debug = s.Debug
	opts.LogOutput = logOutput
	if len(s.EngineCommand) > 0 {
		eng := engine.NewExecEngine(s.EngineCommand...)
		eng.Logger = interp.NewLogger(logOutput, s.Debug)
		opts.Engine = eng
	}
	return opts
}

// LoadKeymap returns the configured keymap, or the default when none is
// set.
func (s Settings) LoadKeymap() (*keymap.Keymap, error) {
	if s.Keymap == "" {
		return keymap.Default(), nil
	}
	return keymap.Load(s.Keymap)
}

// Watch calls onChange with freshly loaded settings whenever the file at
// path is written, created or renamed into place. The containing directory
// is watched so editors that replace the file are noticed. Watching stops
// when ctx is done.
func Watch(ctx context.Context, path string, onChange func(Settings, error)) error {
	invariant.ContextNotBackground(ctx, "config.Watch")
	invariant.NotNil(onChange, "onChange")

	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch settings: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch settings: %w", err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				onChange(Load(path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onChange(Settings{}, fmt.Errorf("watch settings: %w", err))
			}
		}
	}()
	return nil
}
