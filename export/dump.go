// Package export turns the game's data dump into the exporter's output:
// localised item, fluid, recipe, entity and group records that point at
// rendered icon files, written as a single JSON document.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Log markers the exporter mod prints around data.raw.
const (
	markerStart = "---- data export start ----"
	markerEnd   = "---- data export end   ----"
)

var ErrNoDump = errors.New("export: data dump not found")

// Record is one prototype or runtime record as dumped by the game.
type Record map[string]any

// Str returns the string at key, or "".
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Rec returns the object at key, or nil.
func (r Record) Rec(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return v
	}
	return nil
}

// Dump holds data.raw and the runtime exports of one game session.
type Dump struct {
	// Prototype type -> name -> prototype.
	Raw      map[string]map[string]Record
	Items    map[string]Record
	Fluids   map[string]Record
	Recipes  map[string]Record
	Entities map[string]map[string]Record // entity type -> name -> entity
}

// LoadDump reads data.raw from <game>/factorio-current.log and the runtime
// exports from script-output/, which lives in the game directory or, on
// some installs, next to the mods.
func LoadDump(gameDir, modsDir string) (*Dump, error) {
	f, err := os.Open(filepath.Join(gameDir, "factorio-current.log"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDump, err)
	}
	defer f.Close()

	d := new(Dump)
	if d.Raw, err = ParseLog(f); err != nil {
		return nil, err
	}

	out := filepath.Join(gameDir, "script-output")
	if !isDir(out) {
		out = filepath.Join(modsDir, "script-output")
		if !isDir(out) {
			return nil, fmt.Errorf("%w: no script-output in %s or %s; start a new game with the exporter mod enabled", ErrNoDump, gameDir, modsDir)
		}
	}
	for name, dst := range map[string]any{
		"recipes.json":  &d.Recipes,
		"items.json":    &d.Items,
		"fluids.json":   &d.Fluids,
		"entities.json": &d.Entities,
	} {
		if err := readJSON(filepath.Join(out, name), dst); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoDump, err)
		}
	}
	return d, nil
}

// ParseLog extracts and decodes the JSON printed between the export
// markers of a game log.
func ParseLog(r io.Reader) (map[string]map[string]Record, error) {
	var b strings.Builder
	started := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<30)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.Contains(line, markerStart):
			started = true
		case strings.Contains(line, markerEnd):
			if started {
				return decodeRaw(b.String())
			}
		case started:
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("export: read log: %w", err)
	}
	if !started {
		return nil, fmt.Errorf("%w: no export markers in log", ErrNoDump)
	}
	return decodeRaw(b.String())
}

func decodeRaw(s string) (map[string]map[string]Record, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty data export in log", ErrNoDump)
	}
	var raw map[string]map[string]Record
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("export: decode data.raw: %w", err)
	}
	return raw, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
