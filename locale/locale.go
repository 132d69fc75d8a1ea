// Package locale loads the game's .cfg locale files and resolves
// localised-string references against them.
package locale

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// noCategory collects keys that appear before any [section] header.
const noCategory = "no-category"

// Table maps category -> key -> text.
type Table struct {
	data map[string]map[string]string
	log  *zap.Logger
}

func NewTable(log *zap.Logger) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table{data: make(map[string]map[string]string), log: log}
}

// Load reads the locale of lang for core and base from the game data tree
// and then for every mod directory or archive in modsDir, in name order.
// Later sources override earlier ones.
func Load(gameDir, modsDir, lang string, log *zap.Logger) (*Table, error) {
	t := NewTable(log)
	for _, ns := range []string{"core", "base"} {
		if err := t.LoadDir(filepath.Join(gameDir, "data", ns), lang); err != nil {
			return nil, err
		}
	}
	entries, err := os.ReadDir(modsDir)
	if err != nil {
		return nil, fmt.Errorf("locale: %w", err)
	}
	for _, e := range entries {
		p := filepath.Join(modsDir, e.Name())
		switch {
		case e.IsDir():
			err = t.LoadDir(p, lang)
		case strings.HasSuffix(e.Name(), ".zip"):
			err = t.LoadArchive(p, lang)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	t.log.Info("loaded locale", zap.String("lang", lang), zap.Int("categories", len(t.data)))
	return t, nil
}

// LoadDir reads <dir>/locale/<lang>/*.cfg. A mod without that directory
// contributes nothing.
func (t *Table) LoadDir(dir, lang string) error {
	files, err := filepath.Glob(filepath.Join(dir, "locale", lang, "*.cfg"))
	if err != nil {
		return err
	}
	slices.Sort(files)
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("locale: %w", err)
		}
		err = t.Parse(f, name)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadArchive reads the cfg files under <stem>/locale/<lang>/ of a mod
// archive.
func (t *Table) LoadArchive(archive, lang string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.log.Warn("skipping unreadable mod archive", zap.String("path", archive), zap.Error(err))
		return nil
	}
	defer zr.Close()

	stem := strings.TrimSuffix(filepath.Base(archive), filepath.Ext(archive))
	prefix := path.Join(stem, "locale", lang) + "/"
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, ".cfg") {
			names = append(names, f.Name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		f, err := zr.Open(name)
		if err != nil {
			return fmt.Errorf("locale: %s: %w", archive, err)
		}
		err = t.Parse(f, archive+":"+name)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Parse reads one cfg file. name is only used in diagnostics.
func (t *Table) Parse(r io.Reader, name string) error {
	category := noCategory
	uncategorized := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, ";"), strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			category = trimmed[1 : len(trimmed)-1]
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if category == noCategory {
			uncategorized = true
		}
		t.set(category, key, value)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("locale: %s: %w", name, err)
	}
	if uncategorized {
		t.log.Warn("localised strings without category", zap.String("file", name))
	}
	return nil
}

func (t *Table) set(category, key, value string) {
	m := t.data[category]
	if m == nil {
		m = make(map[string]string)
		t.data[category] = m
	}
	m[key] = value
}

var placeholder = regexp.MustCompile(`__(\d+)__`)

// Resolve turns a localised-string reference into text. Unresolvable
// references resolve to "".
func (t *Table) Resolve(ref any) string {
	s, _ := t.Lookup(ref)
	return s
}

// Lookup resolves ref and reports whether every key it names was found.
//
// A reference is either plain text or a list whose first element is a
// "category.key" name followed by parameters substituted for __1__, __2__
// and so on. A first element of "" concatenates the remaining elements;
// any other first element without a dot is literal text.
func (t *Table) Lookup(ref any) (string, bool) {
	list, ok := ref.([]any)
	if !ok {
		switch v := ref.(type) {
		case nil:
			return "", false
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		default:
			return fmt.Sprint(v), true
		}
	}
	if len(list) == 0 {
		return "", false
	}
	head, ok := list[0].(string)
	if !ok {
		return t.Lookup(list[0])
	}

	category, key, dotted := strings.Cut(head, ".")
	if !dotted {
		if head != "" {
			return head, true
		}
		var b strings.Builder
		all := true
		for _, part := range list[1:] {
			s, ok := t.Lookup(part)
			all = all && ok
			b.WriteString(s)
		}
		return b.String(), all
	}

	text, found := t.data[category][key]
	if !found {
		return "", false
	}
	if len(list) == 1 {
		return text, true
	}
	all := true
	text = placeholder.ReplaceAllStringFunc(text, func(m string) string {
		n, _ := strconv.Atoi(m[2 : len(m)-2])
		if n >= len(list) {
			all = false
			return m
		}
		s, ok := t.Lookup(list[n])
		all = all && ok
		return s
	})
	return text, all
}
