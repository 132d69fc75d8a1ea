package locale

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const baseCfg = `[item-name]
iron-plate=Iron plate
copper-cable=Copper cable

; comment
[entity-name]
assembler=Assembling machine __1__
combo=__1__ and __2__

[recipe-name]
equals=a=b
`

func table(t *testing.T) *Table {
	t.Helper()
	tb := NewTable(nil)
	if err := tb.Parse(strings.NewReader(baseCfg), "base.cfg"); err != nil {
		t.Fatal(err)
	}
	return tb
}

// ref decodes a JSON reference as it appears in the data dump.
func ref(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestLookup(t *testing.T) {
	tb := table(t)
	tests := []struct {
		ref    string
		want   string
		wantOK bool
	}{
		{`"plain"`, "plain", true},
		{`["item-name.iron-plate"]`, "Iron plate", true},
		{`["entity-name.assembler", "2"]`, "Assembling machine 2", true},
		{`["entity-name.combo", ["item-name.iron-plate"], ["item-name.copper-cable"]]`, "Iron plate and Copper cable", true},
		{`["", ["item-name.iron-plate"], " x ", 3]`, "Iron plate x 3", true},
		{`["10"]`, "10", true},
		{`["recipe-name.equals"]`, "a=b", true},
		{`["item-name.missing"]`, "", false},
		{`["", ["item-name.missing"], "!"]`, "!", false},
		{`["entity-name.combo", "x"]`, "x and __2__", false},
		{`[]`, "", false},
		{`null`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := tb.Lookup(ref(t, tt.ref))
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Lookup = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseWarnsOnUncategorized(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	tb := NewTable(zap.New(core))
	if err := tb.Parse(strings.NewReader("loose=Loose\n[c]\nk=v\n"), "x.cfg"); err != nil {
		t.Fatal(err)
	}
	if logs.Len() != 1 {
		t.Errorf("warnings = %d, want 1", logs.Len())
	}
	if got := tb.Resolve([]any{"no-category.loose"}); got != "Loose" {
		t.Errorf("uncategorized key = %q", got)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	game := filepath.Join(root, "game")
	mods := filepath.Join(root, "mods")

	write := func(p, data string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(game, "data", "core", "locale", "en", "core.cfg"), "[gui]\nok=OK\n")
	write(filepath.Join(game, "data", "base", "locale", "en", "base.cfg"), baseCfg)
	write(filepath.Join(game, "data", "base", "locale", "de", "base.cfg"), "[item-name]\niron-plate=Eisenplatte\n")
	write(filepath.Join(mods, "dirmod", "locale", "en", "m.cfg"), "[item-name]\niron-plate=Better plate\n")
	write(filepath.Join(mods, "mod-list.json"), "{}")

	f, err := os.Create(filepath.Join(mods, "zipmod_0.1.0.zip"))
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("zipmod_0.1.0/locale/en/z.cfg")
	w.Write([]byte("[item-name]\ngear=Zip gear\n"))
	w, _ = zw.Create("zipmod_0.1.0/locale/de/z.cfg")
	w.Write([]byte("[item-name]\ngear=Zahnrad\n"))
	zw.Close()
	f.Close()

	tb, err := Load(game, mods, "en", nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, want := range map[string]string{
		"gui.ok":               "OK",
		"item-name.iron-plate": "Better plate",
		"item-name.gear":       "Zip gear",
	} {
		if got := tb.Resolve([]any{k}); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}
