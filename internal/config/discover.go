package config

import (
	"os"
	"path/filepath"
)

// IsGameDir reports whether dir looks like a game install.
func IsGameDir(dir string) bool {
	return isFile(filepath.Join(dir, "data", "core", "info.json"))
}

// IsModsDir reports whether dir looks like a mods directory.
func IsModsDir(dir string) bool {
	return isFile(filepath.Join(dir, "mod-list.json"))
}

// GameDirCandidates lists the usual install locations on goos, most likely
// first.
func GameDirCandidates(goos, home string, getenv func(string) string) []string {
	switch goos {
	case "linux":
		return []string{
			filepath.Join(home, ".factorio"),
			filepath.Join(home, ".steam", "steam", "steamapps", "common", "Factorio"),
			filepath.Join(home, ".steam", "steam", "SteamApps", "common", "Factorio"),
		}
	case "windows":
		var dirs []string
		if pf := getenv("ProgramW6432"); pf != "" {
			dirs = append(dirs, filepath.Join(pf, "Factorio"))
		}
		if pf := getenv("ProgramFiles(x86)"); pf != "" {
			dirs = append(dirs, filepath.Join(pf, "Steam", "steamapps", "common", "Factorio"))
		}
		return dirs
	case "darwin":
		return []string{
			filepath.Join(home, "Library", "Application Support", "Steam", "steamapps", "common", "Factorio", "factorio.app", "Contents"),
		}
	}
	return nil
}

func ModsDirCandidates(goos, home string, getenv func(string) string) []string {
	switch goos {
	case "linux":
		return []string{filepath.Join(home, ".factorio", "mods")}
	case "windows":
		if appdata := getenv("APPDATA"); appdata != "" {
			return []string{filepath.Join(appdata, "Factorio", "mods")}
		}
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", "factorio", "mods")}
	}
	return nil
}

func firstMatch(dirs []string, ok func(string) bool) string {
	for _, d := range dirs {
		if ok(d) {
			return d
		}
	}
	return ""
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}
