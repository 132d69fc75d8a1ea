package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// OutputFile is the name of the document written by Write.
const OutputFile = "output.json"

// Write stores out as <dir>/output.json and returns the file path.
func Write(dir string, out *Output) (string, error) {
	path := filepath.Join(dir, OutputFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := json.NewEncoder(f).Encode(out); err != nil {
		f.Close()
		return "", fmt.Errorf("export: encode %s: %w", path, err)
	}
	return path, f.Close()
}
