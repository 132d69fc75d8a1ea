package iconcomposer

import "errors"

// Errors returned by Composite and by AssetSource implementations. Callers
// match them with errors.Is; every one of them is fatal for the icon being
// rendered and for nothing else.
var (
	// ErrAssetNotFound is returned when a symbolic reference cannot be
	// resolved to a file in the game data tree, a mod directory or a mod
	// archive.
	ErrAssetNotFound = errors.New("iconcomposer: asset not found")

	// ErrMalformedSpec is returned for specs with missing sizes or
	// inconsistent layer data.
	ErrMalformedSpec = errors.New("iconcomposer: malformed icon spec")

	// ErrDecode is returned when asset bytes are not a decodable image.
	ErrDecode = errors.New("iconcomposer: cannot decode image")

	// ErrNoIcon is returned for specs that carry neither icon nor icons.
	ErrNoIcon = errors.New("iconcomposer: spec has no icon")
)
