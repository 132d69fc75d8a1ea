// Package assets resolves the game's "__namespace__/path" references to
// decoded images. Namespaces base and core live in the game data tree; any
// other namespace is a mod, either unpacked in the mods directory or packed
// as <namespace>_<version>.zip.
package assets

import (
	"archive/zip"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/setanarut/iconcomposer"
	"github.com/setanarut/iconcomposer/utils"
)

var refPattern = regexp.MustCompile(`^__(.+?)__/(.+)$`)

// ParseRef splits a reference into namespace and relative path.
func ParseRef(ref string) (namespace, rel string, err error) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", "", fmt.Errorf("%w: bad reference %q", iconcomposer.ErrAssetNotFound, ref)
	}
	return m[1], m[2], nil
}

// AmbiguousAsset records a namespace that matched several mod archives.
// The lexically first archive is used.
type AmbiguousAsset struct {
	Namespace  string
	Candidates []string
	Chosen     string
}

func (a AmbiguousAsset) String() string {
	return fmt.Sprintf("namespace %q matches %d archives, using %s", a.Namespace, len(a.Candidates), filepath.Base(a.Chosen))
}

// location is where a namespace resolved to: a directory, or an archive
// whose entries live under root/.
type location struct {
	dir     string
	archive *zip.ReadCloser
	root    string
}

// Resolver implements iconcomposer.AssetSource on top of a game install and
// a mods directory. It is safe for concurrent use. Close releases open
// archives.
type Resolver struct {
	GameDir string
	ModsDir string

	log *zap.Logger

	mu        sync.Mutex
	locations map[string]*location
	ambiguous []AmbiguousAsset
}

func NewResolver(gameDir, modsDir string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		GameDir:   gameDir,
		ModsDir:   modsDir,
		log:       log,
		locations: make(map[string]*location),
	}
}

// Open resolves ref and decodes the image it names.
func (r *Resolver) Open(ref string) (image.Image, error) {
	ns, rel, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	loc, err := r.locate(ns)
	if err != nil {
		return nil, err
	}

	var f fs.File
	if loc.archive != nil {
		f, err = loc.archive.Open(path.Join(loc.root, rel))
	} else {
		f, err = os.Open(filepath.Join(loc.dir, filepath.FromSlash(rel)))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", iconcomposer.ErrAssetNotFound, ref, err)
	}
	defer f.Close()

	img, err := utils.DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", iconcomposer.ErrDecode, ref, err)
	}
	return img, nil
}

// Ambiguous returns every ambiguity seen so far.
func (r *Resolver) Ambiguous() []AmbiguousAsset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ambiguous)
}

// Close closes every archive opened by the resolver.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for ns, loc := range r.locations {
		if loc.archive != nil {
			errs = append(errs, loc.archive.Close())
		}
		delete(r.locations, ns)
	}
	return errors.Join(errs...)
}

func (r *Resolver) locate(ns string) (*location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.locations[ns]; ok {
		return loc, nil
	}
	loc, err := r.resolveNamespace(ns)
	if err != nil {
		return nil, err
	}
	r.locations[ns] = loc
	return loc, nil
}

// resolveNamespace must be called with r.mu held.
func (r *Resolver) resolveNamespace(ns string) (*location, error) {
	if ns == "base" || ns == "core" {
		dir := filepath.Join(r.GameDir, "data", ns)
		if !isDir(dir) {
			return nil, fmt.Errorf("%w: game data %s", iconcomposer.ErrAssetNotFound, dir)
		}
		return &location{dir: dir}, nil
	}

	if dir := filepath.Join(r.ModsDir, ns); isDir(dir) {
		return &location{dir: dir}, nil
	}

	matches, err := filepath.Glob(filepath.Join(r.ModsDir, globEscape(ns)+"*.zip"))
	if err != nil {
		return nil, fmt.Errorf("%w: mod %q: %v", iconcomposer.ErrAssetNotFound, ns, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: mod %q is neither a directory nor an archive in %s", iconcomposer.ErrAssetNotFound, ns, r.ModsDir)
	}
	slices.Sort(matches)
	chosen := matches[0]
	if len(matches) > 1 {
		a := AmbiguousAsset{Namespace: ns, Candidates: matches, Chosen: chosen}
		r.ambiguous = append(r.ambiguous, a)
		r.log.Warn("ambiguous asset namespace",
			zap.String("namespace", ns),
			zap.Strings("candidates", matches),
			zap.String("chosen", chosen))
	}

	zr, err := zip.OpenReader(chosen)
	if err != nil {
		return nil, fmt.Errorf("%w: mod %q: %s is not a valid archive: %v", iconcomposer.ErrAssetNotFound, ns, chosen, err)
	}
	return &location{
		archive: zr,
		root:    strings.TrimSuffix(filepath.Base(chosen), filepath.Ext(chosen)),
	}, nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// globEscape quotes the glob metacharacters of s.
func globEscape(s string) string {
	var b strings.Builder
	for _, c := range s {
		if strings.ContainsRune(`*?[\`, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
