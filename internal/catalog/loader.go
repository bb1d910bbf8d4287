package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/gacha-curve/internal/gacha"
)

var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrUnknownBanner = errors.New("unknown banner")
	ErrUnknownPreset = errors.New("unknown preset")
)

// Paths helper for default/game/banner files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) GamesDir() string {
	return filepath.Join(p.BaseDir, "games")
}
func (p Paths) DefaultPath() string {
	return filepath.Join(p.GamesDir(), "default.yaml")
}
func (p Paths) GamePath(game string) string {
	return filepath.Join(p.GamesDir(), game+".yaml")
}
func (p Paths) BannerPath(game, banner string) string {
	return filepath.Join(p.GamesDir(), game, "banners", banner+".yaml")
}

// Loader reads YAML catalogs and merges default -> game -> banner.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawCatalog // key: "game" or "game/banner"
	gen   uint64                // bumped by Invalidate

	// loaded, if set, runs after the files are read and before caching.
	loaded func()
}

// NewLoader creates a catalog loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawCatalog),
	}
}

// Paths returns the file layout the loader reads from.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default -> game -> banner (banner optional).
// The game "builtin" uses Builtin() as its game layer. A game or banner with
// no file is reported as ErrUnknownGame / ErrUnknownBanner.
func (l *Loader) LoadMerged(game, banner string) (RawCatalog, error) {
	if err := checkName(game); err != nil {
		return RawCatalog{}, fmt.Errorf("%w: %v", ErrUnknownGame, err)
	}
	if banner != "" {
		if err := checkName(banner); err != nil {
			return RawCatalog{}, fmt.Errorf("%w: %v", ErrUnknownBanner, err)
		}
	}
	key := game
	if banner != "" {
		key = game + "/" + banner
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	gen := l.gen
	l.mu.RUnlock()

	defCfg, _, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawCatalog{}, fmt.Errorf("read default: %w", err)
	}

	var gameCfg RawCatalog
	if game == BuiltinGame {
		gameCfg = Builtin()
	} else {
		var found bool
		gameCfg, found, err = readYAML(l.paths.GamePath(game))
		if err != nil {
			return RawCatalog{}, fmt.Errorf("read game %s: %w", game, err)
		}
		if !found {
			return RawCatalog{}, fmt.Errorf("%w: %s", ErrUnknownGame, game)
		}
	}
	merged := mergeRaw(defCfg, gameCfg)
	gameMerged := merged

	if banner != "" {
		bannerCfg, found, err := readYAML(l.paths.BannerPath(game, banner))
		if err != nil {
			return RawCatalog{}, fmt.Errorf("read banner %s/%s: %w", game, banner, err)
		}
		if !found {
			return RawCatalog{}, fmt.Errorf("%w: %s/%s", ErrUnknownBanner, game, banner)
		}
		merged = mergeRaw(merged, bannerCfg)
	}

	if l.loaded != nil {
		l.loaded()
	}
	l.mu.Lock()
	// A merge read before an Invalidate may be stale; return it but don't keep it.
	if l.gen == gen {
		l.cache[game] = gameMerged
		l.cache[key] = merged
	}
	l.mu.Unlock()
	log.Printf("[catalog] loaded %s (version %q, %d items)", key, merged.Version, len(merged.Items))

	return merged, nil
}

// Games lists the games available under the base directory plus the
// built-in one, sorted.
func (l *Loader) Games() ([]string, error) {
	games := []string{BuiltinGame}
	entries, err := os.ReadDir(l.paths.GamesDir())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".yaml")
		if e.IsDir() || !ok || name == "default" || name == BuiltinGame {
			continue
		}
		games = append(games, name)
	}
	slices.Sort(games)
	return games, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawCatalog)
	l.gen++
}

// checkName keeps game and banner names from escaping the games directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

// readYAML loads a YAML file into RawCatalog. Missing files return a zero
// catalog and found == false. Unknown keys are rejected so typos surface.
func readYAML(path string) (cfg RawCatalog, found bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawCatalog{}, false, nil
		}
		return RawCatalog{}, false, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RawCatalog{}, true, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, true, nil
}

// mergeRaw layers b over a: scalars override when set, items and presets are
// merged by label / id (b's entry replaces a's in place, new ones append),
// tokens and store are replaced whole.
func mergeRaw(a, b RawCatalog) RawCatalog {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// guarantee
	if out.Guarantee != nil {
		g := cloneGuarantee(*out.Guarantee)
		out.Guarantee = &g
	}
	if b.Guarantee != nil {
		if out.Guarantee == nil {
			g := cloneGuarantee(*b.Guarantee)
			out.Guarantee = &g
		} else {
			g := out.Guarantee
			if b.Guarantee.SoftLabels != nil {
				g.SoftLabels = slices.Clone(b.Guarantee.SoftLabels)
			}
			if b.Guarantee.HardLabels != nil {
				g.HardLabels = slices.Clone(b.Guarantee.HardLabels)
			}
			if b.Guarantee.SoftInterval != 0 {
				g.SoftInterval = b.Guarantee.SoftInterval
			}
			if b.Guarantee.HardInterval != 0 {
				g.HardInterval = b.Guarantee.HardInterval
			}
		}
	}

	out.Items = MergeItems(a.Items, b.Items)
	out.Presets = mergeBy(a.Presets, b.Presets, func(p Preset) string { return p.ID })

	// defaults
	if b.Defaults.CopiesRequired != 0 {
		out.Defaults.CopiesRequired = b.Defaults.CopiesRequired
	}
	if b.Defaults.MaxPulls != 0 {
		out.Defaults.MaxPulls = b.Defaults.MaxPulls
	}
	if b.Defaults.SampleStep != 0 {
		out.Defaults.SampleStep = b.Defaults.SampleStep
	}

	if b.Tokens != nil {
		out.Tokens = b.Tokens
	}
	if out.Tokens != nil {
		t := *out.Tokens
		out.Tokens = &t
	}
	if b.Store != nil {
		out.Store = b.Store
	}
	if out.Store != nil {
		s := *out.Store
		s.Packs = slices.Clone(s.Packs)
		out.Store = &s
	}

	return out
}

// MergeItems patches base with rows of patch matched by label; new labels are
// appended. Neither input is modified.
func MergeItems(base, patch []gacha.ItemGroup) []gacha.ItemGroup {
	return mergeBy(base, patch, func(it gacha.ItemGroup) string { return it.Label })
}

// mergeBy returns a copy of a with entries of b replacing those sharing the
// same key; entries with new keys are appended in b's order.
func mergeBy[T any](a, b []T, key func(T) string) []T {
	out := slices.Clone(a)
	for _, v := range b {
		k := key(v)
		if i := slices.IndexFunc(out, func(o T) bool { return key(o) == k }); i >= 0 {
			out[i] = v
		} else {
			out = append(out, v)
		}
	}
	return out
}

func cloneGuarantee(g gacha.GuaranteePolicy) gacha.GuaranteePolicy {
	g.SoftLabels = slices.Clone(g.SoftLabels)
	g.HardLabels = slices.Clone(g.HardLabels)
	return g
}
