// Package calculator resolves curve requests against the game catalogs and
// runs them through the engine, memoizing finished curves.
package calculator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"

	"github.com/xtding233/gacha-curve/internal/catalog"
	"github.com/xtding233/gacha-curve/internal/gacha"
	"github.com/xtding233/gacha-curve/internal/pricing"
	"github.com/xtding233/gacha-curve/internal/token"
)

// Fallbacks for settings that neither the request nor the catalog sets.
const (
	DefaultCopies     = 1
	DefaultMaxPulls   = 100
	DefaultSampleStep = 10
)

// KindNotFound reports a game, banner or preset missing from the catalog.
const KindNotFound gacha.ErrorKind = "not-found"

// Options tune a Service. Zero values disable the cache, the pull cap and the
// timeout.
type Options struct {
	CacheSize     int
	MaxPullsLimit int
	Timeout       time.Duration
	Clock         clockwork.Clock
}

// Service answers curve, batch, plan and verify requests.
type Service struct {
	catalog catalog.Resolver
	cache   *lru.Cache[string, *gacha.Result]
	opts    Options
	clock   clockwork.Clock
}

// New creates a Service reading catalogs from resolver.
func New(resolver catalog.Resolver, opts Options) (*Service, error) {
	s := &Service{catalog: resolver, opts: opts, clock: opts.Clock}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if opts.CacheSize > 0 {
		c, err := lru.New[string, *gacha.Result](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("curve cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// input is a request after catalog resolution and defaulting.
type input struct {
	game, banner, preset, version string

	items    []gacha.ItemGroup
	settings gacha.Settings
	policy   gacha.GuaranteePolicy

	tokens *token.Token
	store  *pricing.Store
}

// key identifies the engine inputs; equal keys give equal curves.
func (in input) key() string {
	b, _ := json.Marshal(struct {
		Items    []gacha.ItemGroup     `json:"items"`
		Settings gacha.Settings        `json:"settings"`
		Policy   gacha.GuaranteePolicy `json:"policy"`
	}{in.items, in.settings, in.policy})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (s *Service) resolve(req Request) (input, error) {
	in := input{game: req.Game, banner: req.Banner, preset: req.Preset, policy: gacha.DefaultPolicy()}
	var defaults catalog.Defaults
	var presetTargets []gacha.Target

	if req.Game != "" {
		res, err := s.catalog.Resolve(req.Game, req.Banner, req.Preset)
		if err != nil {
			return input{}, err
		}
		in.version = res.Version
		in.items = res.Items
		in.policy = res.Policy
		in.tokens, in.store = res.Tokens, res.Store
		defaults = res.Defaults
		if res.Preset != nil {
			presetTargets = res.Preset.Targets
		}
	} else if req.Banner != "" || req.Preset != "" {
		return input{}, &gacha.Error{Kind: gacha.KindInvalidSettings, Message: "banner and preset need a game"}
	}

	in.items = catalog.MergeItems(in.items, req.Items)
	if req.Policy != nil {
		in.policy = *req.Policy
	}

	targets := req.Targets
	if len(targets) == 0 && len(req.TargetCounts) > 0 {
		targets = gacha.TargetsFromMap(in.items, req.TargetCounts)
	}
	if len(targets) == 0 {
		targets = presetTargets
	}
	in.settings = gacha.Settings{
		Targets:        targets,
		CopiesRequired: firstNonZero(req.CopiesRequired, defaults.CopiesRequired, DefaultCopies),
		MaxPulls:       firstNonZero(req.MaxPulls, defaults.MaxPulls, DefaultMaxPulls),
		SampleStep:     firstNonZero(req.SampleStep, defaults.SampleStep, DefaultSampleStep),
	}
	if limit := s.opts.MaxPullsLimit; limit > 0 && in.settings.MaxPulls > limit {
		return input{}, &gacha.Error{
			Kind:    gacha.KindInvalidSettings,
			Message: fmt.Sprintf("max pulls %d exceeds the server limit of %d", in.settings.MaxPulls, limit),
		}
	}
	return in, nil
}

// run computes (or recalls) the curve for in.
func (s *Service) run(ctx context.Context, runID string, in input) (*gacha.Result, bool, error) {
	key := in.key()
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			log.Printf("[calculator] run %s: cache hit %s", runID, key[:12])
			return res, true, nil
		}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	start := s.clock.Now()
	res, err := gacha.Calculate(ctx, in.items, in.settings, in.policy)
	elapsed := s.clock.Since(start)
	if err != nil {
		log.Printf("[calculator] run %s failed after %v: %v", runID, elapsed, err)
		return nil, false, err
	}
	log.Printf("[calculator] run %s: %d targets x%d copies, %d pulls in %v",
		runID, len(res.Targets), in.settings.CopiesRequired, in.settings.MaxPulls, elapsed)
	if s.cache != nil {
		s.cache.Add(key, res)
	}
	return res, false, nil
}

// Curve computes the probability curve for req.
func (s *Service) Curve(ctx context.Context, req Request) (*CurveResponse, error) {
	in, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	res, cached, err := s.run(ctx, runID, in)
	if err != nil {
		return nil, err
	}
	return &CurveResponse{
		RunID:    runID,
		Game:     in.game,
		Banner:   in.banner,
		Preset:   in.preset,
		Version:  in.version,
		Settings: in.settings,
		Targets:  res.Targets,
		Curve:    res.Curve,
		Cached:   cached,
	}, nil
}

// Presets lists the presets of a game (and banner).
func (s *Service) Presets(game, banner string) ([]catalog.Preset, error) {
	res, err := s.catalog.Resolve(game, banner, "")
	if err != nil {
		return nil, err
	}
	return res.Presets, nil
}

// Items returns the catalog rows of a game, with the preset's patches applied
// when preset is set.
func (s *Service) Items(game, banner, preset string) ([]gacha.ItemGroup, error) {
	res, err := s.catalog.Resolve(game, banner, preset)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// NotFound reports whether err names a game, banner or preset that does not
// exist.
func NotFound(err error) bool {
	return errors.Is(err, catalog.ErrUnknownGame) ||
		errors.Is(err, catalog.ErrUnknownBanner) ||
		errors.Is(err, catalog.ErrUnknownPreset)
}

// Describe is gacha.Describe extended with catalog lookups.
func Describe(err error) gacha.ErrorInfo {
	if NotFound(err) {
		return gacha.ErrorInfo{Kind: KindNotFound, Message: err.Error()}
	}
	return gacha.Describe(err)
}

func firstNonZero(vs ...int) int {
	for _, v := range vs {
		if v != 0 {
			return v
		}
	}
	return 0
}
