package lookup

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/text/language"

	"streamfinder/internal/catalog"
	"streamfinder/internal/logging"
)

const listKey = "all"

// Observer receives hit/miss notifications for the list memo.
type Observer interface {
	CacheLookup(namespace string, hit bool)
}

// Translator resolves filter names against the catalog's reference lists.
type Translator struct {
	api       catalog.API
	logger    *slog.Logger
	observer  Observer
	providers *expirable.LRU[string, []catalog.Provider]
	genres    *expirable.LRU[string, []catalog.Genre]
	languages *expirable.LRU[string, []catalog.Language]
}

// Option configures a Translator.
type Option func(*Translator)

// WithListTTL memoizes each reference list in process for ttl. Zero or a
// negative ttl disables the memo so every translation hits the catalog.
func WithListTTL(ttl time.Duration) Option {
	return func(t *Translator) {
		if ttl <= 0 {
			t.providers, t.genres, t.languages = nil, nil, nil
			return
		}
		t.providers = expirable.NewLRU[string, []catalog.Provider](1, nil, ttl)
		t.genres = expirable.NewLRU[string, []catalog.Genre](1, nil, ttl)
		t.languages = expirable.NewLRU[string, []catalog.Language](1, nil, ttl)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithObserver reports memo hits and misses, typically to metrics.
func WithObserver(observer Observer) Option {
	return func(t *Translator) {
		t.observer = observer
	}
}

// New creates a Translator. Without WithListTTL no memo is kept.
func New(api catalog.API, opts ...Option) *Translator {
	t := &Translator{api: api, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.NewComponentLogger(t.logger, "lookup")
	return t
}

// ProviderID translates a watch-provider display name such as "Netflix".
func (t *Translator) ProviderID(ctx context.Context, name string) (int64, error) {
	providers, err := memoized(ctx, t, t.providers, "providers", t.api.WatchProviders)
	if err != nil {
		return 0, err
	}
	for _, p := range providers {
		if p.Name == name {
			return p.ID, nil
		}
	}
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	return 0, t.miss(ctx, KindService, name, names)
}

// GenreID translates a genre name such as "Comedy".
func (t *Translator) GenreID(ctx context.Context, name string) (int64, error) {
	genres, err := memoized(ctx, t, t.genres, "genres", t.api.Genres)
	if err != nil {
		return 0, err
	}
	for _, g := range genres {
		if g.Name == name {
			return g.ID, nil
		}
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return 0, t.miss(ctx, KindGenre, name, names)
}

// LanguageCode translates an English language name such as "French" into
// its ISO 639-1 code.
func (t *Translator) LanguageCode(ctx context.Context, name string) (string, error) {
	languages, err := memoized(ctx, t, t.languages, "languages", t.api.Languages)
	if err != nil {
		return "", err
	}
	for _, l := range languages {
		if l.EnglishName == name {
			if _, perr := language.ParseBase(l.Code); perr != nil {
				logging.WarnWithContext(logging.WithContext(ctx, t.logger), "catalog language code is not ISO 639", "lookup_language_code",
					logging.String("language", name),
					logging.String("code", l.Code),
					logging.Error(perr),
					logging.String(logging.FieldImpact, "code passed to discovery unchanged"))
			}
			return l.Code, nil
		}
	}
	names := make([]string, 0, len(languages))
	for _, l := range languages {
		names = append(names, l.EnglishName)
	}
	return "", t.miss(ctx, KindLanguage, name, names)
}

func (t *Translator) miss(ctx context.Context, kind Kind, value string, candidates []string) error {
	err := &NotFoundError{Kind: kind, Value: value, Suggestions: Suggest(value, candidates)}
	logging.WithContext(ctx, t.logger).Info("translation miss",
		logging.String(logging.FieldEventType, "lookup_miss"),
		logging.String("kind", string(kind)),
		logging.String("value", value),
		logging.Int("candidates", len(candidates)),
		logging.String("suggestions", strings.Join(err.Suggestions, ", ")))
	return err
}

func memoized[T any](ctx context.Context, t *Translator, memo *expirable.LRU[string, []T], name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if memo != nil {
		if list, ok := memo.Get(listKey); ok {
			t.observe(name, true)
			return list, nil
		}
		t.observe(name, false)
	}
	list, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if memo != nil {
		memo.Add(listKey, list)
	}
	logging.WithContext(ctx, t.logger).Debug("fetched reference list",
		logging.String("list", name),
		logging.Int("count", len(list)))
	return list, nil
}

func (t *Translator) observe(name string, hit bool) {
	if t.observer != nil {
		t.observer.CacheLookup("lookup_"+name, hit)
	}
}

// fold normalizes a display name for edit-distance comparison.
func fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
