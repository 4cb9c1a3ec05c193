package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonwraymond/faqintent/intent"
	"github.com/jonwraymond/faqintent/match"
	"github.com/jonwraymond/faqintent/suggest"
)

// Error values for bot operations.
var (
	ErrEmptyQuery = errors.New("empty query")
	ErrNilSource  = errors.New("nil catalog source")
)

const (
	// IntroText greets the user when a conversation opens.
	IntroText = "I'm a lightweight FAQ bot. Ask about my projects, resume, tech stack, or how I think."

	// FallbackText precedes the suggestions when nothing matches.
	FallbackText = "I'm not sure. Try one of these:"

	// DefaultSuggestLimit is the number of search suggestions in a fallback.
	DefaultSuggestLimit = 3
)

// Kind identifies the type of a reply.
type Kind string

const (
	KindIntro    Kind = "intro"
	KindAnswer   Kind = "answer"
	KindFallback Kind = "fallback"
)

// Chip is a clickable shortcut to an intent.
type Chip struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DefaultChips returns the built-in quick chips.
func DefaultChips() []Chip {
	return []Chip{
		{ID: "summarize-projects", Label: "Projects"},
		{ID: "resume", Label: "Resume"},
		{ID: "contact-links", Label: "Contact"},
		{ID: "skills-stack", Label: "Tech stack"},
		{ID: "about-me", Label: "How I think"},
	}
}

// Reply is one bot message.
type Reply struct {
	ID          string        `json:"id"`
	Kind        Kind          `json:"kind"`
	Query       string        `json:"query,omitempty"`
	IntentID    string        `json:"intentId,omitempty"`
	Title       string        `json:"title,omitempty"`
	Text        string        `json:"text"`
	Links       []intent.Link `json:"links,omitempty"`
	Score       float64       `json:"score,omitempty"`
	Suggestions []Chip        `json:"suggestions,omitempty"`
	Time        time.Time     `json:"time"`
}

// Matched reports whether the reply answers a matched intent.
func (r Reply) Matched() bool {
	return r.Kind == KindAnswer
}

// Options configures a Bot.
type Options struct {
	// Source is the catalog document. If nil, uses the embedded default.
	Source *intent.Source

	// Synonyms overrides the source's synonym table when non-nil.
	Synonyms map[string][]string

	// Threshold is the minimum match score.
	// Zero selects match.DefaultThreshold.
	Threshold float64

	// Chips are the quick chips. If nil, uses DefaultChips.
	// Chips naming intents missing from the catalog are skipped.
	Chips []Chip

	// SuggestLimit caps search suggestions in a fallback reply.
	// Zero selects DefaultSuggestLimit; negative disables search.
	SuggestLimit int

	// Suggest configures the fallback search.
	Suggest suggest.Config

	// Logger receives "intent selected" events. If nil, logging is off.
	Logger *zap.Logger
}

// state is everything derived from one catalog. It is replaced whole on
// reload and never mutated.
type state struct {
	catalog *intent.Catalog
	matcher *match.Matcher
	chips   []Chip
}

// Bot answers chat messages from an intent catalog.
//
// Bot is safe for concurrent use.
type Bot struct {
	opts      Options
	logger    *zap.Logger
	suggester *suggest.Suggester
	state     atomic.Pointer[state]
}

// New creates a Bot.
func New(opts Options) (*Bot, error) {
	if opts.Threshold == 0 {
		opts.Threshold = match.DefaultThreshold
	}
	if opts.Chips == nil {
		opts.Chips = DefaultChips()
	}
	if opts.SuggestLimit == 0 {
		opts.SuggestLimit = DefaultSuggestLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	src := opts.Source
	if src == nil {
		var err error
		src, err = intent.DefaultSource()
		if err != nil {
			return nil, err
		}
	}

	b := &Bot{
		opts:      opts,
		logger:    logger,
		suggester: suggest.New(opts.Suggest),
	}
	st, err := b.build(src)
	if err != nil {
		_ = b.suggester.Close()
		return nil, err
	}
	b.state.Store(st)
	return b, nil
}

func (b *Bot) build(src *intent.Source) (*state, error) {
	catalog, err := src.Catalog()
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	opts := match.SourceOptions(src)
	if b.opts.Synonyms != nil {
		opts = append(opts, match.WithSynonyms(match.NewSynonyms(b.opts.Synonyms)))
	}
	opts = append(opts, match.WithThreshold(b.opts.Threshold), match.WithLogger(b.logger))

	if dead := catalog.Dead(); len(dead) > 0 {
		b.logger.Warn("catalog has unreachable intents", zap.Strings("intents", dead))
	}

	chips := make([]Chip, 0, len(b.opts.Chips))
	for _, c := range b.opts.Chips {
		if _, err := catalog.Get(c.ID); err != nil {
			b.logger.Warn("skipping chip for unknown intent", zap.String("intent", c.ID))
			continue
		}
		chips = append(chips, c)
	}

	return &state{
		catalog: catalog,
		matcher: match.NewForCatalog(catalog, opts...),
		chips:   chips,
	}, nil
}

// Reload swaps in a catalog built from src. On error the current catalog
// stays in place.
func (b *Bot) Reload(src *intent.Source) error {
	if src == nil {
		return ErrNilSource
	}
	st, err := b.build(src)
	if err != nil {
		return err
	}
	b.state.Store(st)
	b.logger.Info("catalog reloaded",
		zap.Int("intents", st.catalog.Len()),
		zap.String("fingerprint", st.catalog.Fingerprint()),
	)
	return nil
}

// Catalog returns the current catalog.
func (b *Bot) Catalog() *intent.Catalog {
	return b.state.Load().catalog
}

// Matcher returns the matcher for the current catalog.
func (b *Bot) Matcher() *match.Matcher {
	return b.state.Load().matcher
}

// Chips returns the quick chips valid for the current catalog.
func (b *Bot) Chips() []Chip {
	return append([]Chip(nil), b.state.Load().chips...)
}

// Intro returns the greeting reply.
func (b *Bot) Intro() Reply {
	return Reply{
		ID:          uuid.NewString(),
		Kind:        KindIntro,
		Text:        IntroText,
		Suggestions: b.Chips(),
		Time:        time.Now(),
	}
}

// Ask answers one user message. Blank messages return ErrEmptyQuery.
// Not matching is a fallback reply, not an error.
func (b *Bot) Ask(ctx context.Context, query string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Reply{}, ErrEmptyQuery
	}

	st := b.state.Load()
	res := st.matcher.Match(query)
	if !res.Matched() {
		return b.fallback(st, query), nil
	}

	b.logger.Info("intent selected",
		zap.String("intent", res.ID()),
		zap.String("query", strings.ToLower(query)),
		zap.Float64("score", res.Score),
	)
	return Reply{
		ID:       uuid.NewString(),
		Kind:     KindAnswer,
		Query:    query,
		IntentID: res.Intent.ID,
		Title:    res.Intent.Title,
		Text:     res.Intent.Answer,
		Links:    append([]intent.Link(nil), res.Intent.Links...),
		Score:    res.Score,
		Time:     time.Now(),
	}, nil
}

// Chip asks with the title of the chip's intent, as clicking it would.
func (b *Bot) Chip(ctx context.Context, id string) (Reply, error) {
	it, err := b.Catalog().Get(id)
	if err != nil {
		return Reply{}, err
	}
	return b.Ask(ctx, it.Title)
}

func (b *Bot) fallback(st *state, query string) Reply {
	suggestions := b.suggestions(st, query)
	if len(suggestions) == 0 {
		suggestions = append([]Chip(nil), st.chips...)
	}
	return Reply{
		ID:          uuid.NewString(),
		Kind:        KindFallback,
		Query:       query,
		Text:        FallbackText,
		Suggestions: suggestions,
		Time:        time.Now(),
	}
}

func (b *Bot) suggestions(st *state, query string) []Chip {
	if b.opts.SuggestLimit < 0 {
		return nil
	}
	hits, err := b.suggester.Suggest(query, b.opts.SuggestLimit, st.catalog)
	if err != nil {
		b.logger.Warn("suggest failed", zap.Error(err))
		return nil
	}
	chips := make([]Chip, 0, len(hits))
	for _, h := range hits {
		chips = append(chips, Chip{ID: h.ID, Label: h.Title})
	}
	return chips
}

// Close releases the search index.
func (b *Bot) Close() error {
	return b.suggester.Close()
}
