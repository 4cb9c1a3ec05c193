package suggest

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/jonwraymond/faqintent/intent"
	"github.com/jonwraymond/faqintent/match"
)

// ErrClosed is returned by Suggest after Close.
var ErrClosed = errors.New("suggester closed")

const (
	fieldTitle      = "title"
	fieldUtterances = "utterances"
	fieldTags       = "tags"
)

// Config configures field boosts. Zero values select the defaults.
type Config struct {
	TitleBoost     float64
	UtteranceBoost float64
	TagsBoost      float64
}

func (c Config) withDefaults() Config {
	if c.TitleBoost <= 0 {
		c.TitleBoost = 3
	}
	if c.UtteranceBoost <= 0 {
		c.UtteranceBoost = 2
	}
	if c.TagsBoost <= 0 {
		c.TagsBoost = 2
	}
	return c
}

// Suggestion is one ranked intent.
type Suggestion struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Suggester ranks intents with an in-memory Bleve index.
type Suggester struct {
	cfg Config

	mu          sync.RWMutex
	index       bleve.Index
	fingerprint string
	closed      bool
}

// New creates a Suggester.
func New(cfg Config) *Suggester {
	return &Suggester{cfg: cfg.withDefaults()}
}

// Suggest returns up to limit intents of c ranked for query.
// A limit <= 0 returns nothing.
func (s *Suggester) Suggest(q string, limit int, c *intent.Catalog) ([]Suggestion, error) {
	normalized := match.Normalize(q)
	if normalized == "" || limit <= 0 || c.Len() == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(s.buildQuery(normalized), c.Len(), 0, false)
	res, err := s.search(c, req)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("suggest search: %w", err)
	}

	out := make([]Suggestion, 0, len(res.Hits))
	for _, hit := range res.Hits {
		it, err := c.Get(hit.ID)
		if err != nil {
			continue
		}
		out = append(out, Suggestion{ID: it.ID, Title: it.Title, Score: hit.Score})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		if n := cmp.Compare(b.Score, a.Score); n != 0 {
			return n
		}
		return cmp.Compare(c.Index(a.ID), c.Index(b.ID))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close releases the index. Suggest fails with ErrClosed afterwards.
func (s *Suggester) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	s.fingerprint = ""
	return err
}

func (s *Suggester) buildQuery(text string) query.Query {
	fields := []struct {
		name  string
		boost float64
	}{
		{fieldTitle, s.cfg.TitleBoost},
		{fieldUtterances, s.cfg.UtteranceBoost},
		{fieldTags, s.cfg.TagsBoost},
	}

	queries := make([]query.Query, 0, len(fields))
	for _, f := range fields {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(f.name)
		mq.SetBoost(f.boost)
		queries = append(queries, mq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// search runs req against the index for c. The index is rebuilt when the
// catalog fingerprint differs from the cached one. The search runs under the
// lock so a concurrent rebuild cannot close the index mid-query.
func (s *Suggester) search(c *intent.Catalog, req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	fp := c.Fingerprint()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	if s.index != nil && s.fingerprint == fp {
		defer s.mu.RUnlock()
		return s.index.Search(req)
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.index == nil || s.fingerprint != fp {
		idx, err := buildIndex(c)
		if err != nil {
			return nil, err
		}
		if s.index != nil {
			_ = s.index.Close()
		}
		s.index = idx
		s.fingerprint = fp
	}
	return s.index.Search(req)
}

func buildIndex(c *intent.Catalog) (bleve.Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create suggest index: %w", err)
	}

	batch := idx.NewBatch()
	for _, it := range c.Intents() {
		doc := map[string]any{
			fieldTitle:      it.Title,
			fieldUtterances: it.Utterances,
			fieldTags:       it.Tags,
		}
		if err := batch.Index(it.ID, doc); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("index intent %s: %w", it.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("build suggest index: %w", err)
	}
	return idx, nil
}
