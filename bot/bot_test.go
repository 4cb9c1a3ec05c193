package bot

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonwraymond/faqintent/intent"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}

func newBot(t testing.TB, opts Options) *Bot {
	t.Helper()
	b, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, b.Close())
	})
	return b
}

func chipIDs(chips []Chip) []string {
	ids := make([]string, len(chips))
	for i, c := range chips {
		ids[i] = c.ID
	}
	return ids
}

func greetingSource() *intent.Source {
	return &intent.Source{
		Intents: []intent.Intent{
			{
				ID:         "greet",
				Title:      "Greeting",
				Utterances: []string{"hello there"},
				Tags:       []string{"hello"},
				Answer:     "Hi!",
			},
		},
	}
}

func TestAsk_Answer(t *testing.T) {
	b := newBot(t, Options{})

	reply, err := b.Ask(context.Background(), "  show me your cv ")
	require.NoError(t, err)

	assert.Equal(t, KindAnswer, reply.Kind)
	assert.True(t, reply.Matched())
	assert.Equal(t, "resume", reply.IntentID)
	assert.Equal(t, "Resume", reply.Title)
	assert.Equal(t, "show me your cv", reply.Query)
	assert.InDelta(t, 1.22, reply.Score, 1e-9)
	assert.Contains(t, reply.Text, "download my resume")
	require.Len(t, reply.Links, 1)
	assert.Equal(t, "Download Resume", reply.Links[0].Label)
	assert.Empty(t, reply.Suggestions)
	assert.NotEmpty(t, reply.ID)
	assert.False(t, reply.Time.IsZero())
}

func TestAsk_UniqueReplyIDs(t *testing.T) {
	b := newBot(t, Options{})

	a, err := b.Ask(context.Background(), "resume")
	require.NoError(t, err)
	c, err := b.Ask(context.Background(), "resume")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestAsk_EmptyQuery(t *testing.T) {
	b := newBot(t, Options{})

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := b.Ask(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery, "query %q", q)
	}
}

func TestAsk_CancelledContext(t *testing.T) {
	b := newBot(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Ask(ctx, "resume")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsk_FallbackWithSearchSuggestions(t *testing.T) {
	b := newBot(t, Options{})

	reply, err := b.Ask(context.Background(), "lab")
	require.NoError(t, err)

	assert.Equal(t, KindFallback, reply.Kind)
	assert.False(t, reply.Matched())
	assert.Equal(t, FallbackText, reply.Text)
	assert.Empty(t, reply.IntentID)
	assert.Equal(t, []Chip{{ID: "behavior-lab", Label: "Model Behavior Lab"}}, reply.Suggestions)
}

func TestAsk_FallbackWithChips(t *testing.T) {
	b := newBot(t, Options{})

	reply, err := b.Ask(context.Background(), "what is the weather today")
	require.NoError(t, err)

	assert.Equal(t, KindFallback, reply.Kind)
	assert.Equal(t, DefaultChips(), reply.Suggestions)
}

func TestAsk_SearchDisabled(t *testing.T) {
	b := newBot(t, Options{SuggestLimit: -1})

	reply, err := b.Ask(context.Background(), "lab")
	require.NoError(t, err)
	assert.Equal(t, DefaultChips(), reply.Suggestions)
}

func TestAsk_Threshold(t *testing.T) {
	// "show me your cv" scores 1.22 for resume.
	b := newBot(t, Options{Threshold: 1.5})

	reply, err := b.Ask(context.Background(), "show me your cv")
	require.NoError(t, err)
	assert.Equal(t, KindFallback, reply.Kind)
}

func TestAsk_SynonymOverride(t *testing.T) {
	withDefaults := newBot(t, Options{})
	reply, err := withDefaults.Ask(context.Background(), "eval")
	require.NoError(t, err)
	assert.Equal(t, "behavior-lab", reply.IntentID)

	without := newBot(t, Options{Synonyms: map[string][]string{}})
	reply, err = without.Ask(context.Background(), "eval")
	require.NoError(t, err)
	assert.Equal(t, KindFallback, reply.Kind)
}

func TestAsk_LogsSelectedIntent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	b := newBot(t, Options{Logger: zap.New(core)})

	_, err := b.Ask(context.Background(), "Show me your CV")
	require.NoError(t, err)

	entries := logs.FilterMessage("intent selected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "resume", fields["intent"])
	assert.Equal(t, "show me your cv", fields["query"])

	_, err = b.Ask(context.Background(), "what is the weather today")
	require.NoError(t, err)
	assert.Len(t, logs.FilterMessage("intent selected").All(), 1)
}

func TestChip(t *testing.T) {
	b := newBot(t, Options{})

	for _, c := range DefaultChips() {
		t.Run(c.Label, func(t *testing.T) {
			reply, err := b.Chip(context.Background(), c.ID)
			require.NoError(t, err)
			assert.Equal(t, c.ID, reply.IntentID)
		})
	}

	_, err := b.Chip(context.Background(), "nope")
	assert.ErrorIs(t, err, intent.ErrNotFound)
}

func TestIntro(t *testing.T) {
	b := newBot(t, Options{})

	reply := b.Intro()
	assert.Equal(t, KindIntro, reply.Kind)
	assert.Equal(t, IntroText, reply.Text)
	assert.Equal(t, DefaultChips(), reply.Suggestions)
}

func TestNew_SkipsUnknownChips(t *testing.T) {
	b := newBot(t, Options{Chips: []Chip{
		{ID: "ghost", Label: "Ghost"},
		{ID: "resume", Label: "CV"},
	}})
	assert.Equal(t, []string{"resume"}, chipIDs(b.Chips()))
}

func TestNew_InvalidSource(t *testing.T) {
	_, err := New(Options{Source: &intent.Source{
		Intents: []intent.Intent{{ID: "a"}, {ID: "a"}},
	}})
	assert.ErrorIs(t, err, intent.ErrDuplicateID)
}

func TestReload(t *testing.T) {
	b := newBot(t, Options{})
	before := b.Catalog()

	require.NoError(t, b.Reload(greetingSource()))
	assert.NotSame(t, before, b.Catalog())
	assert.Equal(t, []string{"greet"}, b.Catalog().IDs())
	assert.Empty(t, b.Chips(), "default chips name intents the new catalog lacks")

	reply, err := b.Ask(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "greet", reply.IntentID)
	assert.Equal(t, "Hi!", reply.Text)

	t.Run("invalid source keeps current catalog", func(t *testing.T) {
		current := b.Catalog()
		err := b.Reload(&intent.Source{Intents: []intent.Intent{{ID: ""}}})
		assert.ErrorIs(t, err, intent.ErrInvalidIntent)
		assert.Same(t, current, b.Catalog())
	})

	t.Run("nil source", func(t *testing.T) {
		assert.ErrorIs(t, b.Reload(nil), ErrNilSource)
	})
}

func TestReload_Concurrent(t *testing.T) {
	b := newBot(t, Options{})
	def, err := intent.DefaultSource()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			src := def
			if i%2 == 0 {
				src = greetingSource()
			}
			assert.NoError(t, b.Reload(src))
		}()
		go func() {
			defer wg.Done()
			reply, err := b.Ask(context.Background(), "hello there")
			assert.NoError(t, err)
			assert.Contains(t, []Kind{KindAnswer, KindFallback}, reply.Kind)
		}()
	}
	wg.Wait()
}
