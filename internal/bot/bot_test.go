package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/xplorer/internal/aggregator"
	"github.com/LJTian/xplorer/internal/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollector struct {
	name      string
	n         int
	err       error
	lastQuery string
	lastMax   int
}

func (s *stubCollector) Name() string        { return s.name }
func (s *stubCollector) Description() string { return "stub for " + s.name }

func (s *stubCollector) Collect(_ context.Context, query string, maxResults int) ([]collector.Article, error) {
	s.lastQuery, s.lastMax = query, maxResults
	if s.err != nil {
		return nil, s.err
	}
	out := []collector.Article{}
	for i := 0; i < s.n && i < maxResults; i++ {
		out = append(out, collector.Article{
			Title:   fmt.Sprintf("%s paper %d", s.name, i+1),
			Authors: []string{"A"},
			Source:  s.name,
		})
	}
	return out, nil
}

func newBot(t *testing.T, settings Settings, cs ...collector.Collector) *Bot {
	t.Helper()
	r, err := collector.NewRegistry(cs...)
	require.NoError(t, err)
	return New(aggregator.New(r), settings)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCollectUsesDefaults(t *testing.T) {
	arxiv := &stubCollector{name: "Arxiv", n: 3}
	b := newBot(t, Settings{DefaultQuery: "cat:cs.AI", DefaultMaxResults: 10}, arxiv)

	reply, err := b.Handle(context.Background(), Command{Name: CommandCollect})
	require.NoError(t, err)
	assert.Contains(t, reply, "Found 3 article(s) from arxiv:")
	assert.Equal(t, "cat:cs.AI", arxiv.lastQuery)
	assert.Equal(t, 10, arxiv.lastMax)
}

func TestCollectOptionsAndClamping(t *testing.T) {
	arxiv := &stubCollector{name: "Arxiv", n: 1}
	b := newBot(t, Settings{DefaultQuery: "cat:cs.AI", DefaultMaxResults: 10}, arxiv)

	_, err := b.Handle(context.Background(), Command{Name: CommandCollect, Options: Options{
		Source:     strPtr("ARXIV"),
		Query:      strPtr("all:diffusion"),
		MaxResults: intPtr(50),
	}})
	require.NoError(t, err)
	assert.Equal(t, "all:diffusion", arxiv.lastQuery)
	assert.Equal(t, 20, arxiv.lastMax)

	_, err = b.Handle(context.Background(), Command{Name: CommandCollect, Options: Options{
		Query:      strPtr("  "),
		MaxResults: intPtr(0),
	}})
	require.NoError(t, err)
	assert.Equal(t, "cat:cs.AI", arxiv.lastQuery)
	assert.Equal(t, 1, arxiv.lastMax)
}

func TestCollectAllMergesAndLabels(t *testing.T) {
	b := newBot(t, Settings{DefaultQuery: "q", DefaultMaxResults: 10},
		&stubCollector{name: "Arxiv", n: 4},
		&stubCollector{name: "Broken", err: errors.New("down")},
		&stubCollector{name: "Other", n: 3},
	)

	reply, err := b.Handle(context.Background(), Command{Name: CommandCollect, Options: Options{Source: strPtr("all")}})
	require.NoError(t, err)
	assert.Contains(t, reply, "Found 7 article(s) from all:")
	assert.Contains(t, reply, "1. Arxiv paper 1")
	assert.Contains(t, reply, "5. Other paper 1")
	assert.Contains(t, reply, "_...and 2 more articles_")
	assert.NotContains(t, reply, "down")
}

func TestCollectErrorReplies(t *testing.T) {
	cause := &collector.CollectionError{Collector: "Arxiv", Kind: collector.ErrTransport, Cause: errors.New("unexpected status 503")}
	b := newBot(t, Settings{DefaultQuery: "q", DefaultMaxResults: 5}, &stubCollector{name: "Arxiv", err: cause})

	reply, err := b.Handle(context.Background(), Command{Name: CommandCollect, Options: Options{Source: strPtr("nature")}})
	require.NoError(t, err)
	assert.Equal(t, "Unknown source: nature", reply)

	reply, err = b.Handle(context.Background(), Command{Name: CommandCollect})
	require.NoError(t, err)
	assert.Equal(t, "Error: Arxiv: transport failure: unexpected status 503", reply)
}

func TestCollectNoArticles(t *testing.T) {
	b := newBot(t, Settings{DefaultQuery: "q", DefaultMaxResults: 5},
		&stubCollector{name: "Arxiv"},
		&stubCollector{name: "Example Articles"},
	)

	reply, err := b.Handle(context.Background(), Command{Name: CommandCollect, Options: Options{Source: strPtr("example articles")}})
	require.NoError(t, err)
	assert.Equal(t, "No articles found from example articles.", reply)
}

func TestSourcesListing(t *testing.T) {
	b := newBot(t, Settings{DefaultMaxResults: 5},
		&stubCollector{name: "Arxiv"},
		&stubCollector{name: "Example Articles"},
	)

	reply, err := b.Handle(context.Background(), Command{Name: CommandSources})
	require.NoError(t, err)
	assert.Equal(t, "Available Sources:\n\n"+
		"• Arxiv: stub for Arxiv\n"+
		"• Example Articles: stub for Example Articles\n", reply)
}

func TestScheduleReply(t *testing.T) {
	b := newBot(t, Settings{DefaultMaxResults: 5, CronSpec: "0 0 9 * * *", ChannelID: "42"})
	b.now = func() time.Time { return time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC) }

	reply, err := b.Handle(context.Background(), Command{Name: CommandSchedule})
	require.NoError(t, err)
	assert.Contains(t, reply, "Cron: 0 0 9 * * *")
	assert.Contains(t, reply, "Next run: 2024-01-03T09:00:00Z")
	assert.Contains(t, reply, "automatically collect")

	b.settings.ChannelID = ""
	assert.Contains(t, b.Schedule(), "disabled")

	b.settings.CronSpec = "every day"
	assert.Contains(t, b.Schedule(), "Invalid schedule")
}

func TestUnknownCommand(t *testing.T) {
	b := newBot(t, Settings{DefaultMaxResults: 5})

	_, err := b.Handle(context.Background(), Command{Name: "dance"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestDigestRunsAllSources(t *testing.T) {
	arxiv := &stubCollector{name: "Arxiv", n: 2}
	other := &stubCollector{name: "Other", n: 1}
	b := newBot(t, Settings{DefaultQuery: "cat:cs.LG", DefaultMaxResults: 3}, arxiv, other)

	text, count := b.Digest(context.Background())
	assert.Equal(t, 3, count)
	assert.True(t, strings.HasPrefix(text, "Found 3 article(s) from scheduled collection:"))
	assert.Equal(t, "cat:cs.LG", other.lastQuery)
	assert.Equal(t, 3, other.lastMax)
}

func TestCommandJSON(t *testing.T) {
	var cmd Command
	err := json.Unmarshal([]byte(`{"command_name":"collect","options":{"source":"all","max_results":7}}`), &cmd)
	require.NoError(t, err)

	assert.Equal(t, CommandCollect, cmd.Name)
	require.NotNil(t, cmd.Options.Source)
	assert.Equal(t, "all", *cmd.Options.Source)
	assert.Nil(t, cmd.Options.Query)
	require.NotNil(t, cmd.Options.MaxResults)
	assert.Equal(t, 7, *cmd.Options.MaxResults)
}
