package scraper

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesops/giftware-scraper/internal/auth"
	"github.com/salesops/giftware-scraper/internal/models"
	"github.com/salesops/giftware-scraper/internal/ratelimit"
	"github.com/salesops/giftware-scraper/internal/session"
	"github.com/salesops/giftware-scraper/internal/session/sessiontest"
)

const testLoginURL = testBase + "/pages/login"

// catalogPage builds a scripted page holding a working login form plus the
// known product fixtures.
func catalogPage() *sessiontest.Page {
	p := &sessiontest.Page{}
	p.Fixtures = map[string]*sessiontest.Fixture{
		testLoginURL: {
			Title: "Login | Pacific Trading",
			Elements: map[string][]*sessiontest.Element{
				"input[type='email']":    {{}},
				"input[type='password']": {{}},
				"button[type='submit']":  {{OnClick: func() { p.SetURL(testBase + "/account") }}},
			},
		},
		testBase + "/product/12345": productFixture(),
		testBase + "/product/777": {
			Title: "Celtic Knot Box | Pacific Trading",
			HTML:  `<html><h1>Celtic Knot Box</h1></html>`,
			Elements: map[string][]*sessiontest.Element{
				"h1": {{TextValue: "Celtic Knot Box"}},
			},
		},
	}
	return p
}

type pageTracker struct {
	mu    sync.Mutex
	pages []*sessiontest.Page
}

func (tr *pageTracker) factory(build func() *sessiontest.Page) SessionFactory {
	return func() (*session.Session, error) {
		p := build()
		tr.mu.Lock()
		tr.pages = append(tr.pages, p)
		tr.mu.Unlock()
		return session.New(p), nil
	}
}

func newTestOrchestrator(factory SessionFactory, maxFaults int) *Orchestrator {
	authOpts := auth.Options{
		LoginURLs:     []string{testLoginURL},
		FormTimeout:   time.Millisecond,
		VerifyTimeout: time.Millisecond,
	}
	return NewOrchestrator(
		factory,
		auth.New(authOpts, slog.Default()),
		newTestPipeline(nil),
		ratelimit.NewAdaptiveLimiter(0, 0),
		nil,
		OrchestratorOptions{MaxConsecutiveFaults: maxFaults},
		slog.Default(),
	)
}

func TestRunEmitsOneRecordPerItemInOrder(t *testing.T) {
	tracker := &pageTracker{}
	orch := newTestOrchestrator(tracker.factory(catalogPage), 3)

	items := []string{"12345", "99999", "777", "12345"}
	records, err := orch.Run(context.Background(), items, auth.Credentials{Email: "a@b.c", Password: "x"})

	require.NoError(t, err)
	require.Len(t, records, len(items))
	for i, item := range items {
		assert.Equal(t, item, records[i].ItemNumber)
	}

	assert.Equal(t, models.StatusFound, records[0].Status)
	assert.Equal(t, models.StatusNotFound, records[1].Status)
	assert.Equal(t, models.StatusFound, records[2].Status)
	assert.Equal(t, records[0], records[3], "identical inputs yield identical records")

	require.Len(t, tracker.pages, 1)
	assert.Equal(t, 1, tracker.pages[0].Closed, "session released exactly once")
}

func TestRunUnauthenticatedBatchDegradesPricing(t *testing.T) {
	// No login fixture anywhere: authentication fails, the batch proceeds.
	build := func() *sessiontest.Page {
		p := catalogPage()
		delete(p.Fixtures, testLoginURL)
		return p
	}
	tracker := &pageTracker{}
	orch := newTestOrchestrator(tracker.factory(build), 3)

	records, err := orch.Run(context.Background(), []string{"12345"}, auth.Credentials{Email: "a@b.c", Password: "x"})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusFound, records[0].Status)
	assert.Equal(t, models.SentinelLoginRequired, records[0].UnitPrice)
}

func TestRunAbortsAfterConsecutiveFaults(t *testing.T) {
	build := func() *sessiontest.Page {
		return &sessiontest.Page{NavigateErr: assert.AnError}
	}
	tracker := &pageTracker{}
	orch := newTestOrchestrator(tracker.factory(build), 2)

	items := []string{"1", "2", "3", "4", "5"}
	records, err := orch.Run(context.Background(), items, auth.Credentials{Email: "a@b.c", Password: "x"})

	require.NoError(t, err)
	require.Len(t, records, len(items), "aborting must still emit one record per input")
	for i, r := range records {
		assert.Equal(t, items[i], r.ItemNumber)
		assert.Equal(t, models.StatusError, r.Status)
	}
	assert.Equal(t, "batch aborted after consecutive engine faults", records[2].StatusReason)
	assert.Equal(t, "batch aborted after consecutive engine faults", records[4].StatusReason)
}

func TestRunCancelledContextFillsErrorRecords(t *testing.T) {
	tracker := &pageTracker{}
	orch := newTestOrchestrator(tracker.factory(catalogPage), 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []string{"12345", "777"}
	records, err := orch.Run(ctx, items, auth.Credentials{Email: "a@b.c", Password: "x"})

	require.NoError(t, err)
	require.Len(t, records, len(items))
	for i, r := range records {
		assert.Equal(t, items[i], r.ItemNumber)
		assert.Equal(t, models.StatusError, r.Status)
		assert.Equal(t, "run cancelled", r.StatusReason)
	}
}

func TestRunPartitionedPreservesInputOrder(t *testing.T) {
	tracker := &pageTracker{}
	orch := newTestOrchestrator(tracker.factory(catalogPage), 3)

	items := []string{"12345", "99999", "777", "99999"}
	records, err := orch.RunPartitioned(context.Background(), items, auth.Credentials{Email: "a@b.c", Password: "x"}, 2)

	require.NoError(t, err)
	require.Len(t, records, len(items))
	for i, item := range items {
		assert.Equal(t, item, records[i].ItemNumber)
	}

	require.Len(t, tracker.pages, 2, "one session per partition")
	for _, p := range tracker.pages {
		assert.Equal(t, 1, p.Closed)
	}
}

func TestProgressTracksTerminalCounts(t *testing.T) {
	tracker := &pageTracker{}
	orch := newTestOrchestrator(tracker.factory(catalogPage), 3)

	items := []string{"12345", "99999", "777"}
	_, err := orch.Run(context.Background(), items, auth.Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)

	progress := orch.Progress()
	assert.NotEmpty(t, progress.RunID)
	assert.Equal(t, len(items), progress.Total)
	assert.Equal(t, len(items), progress.Processed)
	assert.Equal(t, 2, progress.Found)
	assert.Equal(t, 1, progress.NotFound)
	assert.Zero(t, progress.Errors)
	assert.True(t, progress.Authenticated)
	assert.Len(t, progress.Records, len(items))
}
