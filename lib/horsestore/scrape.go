package horsestore

import (
	"context"
	"errors"
	"hrtools/internal/assert"
	"hrtools/lib/chrono"
	"hrtools/lib/scrapers/horsereality/view"
	"log/slog"
	"sync"
	"sync/atomic"
)

// HorseSource is the part of the view client the scraper needs.
type HorseSource interface {
	GetHorse(ctx context.Context, lifenumber int) (view.Horse, error)
	FetchFoal(ctx context.Context, dam view.Horse) (view.Horse, error)
}

type ScrapeOptions struct {
	Concurrency int
	// Foals also archives the foal shown on a dam's page.
	Foals bool
	Clock chrono.API
	// Progress, when set, is called once per lifenumber after it was handled.
	Progress func()
}

type ScrapeSummary struct {
	Stored int64
	Failed int64
}

type scraper struct {
	source   HorseSource
	store    *Store
	clock    chrono.API
	foals    bool
	progress func()
	wg       *sync.WaitGroup

	stored atomic.Int64
	failed atomic.Int64
}

func (s *scraper) note(ctx context.Context, horse view.Horse) {
	err := s.store.Put(ctx, horse, s.clock.Now())
	if err != nil {
		s.failed.Add(1)
		slog.WarnContext(ctx, "failed to archive horse", "lifenumber", horse.Lifenumber, "err", err)
		return
	}
	s.stored.Add(1)
}

func (s *scraper) scrapeHorse(ctx context.Context, lifenumber int) {
	slog.DebugContext(ctx, "scraping horse", "lifenumber", lifenumber)

	horse, err := s.source.GetHorse(ctx, lifenumber)
	if err != nil {
		s.failed.Add(1)
		slog.WarnContext(ctx, "failed to get horse", "lifenumber", lifenumber, "err", err)
		return
	}
	s.note(ctx, horse)

	if !s.foals || horse.FoalLifenumber == 0 {
		return
	}
	foal, err := s.source.FetchFoal(ctx, horse)
	if errors.Is(err, view.ErrNoFoal) {
		return
	}
	if err != nil {
		s.failed.Add(1)
		slog.WarnContext(ctx, "failed to get foal", "dam", lifenumber, "err", err)
		return
	}
	s.note(ctx, foal)
}

func (s *scraper) worker(ctx context.Context, queue <-chan int) {
	defer s.wg.Done()
	for lifenumber := range queue {
		if ctx.Err() != nil {
			return
		}
		s.scrapeHorse(ctx, lifenumber)
		if s.progress != nil {
			s.progress()
		}
	}
}

// Scrape fetches every lifenumber and archives the result. Individual
// failures are logged and counted, only a cancelled context is returned.
func Scrape(ctx context.Context, source HorseSource, store *Store, lifenumbers []int, opts ScrapeOptions) (ScrapeSummary, error) {
	assert.NotNil(source, "horse source")
	assert.NotNil(store, "store")
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Clock == nil {
		opts.Clock = chrono.StandardImpl{}
	}

	s := &scraper{
		source:   source,
		store:    store,
		clock:    opts.Clock,
		foals:    opts.Foals,
		progress: opts.Progress,
		wg:       &sync.WaitGroup{},
	}

	queue := make(chan int)
	for range opts.Concurrency {
		s.wg.Add(1)
		go s.worker(ctx, queue)
	}

feed:
	for _, lifenumber := range lifenumbers {
		select {
		case queue <- lifenumber:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	s.wg.Wait()

	summary := ScrapeSummary{Stored: s.stored.Load(), Failed: s.failed.Load()}
	return summary, ctx.Err()
}
