// Package feeds keeps imported ICS subscriptions in sync with the
// workspace calendar.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"teamcal/internal/config"
	"teamcal/internal/ics"
	appLog "teamcal/internal/log"
	"teamcal/internal/model"
)

// EventSink receives the imported events of one source.
type EventSink interface {
	ReplaceSourceEvents(sourceID string, events []model.Event) (int, error)
}

// Report summarizes one refresh run.
type Report struct {
	Sources  int      `json:"sources"`
	Imported int      `json:"imported"`
	Failed   []string `json:"failed,omitempty"`
}

// maxConcurrentFetches bounds parallel downloads within one run.
const maxConcurrentFetches = 4

// Refresher runs fetch, parse, expand and import for every configured
// subscription. Callers that overlap a running refresh share its result.
type Refresher struct {
	group singleflight.Group

	fetcher  *ics.Fetcher
	sink     EventSink
	sources  []config.ICSConfig
	loc      *time.Location
	horizon  int
	backfill int
	now      func() time.Time
}

// NewRefresher builds a Refresher from the application config.
func NewRefresher(cfg *config.Config, fetcher *ics.Fetcher, sink EventSink, loc *time.Location) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{
		fetcher:  fetcher,
		sink:     sink,
		sources:  cfg.ICS,
		loc:      loc,
		horizon:  cfg.HorizonDays,
		backfill: cfg.BackfillDays,
		now:      time.Now,
	}
}

// Refresh imports every source once. A failing source keeps its
// previously imported events and is listed in Report.Failed; the error
// is non-nil only when every source failed.
//
// The run is shared with concurrent callers, so it ignores cancellation
// of ctx; each fetch is still bounded by the fetcher timeout.
func (r *Refresher) Refresh(ctx context.Context) (Report, error) {
	v, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx))
	})
	if shared {
		appLog.Debug("joined running feed refresh")
	}
	return v.(Report), err
}

func (r *Refresher) refresh(ctx context.Context) (Report, error) {
	now := r.now().In(r.loc)
	expandCfg := ics.ExpandConfig{
		DisplayLocation: r.loc,
		RangeStart:      now.AddDate(0, 0, -r.backfill),
		RangeEnd:        now.AddDate(0, 0, r.horizon),
	}

	active := make([]config.ICSConfig, 0, len(r.sources))
	for _, sc := range r.sources {
		if sc.URL != "" {
			active = append(active, sc)
		}
	}

	imported := make([]int, len(active))
	errs := make([]error, len(active))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, sc := range active {
		g.Go(func() error {
			imported[i], errs[i] = r.importSource(ctx, sc, expandCfg)
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{Sources: len(active)}
	var failed []error
	for i, sc := range active {
		if errs[i] != nil {
			appLog.Error("feed refresh failed", errs[i], "source", sc.SourceID())
			rep.Failed = append(rep.Failed, sc.SourceID())
			failed = append(failed, errs[i])
			continue
		}
		rep.Imported += imported[i]
	}

	appLog.Info("feed refresh completed",
		"sources", rep.Sources,
		"imported", rep.Imported,
		"failed", len(rep.Failed),
	)
	if rep.Sources > 0 && len(failed) == rep.Sources {
		return rep, errors.Join(failed...)
	}
	return rep, nil
}

func (r *Refresher) importSource(ctx context.Context, sc config.ICSConfig, cfg ics.ExpandConfig) (int, error) {
	src := ics.Source{ID: sc.SourceID(), URL: sc.URL}

	res, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		return 0, err
	}
	parsed, err := ics.ParseICS(src, res.Body)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", src.ID, err)
	}
	expanded, err := ics.ExpandOccurrences(parsed, cfg)
	if err != nil {
		return 0, fmt.Errorf("expand %s: %w", src.ID, err)
	}
	return r.sink.ReplaceSourceEvents(src.ID, ics.ToEvents(expanded.Occurrences, sc.EventType))
}

// Schedule runs r.Refresh on the cron spec until ctx is cancelled. The
// returned Cron is already started.
func Schedule(ctx context.Context, spec string, loc *time.Location, r *Refresher) (*cron.Cron, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		if _, err := r.Refresh(ctx); err != nil {
			appLog.Error("scheduled feed refresh failed", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
