// Package poller drives the feed: on every tick it looks for a newer
// published file, loads it and replaces the table contents with it.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"warnsync/internal/feed"
	"warnsync/internal/notify"
	"warnsync/internal/syncer"
)

const defaultInterval = 60 * time.Second

type Finder interface {
	LatestDirectory() (string, error)
	LatestFile(dir string) (string, error)
}

type Loader interface {
	LoadFile(path string) ([]feed.DataRecord, feed.LoadStats, error)
}

type Syncer interface {
	SyncBatch(ctx context.Context, records []feed.DataRecord, publicationTime string) (syncer.SyncResult, error)
}

type Notifier interface {
	Publish(evt notify.SyncedEvent) error
}

type Outcome string

const (
	OutcomeNoDirectory  Outcome = "no-directory"
	OutcomeNoFile       Outcome = "no-file"
	OutcomeUpToDate     Outcome = "up-to-date"
	OutcomeBadTimestamp Outcome = "bad-timestamp"
	OutcomeLoadFailed   Outcome = "load-failed"
	OutcomeEmptyBatch   Outcome = "empty-batch"
	OutcomeSyncFailed   Outcome = "sync-failed"
	OutcomeSynced       Outcome = "synced"
)

// Failed reports whether the outcome is an error the operator should see.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeBadTimestamp, OutcomeLoadFailed, OutcomeSyncFailed:
		return true
	}
	return false
}

type TickResult struct {
	ID              string
	Outcome         Outcome
	File            string
	PublicationTime string
	Stats           feed.LoadStats
	Deleted         int64
	Inserted        int
	Err             error
}

type Options struct {
	Interval time.Duration
	// WatchRoot, when set, starts a filesystem watcher on the feed root that
	// triggers a tick shortly after files change.
	WatchRoot   string
	WatchSettle time.Duration
	Notifier    Notifier
	Logger      logrus.FieldLogger
}

// Status is a point-in-time copy of the loop state.
type Status struct {
	Marker          string     `json:"marker"`
	PublicationTime string     `json:"publicationTime,omitempty"`
	LastOutcome     Outcome    `json:"lastOutcome,omitempty"`
	LastError       string     `json:"lastError,omitempty"`
	LastTick        *time.Time `json:"lastTick,omitempty"`
	LastSync        *time.Time `json:"lastSync,omitempty"`
	LastRecords     int        `json:"lastRecords"`
	Ticks           int        `json:"ticks"`
	Syncs           int        `json:"syncs"`
	Failures        int        `json:"failures"`
}

type Poller struct {
	finder   Finder
	loader   Loader
	syncer   Syncer
	notifier Notifier
	opts     Options
	log      logrus.FieldLogger

	// tickMu serializes ticks so a watcher trigger never overlaps the ticker.
	tickMu sync.Mutex

	mu     sync.RWMutex
	status Status
}

func New(finder Finder, loader Loader, s Syncer, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.WatchSettle <= 0 {
		opts.WatchSettle = defaultSettle
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Poller{
		finder:   finder,
		loader:   loader,
		syncer:   s,
		notifier: opts.Notifier,
		opts:     opts,
		log:      opts.Logger.WithField("component", "poller"),
	}
}

// Marker is the last file synced successfully, "" before the first sync.
func (p *Poller) Marker() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.Marker
}

func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Run ticks immediately and then every interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	var trigger <-chan struct{}
	if p.opts.WatchRoot != "" {
		w, err := newWatcher(p.opts.WatchRoot, p.opts.WatchSettle, p.log)
		if err != nil {
			p.log.WithError(err).Warn("filesystem watch disabled")
		} else {
			defer w.Close()
			trigger = w.C
		}
	}

	p.log.WithField("interval", p.opts.Interval).Info("polling started")
	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("polling stopped")
			return nil
		case <-ticker.C:
			p.Tick(ctx)
		case <-trigger:
			p.log.Debug("tick triggered by filesystem change")
			p.Tick(ctx)
		}
	}
}

// Tick runs one locate, load and sync cycle. The marker only moves when the
// sync commits; every other outcome leaves it for the next tick to retry.
func (p *Poller) Tick(ctx context.Context) TickResult {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	res := TickResult{ID: uuid.NewString()}
	log := p.log.WithField("tick", res.ID)
	p.tick(ctx, log, &res)
	p.record(res)
	return res
}

func (p *Poller) tick(ctx context.Context, log logrus.FieldLogger, res *TickResult) {
	dir, err := p.finder.LatestDirectory()
	if err != nil {
		log.WithError(err).Warn("cannot list feed root")
	}
	if dir == "" {
		res.Outcome, res.Err = OutcomeNoDirectory, err
		return
	}

	file, err := p.finder.LatestFile(dir)
	if err != nil {
		log.WithError(err).Warn("cannot list publication directory")
	}
	if file == "" {
		res.Outcome, res.Err = OutcomeNoFile, err
		return
	}
	res.File = file
	log = log.WithField("file", file)

	if file <= p.Marker() {
		res.Outcome = OutcomeUpToDate
		log.Debug("no newer publication")
		return
	}

	pub, err := feed.Decompact(feed.Stem(file))
	if err != nil {
		res.Outcome, res.Err = OutcomeBadTimestamp, err
		log.WithError(err).Error("file name is not a valid timestamp")
		return
	}
	res.PublicationTime = pub

	records, stats, err := p.loader.LoadFile(file)
	res.Stats = stats
	if err != nil {
		res.Outcome, res.Err = OutcomeLoadFailed, err
		if errors.Is(err, feed.ErrOpen) {
			log.WithError(err).Warn("file not readable yet")
		} else {
			log.WithError(err).Error("load failed")
		}
		return
	}
	if stats.SkippedArity > 0 || stats.SkippedNumeric > 0 {
		log.WithFields(logrus.Fields{
			"skipped_arity":   stats.SkippedArity,
			"skipped_numeric": stats.SkippedNumeric,
		}).Warn("lines dropped")
	}
	if len(records) == 0 {
		res.Outcome = OutcomeEmptyBatch
		log.Warn("file has no records")
		return
	}

	out, err := p.syncer.SyncBatch(ctx, records, pub)
	if err != nil {
		res.Outcome, res.Err = OutcomeSyncFailed, err
		log.WithError(err).Error("sync failed, will retry next tick")
		return
	}
	res.Outcome = OutcomeSynced
	res.Deleted, res.Inserted = out.Deleted, out.Inserted
	p.advance(file, pub, out.Inserted)
	log.WithFields(logrus.Fields{
		"publication_time": pub,
		"deleted":          out.Deleted,
		"inserted":         out.Inserted,
	}).Info("publication synced")

	if p.notifier != nil {
		evt := notify.SyncedEvent{
			TickID:          res.ID,
			File:            file,
			PublicationTime: pub,
			Records:         out.Inserted,
			Deleted:         out.Deleted,
			SyncedAt:        time.Now(),
		}
		if err := p.notifier.Publish(evt); err != nil {
			log.WithError(err).Warn("sync notification not sent")
		}
	}
}

func (p *Poller) advance(file, pub string, records int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Marker = file
	p.status.PublicationTime = pub
	now := time.Now()
	p.status.LastSync = &now
	p.status.LastRecords = records
	p.status.Syncs++
}

func (p *Poller) record(res TickResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Ticks++
	now := time.Now()
	p.status.LastTick = &now
	p.status.LastOutcome = res.Outcome
	p.status.LastError = ""
	if res.Err != nil {
		p.status.LastError = res.Err.Error()
	}
	if res.Outcome.Failed() {
		p.status.Failures++
	}
}
