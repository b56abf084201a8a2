package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	dbconnector "warnsync"
	"warnsync/internal/config"
	"warnsync/internal/feed"
	"warnsync/internal/logging"
	"warnsync/internal/notify"
	"warnsync/internal/poller"
	"warnsync/internal/syncer"
)

// app is everything a command needs, built once from the config file.
type app struct {
	cfg    *config.Config
	log    *logrus.Entry
	engine *syncer.Engine
}

func newApp(cfgPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New("warnsync", cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, &config.ConfigError{Path: cfgPath, Err: err}
	}
	engine := syncer.New(cfg.DB, dbconnector.NewConnector, syncer.Statements{
		Select: cfg.SQL.Select,
		Update: cfg.SQL.Update,
		Insert: cfg.SQL.Insert,
		Delete: cfg.SQL.Delete,
	}, syncer.Options{
		WarnTypeID: cfg.WarnTypeID,
		Timeout:    cfg.Poll.Timeout,
		Logger:     log,
	})
	return &app{cfg: cfg, log: log, engine: engine}, nil
}

func (a *app) newPoller(notifier poller.Notifier, watch bool) *poller.Poller {
	policy, _ := feed.ParseNumericPolicy(a.cfg.Parse.OnNumericError)
	loader := feed.NewLoader(feed.NewParser(a.cfg.Parse.Delimiter), policy)
	opts := poller.Options{
		Interval: a.cfg.Poll.Interval,
		Notifier: notifier,
		Logger:   a.log,
	}
	if watch {
		opts.WatchRoot = a.cfg.Path
	}
	return poller.New(feed.Locator{Root: a.cfg.Path}, loader, a.engine, opts)
}

// connectNotifier returns nil when notifications are off or NATS is down;
// the loop runs without them rather than refusing to start.
func (a *app) connectNotifier() *notify.Publisher {
	if a.cfg.NATS.URL == "" {
		return nil
	}
	pub, err := notify.NewPublisher(a.cfg.NATS.URL, a.cfg.NATS.Subject)
	if err != nil {
		a.log.WithError(err).Warn("sync notifications disabled")
		return nil
	}
	return pub
}

// withApp loads the config named by --config before running fn.
func withApp(fn func(cmd *cobra.Command, a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		a, err := newApp(path, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		a.log.WithField("config", a.cfg.String()).Debug("configuration loaded")
		return fn(cmd, a)
	}
}
