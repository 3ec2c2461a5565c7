package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scriptsync/scriptsync/internal/metrics"
	"github.com/scriptsync/scriptsync/internal/state"
	"github.com/scriptsync/scriptsync/internal/watcher"
	"github.com/scriptsync/scriptsync/pkg/logging"
	"github.com/scriptsync/scriptsync/pkg/models"
	"github.com/scriptsync/scriptsync/pkg/session"
	"github.com/scriptsync/scriptsync/pkg/sync"
)

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	debounce := fs.Duration("debounce", 500*time.Millisecond, "settle time before a change burst is uploaded")
	fs.Parse(args)

	cfg, login := loadEnv(*manifest)

	if cfg.MetricsAddr != "" {
		go func() {
			logging.Info("metrics endpoint", logging.String("addr", cfg.MetricsAddr))
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				logging.Error("metrics endpoint failed", logging.Err(err))
			}
		}()
	}

	// One session per change burst; bursts never overlap.
	syncFn := func(paths []string) error {
		st, err := state.Load(cfg.ScriptRoot)
		if err != nil {
			return err
		}
		scripts := make([]*models.Script, 0, len(paths))
		for _, path := range paths {
			s, err := localRecord(cfg, st, path)
			if err != nil {
				return err
			}
			scripts = append(scripts, s)
		}
		done, err := session.Run(context.Background(), login, sync.UploadAll(scripts))
		persistHashes(st, done)
		for _, s := range done {
			if s.Conflict {
				logging.Warn("conflict pending, not uploaded",
					logging.String("script", s.Name))
			}
		}
		return err
	}

	w, err := watcher.New(cfg.ScriptRoot, *debounce, syncFn)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		fail("%v", err)
	}
	logging.Info("watch stopped")
}
