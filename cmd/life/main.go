package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"

	"lifegrid/internal/app"
	"lifegrid/internal/fsutil"
	"lifegrid/pkg/sims/life"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New()
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)

	fsys := fsutil.OSFileSystem{}

	var start *life.Grid
	if cfg.InferSize() {
		g, err := life.DecodeFile(fsys, cfg.In)
		if err != nil {
			logger.Fatal(err)
		}
		cfg.Width, cfg.Height = g.Width(), g.Height()
		start = g
	}

	sess, err := app.NewSession(cfg, fsys, logger)
	if err != nil {
		logger.Fatal(err)
	}
	switch {
	case start != nil:
		sess.Adopt(start)
	case cfg.In != "":
		if err := sess.Load(cfg.In); err != nil {
			logger.Fatal(err)
		}
	case cfg.Random:
		sess.Randomize(cfg.Seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extinct := false
	err = sess.Run(ctx, func(snap app.Snapshot) {
		if snap.Population == 0 && !extinct {
			extinct = true
			logger.WithField("generation", snap.Generation).Warn("no live cells left")
		}
	})
	if err != nil && !errors.Is(err, app.ErrGenerationLimit) && !errors.Is(err, context.Canceled) {
		logger.Fatal(err)
	}

	if cfg.Out == "" {
		if err := sess.Export(os.Stdout); err != nil {
			logger.Fatal(err)
		}
		os.Stdout.WriteString("\n")
		return
	}
	if dir := filepath.Dir(cfg.Out); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal(err)
		}
	}
	if err := sess.Save(cfg.Out); err != nil {
		os.Exit(1)
	}
}
