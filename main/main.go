package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"context-spotlight/ai"
	"context-spotlight/config"
	"context-spotlight/eventloop"
	"context-spotlight/extractor"
	"context-spotlight/gesture"
	"context-spotlight/logutil"
	"context-spotlight/popup"
	"context-spotlight/router"
	"context-spotlight/rules"
	"context-spotlight/tray"
	"context-spotlight/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	triggerKey, err := gesture.ParseKey(cfg.TriggerKey)
	if err != nil {
		log.Fatalf("Invalid HOTKEY_KEY: %v", err)
	}
	triggerMode, err := gesture.ParseMode(cfg.TriggerMode)
	if err != nil {
		log.Fatalf("Invalid HOTKEY_MODE: %v", err)
	}

	paths := config.DefaultPaths()
	settings := config.NewSettingsStore(paths)
	if s := settings.Load(); s.AI.Enabled {
		log.Printf("AI enabled: model=%s key=%s", s.AI.Model, logutil.RedactKey(s.AI.APIKey))
	}

	ext, err := extractor.New()
	if err != nil {
		log.Fatalf("Failed to initialize clipboard: %v", err)
	}

	rt := router.New(paths)
	aiClient := ai.New(settings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.Watch(ctx); err != nil {
		log.Printf("Rule file watching unavailable, relying on freshness checks: %v", err)
	}

	pool := worker.New(0, captureAndMatch(ext, rt, aiClient))
	defer pool.Close()

	loop := eventloop.New(pool, popup.LogSink{})
	loop.SetDeadline(10 * time.Second)

	detector := gesture.New(gesture.Config{
		Key:      triggerKey,
		Mode:     triggerMode,
		Interval: time.Duration(cfg.IntervalMS) * time.Millisecond,
	})
	detector.Start(loop.SignalSink())

	log.Printf("Context Spotlight initialized")
	log.Printf("Trigger: key=%s mode=%s interval=%dms", cfg.TriggerKey, cfg.TriggerMode, cfg.IntervalMS)
	log.Printf("Rules: %d loaded from %s", rt.RuleCount(), rt.SourcePath())

	go tray.Run(tray.Config{
		Title:   "Context Spotlight",
		Tooltip: fmt.Sprintf("Context Spotlight - %d rules", rt.RuleCount()),
		OnReload: func() {
			rt.ForceReload()
			settings.Invalidate()
			if fresh, err := config.Load(); err == nil {
				if key, err := gesture.ParseKey(fresh.TriggerKey); err == nil {
					if mode, err := gesture.ParseMode(fresh.TriggerMode); err == nil {
						detector.UpdateConfig(gesture.Config{
							Key:      key,
							Mode:     mode,
							Interval: time.Duration(fresh.IntervalMS) * time.Millisecond,
						})
					}
				}
			}
			tray.UpdateTooltip(fmt.Sprintf("Context Spotlight - %d rules", rt.RuleCount()))
		},
		OnQuit: cancel,
	})
	defer tray.Quit()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
	}
}

// captureAndMatch builds the worker pipeline: read the selection, resolve the
// foreground process, match rules, and drop rules the process is out of scope
// for. AI actions are dropped entirely for blacklisted processes.
func captureAndMatch(ext *extractor.Extractor, rt *router.Router, aiClient *ai.Client) worker.RunFunc {
	return func(ctx context.Context, j worker.Job) (worker.Result, error) {
		text, ok := ext.Capture()
		if !ok {
			return worker.Result{}, errors.New("no text captured")
		}

		process := ext.ForegroundProcess()
		blacklisted := aiClient.Blacklisted(process)
		if blacklisted {
			log.Printf("Main: process %q is blacklisted, skipping AI actions", process)
		}

		var actions []rules.Rule
		for _, r := range rt.Match(text) {
			if !r.AppliesTo(process) {
				continue
			}
			if blacklisted && r.Action.Kind().IsAI() {
				continue
			}
			actions = append(actions, r)
		}

		return worker.Result{
			X: j.X, Y: j.Y,
			Text:    text,
			Process: process,
			Actions: actions,
		}, nil
	}
}
