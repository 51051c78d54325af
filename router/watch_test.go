package router

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"context-spotlight/rules"
)

func TestWatchReloadsOnRewrite(t *testing.T) {
	paths := testPaths(t)
	path := writeRules(t, paths, []rules.Rule{
		rule("first", 50, "alpha", "url"),
	})

	rt := New(paths)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rt.Watch(ctx); err != nil {
		t.Fatal(err)
	}

	// Backdate the rewrite so only the watcher-driven forced reload can
	// observe it.
	data, _ := json.Marshal([]rules.Rule{rule("second", 50, "beta", "url")})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("watcher never picked up the rewrite")
		default:
		}
		rt.mu.RLock()
		var loaded string
		if len(rt.compiled) == 1 {
			loaded = rt.compiled[0].Rule.Meta.ID
		}
		rt.mu.RUnlock()
		if loaded == "second" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}
