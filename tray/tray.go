package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// Config wires tray menu actions back into the application.
type Config struct {
	Title   string
	Tooltip string
	// OnReload is invoked when the user picks "Reload Rules".
	OnReload func()
	// OnQuit is invoked after the tray loop exits.
	OnQuit func()
}

var (
	mu    sync.Mutex
	ready bool
)

// Run starts the system tray loop. It blocks; callers run it on its own
// goroutine.
func Run(cfg Config) {
	systray.Run(func() { onReady(cfg) }, func() {
		if cfg.OnQuit != nil {
			cfg.OnQuit()
		}
	})
}

// Quit asks the tray loop to exit.
func Quit() {
	systray.Quit()
}

// UpdateTooltip replaces the tray tooltip once the tray is up.
func UpdateTooltip(tooltip string) {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		return
	}
	systray.SetTooltip(tooltip)
}

func onReady(cfg Config) {
	systray.SetTitle(cfg.Title)
	systray.SetTooltip(cfg.Tooltip)

	mu.Lock()
	ready = true
	mu.Unlock()

	mReload := systray.AddMenuItem("Reload Rules", "Reload the rule file now")
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mReload.ClickedCh:
				log.Printf("Tray: reload requested")
				if cfg.OnReload != nil {
					cfg.OnReload()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}
