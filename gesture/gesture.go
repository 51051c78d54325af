package gesture

import (
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

// TriggerKey identifies the modifier key that arms the double-press gesture.
// Left and right physical variants count as the same identity.
type TriggerKey int

const (
	KeyCtrl TriggerKey = iota
	KeyShift
	KeyAlt
)

// TriggerMode selects which gesture surfaces the popup.
type TriggerMode int

const (
	ModeDoublePress TriggerMode = iota
	ModeSelectMove
)

// Config is the runtime-replaceable gesture configuration. It is replaced
// wholesale on update, never partially mutated.
type Config struct {
	Key      TriggerKey
	Mode     TriggerMode
	Interval time.Duration
}

// ParseKey maps a config string to a trigger key.
func ParseKey(s string) (TriggerKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ctrl", "control":
		return KeyCtrl, nil
	case "shift":
		return KeyShift, nil
	case "alt":
		return KeyAlt, nil
	}
	return KeyCtrl, fmt.Errorf("unknown trigger key %q", s)
}

// ParseMode maps a config string to a trigger mode.
func ParseMode(s string) (TriggerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "double_press":
		return ModeDoublePress, nil
	case "select_move":
		return ModeSelectMove, nil
	}
	return ModeDoublePress, fmt.Errorf("unknown trigger mode %q", s)
}

// SignalKind discriminates the two outward signals.
type SignalKind int

const (
	SignalShowPopup SignalKind = iota
	SignalHidePopup
)

// Signal is one outward emission. X/Y carry the popup anchor for ShowPopup.
type Signal struct {
	Kind SignalKind
	X, Y float64
}

const (
	// selectionValidity bounds how long an armed selection waits for its
	// confirming movement.
	selectionValidity = 2 * time.Second
	// dragThresholdPx is the minimum drag distance that arms a pending
	// selection on release.
	dragThresholdPx = 40.0
	// moveThresholdPx is the minimum post-selection movement that fires the
	// popup in select-move mode.
	moveThresholdPx = 30.0

	primaryButton = 1
	escapeRawcode = 27
)

// rawcodesFor returns the physical key variants for a trigger identity,
// matching left/right modifier virtual-key codes.
func rawcodesFor(key TriggerKey) []uint16 {
	switch key {
	case KeyCtrl:
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case KeyShift:
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case KeyAlt:
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	}
	return nil
}

type pendingSelection struct {
	x, y float64
	at   time.Time
}

// Detector classifies the global input event stream into popup gestures.
// It owns one background goroutine for the process lifetime; all state is
// guarded by mu, held only inside a handler body. Signals are emitted after
// the lock is released so the sink can never re-enter the handler.
type Detector struct {
	cfgMu sync.Mutex
	cfg   Config

	mu               sync.Mutex
	mouseX, mouseY   float64
	dragActive       bool
	dragX, dragY     float64
	pending          *pendingSelection
	lastTriggerPress time.Time
	pressCount       uint32

	sink chan<- Signal
}

func New(cfg Config) *Detector {
	if cfg.Interval <= 0 {
		cfg.Interval = 400 * time.Millisecond
	}
	return &Detector{cfg: cfg}
}

// UpdateConfig atomically replaces the configuration. It takes effect on the
// next event; past events are not replayed.
func (d *Detector) UpdateConfig(cfg Config) {
	if cfg.Interval <= 0 {
		cfg.Interval = 400 * time.Millisecond
	}
	d.cfgMu.Lock()
	d.cfg = cfg
	d.cfgMu.Unlock()
	log.Printf("Gesture: config updated: key=%d mode=%d interval=%s", cfg.Key, cfg.Mode, cfg.Interval)
}

// Config returns the current configuration value.
func (d *Detector) Config() Config {
	d.cfgMu.Lock()
	defer d.cfgMu.Unlock()
	return d.cfg
}

// Start spawns the listener goroutine over the global input hook. The loop
// runs until process exit; if the hook cannot start or its channel closes,
// the failure is logged and gesture detection stays disabled until restart.
func (d *Detector) Start(sink chan<- Signal) {
	d.sink = sink

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in gesture goroutine: %v", r)
			}
		}()

		evChan := hook.Start()
		if evChan == nil {
			log.Printf("ERROR: input hook failed to start; gesture detection disabled")
			return
		}
		log.Printf("Gesture: input hook started")

		for ev := range evChan {
			d.handle(ev)
		}
		log.Printf("Gesture: input hook channel closed; gesture detection disabled")
	}()
}

func (d *Detector) handle(ev hook.Event) {
	switch ev.Kind {
	case hook.MouseMove, hook.MouseDrag:
		d.handleMove(float64(ev.X), float64(ev.Y))
	case hook.MouseDown:
		if ev.Button == primaryButton {
			d.handleButtonPress()
		}
	case hook.MouseUp:
		if ev.Button == primaryButton {
			d.handleButtonRelease()
		}
	case hook.KeyDown:
		d.handleKeyPress(ev.Rawcode)
	}
}

// handleMove updates the pointer position and drives the selection-then-move
// sub-machine. The trigger is single-shot: an armed selection fires at most
// once, and expires silently after its validity window.
func (d *Detector) handleMove(x, y float64) {
	cfg := d.Config()

	var sig *Signal
	d.mu.Lock()
	d.mouseX, d.mouseY = x, y
	if d.pending != nil {
		if time.Since(d.pending.at) < selectionValidity {
			if cfg.Mode == ModeSelectMove && distance(x, y, d.pending.x, d.pending.y) > moveThresholdPx {
				d.pending = nil
				sig = &Signal{Kind: SignalShowPopup, X: x, Y: y}
			}
		} else {
			d.pending = nil
		}
	}
	d.mu.Unlock()

	if sig != nil {
		log.Printf("Gesture: select-move trigger at (%.0f, %.0f)", x, y)
		d.emit(*sig)
	}
}

func (d *Detector) handleButtonPress() {
	d.mu.Lock()
	d.dragActive = true
	d.dragX, d.dragY = d.mouseX, d.mouseY
	d.pending = nil
	d.mu.Unlock()

	// Any click dismisses a visible popup.
	d.emit(Signal{Kind: SignalHidePopup})
}

func (d *Detector) handleButtonRelease() {
	d.mu.Lock()
	if d.dragActive {
		dist := distance(d.mouseX, d.mouseY, d.dragX, d.dragY)
		if dist > dragThresholdPx {
			// A drag this long likely selected text; arm the follow-up.
			d.pending = &pendingSelection{x: d.mouseX, y: d.mouseY, at: time.Now()}
			log.Printf("Gesture: selection candidate armed (drag %.1fpx)", dist)
		}
	}
	d.dragActive = false
	d.mu.Unlock()
}

// handleKeyPress drives the double-press sub-machine. Escape always hides,
// regardless of the configured trigger or mode.
func (d *Detector) handleKeyPress(rawcode uint16) {
	if rawcode == escapeRawcode {
		d.emit(Signal{Kind: SignalHidePopup})
		return
	}

	cfg := d.Config()
	if !matchesKey(rawcode, cfg.Key) || cfg.Mode != ModeDoublePress {
		return
	}

	var sig *Signal
	d.mu.Lock()
	now := time.Now()
	if now.Sub(d.lastTriggerPress) < cfg.Interval {
		d.pressCount++
	} else {
		d.pressCount = 1
	}
	d.lastTriggerPress = now

	if d.pressCount >= 2 {
		// Completed pair; a third press starts a fresh count.
		d.pressCount = 0
		sig = &Signal{Kind: SignalShowPopup, X: d.mouseX, Y: d.mouseY}
	}
	d.mu.Unlock()

	if sig != nil {
		log.Printf("Gesture: double-press trigger at (%.0f, %.0f)", sig.X, sig.Y)
		d.emit(*sig)
	}
}

// emit forwards a signal without blocking the event handler. A full sink
// drops the signal; gestures are momentary and must not stall the hook.
func (d *Detector) emit(sig Signal) {
	if d.sink == nil {
		return
	}
	select {
	case d.sink <- sig:
	default:
		log.Printf("Gesture: signal sink full, dropping %v", sig.Kind)
	}
}

func matchesKey(rawcode uint16, key TriggerKey) bool {
	for _, rc := range rawcodesFor(key) {
		if rc == rawcode {
			return true
		}
	}
	return false
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
