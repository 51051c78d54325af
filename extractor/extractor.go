package extractor

import (
	"log"
	"runtime"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
	"golang.design/x/clipboard"
)

// copySettleDelay gives the foreground application time to service the copy
// chord before the clipboard is read.
const copySettleDelay = 300 * time.Millisecond

// Extractor captures the user's text selection: it synthesizes the platform
// copy chord, waits for the clipboard to settle, then reads it back.
type Extractor struct {
	copy   func() error
	read   func() string
	settle time.Duration
}

func New() (*Extractor, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return &Extractor{
		copy:   sendCopyChord,
		read:   readClipboardText,
		settle: copySettleDelay,
	}, nil
}

// Capture copies the current selection and reads it back. A failed copy
// chord aborts the capture so stale clipboard content is never surfaced.
// Empty or whitespace-only content reports no capture.
func (e *Extractor) Capture() (string, bool) {
	if err := e.copy(); err != nil {
		log.Printf("Extractor: copy chord failed: %v", err)
		return "", false
	}
	time.Sleep(e.settle)

	text := e.read()
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	log.Printf("Extractor: captured %d chars", len(text))
	return text, true
}

// ForegroundProcess returns the name of the process owning the foreground
// window, used for blacklist and rule-scope checks. Platforms without a
// lookup report "unknown".
func (e *Extractor) ForegroundProcess() string {
	return foregroundProcessName()
}

func sendCopyChord() error {
	if runtime.GOOS == "darwin" {
		return robotgo.KeyTap("c", "cmd")
	}
	return robotgo.KeyTap("c", "ctrl")
}

func readClipboardText() string {
	return string(clipboard.Read(clipboard.FmtText))
}
