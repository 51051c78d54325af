package popup

import (
	"log"

	"context-spotlight/logutil"
	"context-spotlight/worker"
)

// Sink is the UI boundary: it receives match results to render and hide
// requests. Window placement and rendering live behind this interface.
type Sink interface {
	ShowAt(res worker.Result)
	Hide()
}

// LogSink is the default headless sink: it logs what a UI would render.
// Useful for the daemon until a frontend attaches, and for tests.
type LogSink struct{}

func (LogSink) ShowAt(res worker.Result) {
	log.Printf("Popup: show at (%.0f, %.0f): %d actions for %q",
		res.X, res.Y, len(res.Actions), logutil.SanitizeText(res.Text))
	for i, r := range res.Actions {
		log.Printf("Popup:   %d. [%d] %s (%s)", i+1, r.Scope.Priority, r.Meta.Name, r.Action.Type)
	}
}

func (LogSink) Hide() {
	log.Printf("Popup: hide")
}
