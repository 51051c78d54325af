package rules

// Meta identifies a rule. ID is the unique key used for import dedup.
type Meta struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Scope restricts where a rule applies and orders match results. Higher
// priority rules sort earlier; Include lists process names or "*".
type Scope struct {
	Include  []string `json:"include"`
	Priority int      `json:"priority"`
}

// Trigger is the matching condition. Only "regex" triggers are matchable;
// ExtractionPattern is applied downstream to trim the captured text and is
// never consulted during matching.
type Trigger struct {
	Type              string `json:"type"`
	Pattern           string `json:"pattern"`
	ExtractionPattern string `json:"extraction_pattern,omitempty"`
}

// Action describes what a matched rule proposes.
type Action struct {
	Type            string   `json:"type"`
	Template        string   `json:"template"`
	ScriptPath      string   `json:"script_path,omitempty"`
	Arguments       []string `json:"arguments,omitempty"`
	RemoteScriptURL string   `json:"remote_script_url,omitempty"`
}

// Rule is one declarative pattern-to-action mapping.
type Rule struct {
	Meta      Meta    `json:"meta"`
	Scope     Scope   `json:"scope"`
	Trigger   Trigger `json:"trigger"`
	Action    Action  `json:"action"`
	IsRemote  bool    `json:"is_remote,omitempty"`
	RemoteURL string  `json:"remote_url,omitempty"`
}

// AppliesTo reports whether the rule's scope includes the given process name.
// An empty include list or a "*" entry matches every process.
func (r Rule) AppliesTo(process string) bool {
	if len(r.Scope.Include) == 0 {
		return true
	}
	for _, inc := range r.Scope.Include {
		if inc == "*" || inc == process {
			return true
		}
	}
	return false
}

// ActionKind is the closed set of action types, decoded once from the
// persisted string tag so dispatch sites can switch exhaustively.
type ActionKind int

const (
	KindUnknown ActionKind = iota
	KindURL
	KindPath
	KindMath
	KindDOILookup
	KindAITranslate
	KindAISummarize
	KindAIProcess
	KindLocalFormat
	KindScript
)

var kindNames = map[string]ActionKind{
	"url":          KindURL,
	"path":         KindPath,
	"math":         KindMath,
	"doi_lookup":   KindDOILookup,
	"ai_translate": KindAITranslate,
	"ai_summarize": KindAISummarize,
	"ai_process":   KindAIProcess,
	"local_format": KindLocalFormat,
	"script":       KindScript,
}

// Kind decodes the action's string tag. Unrecognized tags decode to
// KindUnknown; such rules still match and surface, they just cannot execute.
func (a Action) Kind() ActionKind {
	if k, ok := kindNames[a.Type]; ok {
		return k
	}
	return KindUnknown
}

// IsAI reports whether the action needs the chat backend.
func (k ActionKind) IsAI() bool {
	return k == KindAITranslate || k == KindAISummarize || k == KindAIProcess
}

func (k ActionKind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}
