package actions

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"context-spotlight/prober"
	"context-spotlight/rules"
)

// Outcome is the result of executing one action.
type Outcome struct {
	Kind   rules.ActionKind
	Output string
	// Deferred marks actions the dispatcher does not run itself: AI actions
	// go through the chat client once the user picks them.
	Deferred bool
}

// Dispatcher executes matched rule actions. AI actions are reported as
// deferred; everything else runs locally.
type Dispatcher struct {
	Prober *prober.Prober
	// ScriptsDir is where relative script paths are resolved.
	ScriptsDir string
}

// Execute runs the rule's action against the captured text. The trigger's
// extraction pattern, when present, trims the text before substitution.
func (d *Dispatcher) Execute(ctx context.Context, rule rules.Rule, text string) (Outcome, error) {
	kind := rule.Action.Kind()
	payload := extractPayload(rule, text)

	switch kind {
	case rules.KindURL:
		target := expandTemplate(rule.Action.Template, payload)
		if err := openNative(target); err != nil {
			return Outcome{}, fmt.Errorf("open url: %w", err)
		}
		return Outcome{Kind: kind, Output: target}, nil

	case rules.KindPath:
		target := expandTemplate(rule.Action.Template, payload)
		if err := revealNative(target); err != nil {
			return Outcome{}, fmt.Errorf("open path: %w", err)
		}
		return Outcome{Kind: kind, Output: target}, nil

	case rules.KindDOILookup:
		if d.Prober == nil {
			return Outcome{}, fmt.Errorf("doi lookup requires a prober")
		}
		target, err := d.Prober.ResolveDOI(ctx, payload)
		if err != nil {
			return Outcome{}, err
		}
		if err := openNative(target); err != nil {
			return Outcome{}, fmt.Errorf("open doi url: %w", err)
		}
		return Outcome{Kind: kind, Output: target}, nil

	case rules.KindLocalFormat:
		return Outcome{Kind: kind, Output: FormatText(text)}, nil

	case rules.KindScript:
		out, err := d.runScript(ctx, rule, text)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: kind, Output: out}, nil

	case rules.KindAITranslate, rules.KindAISummarize, rules.KindAIProcess:
		return Outcome{Kind: kind, Deferred: true}, nil

	case rules.KindMath:
		// Expression evaluation lives in the UI layer.
		return Outcome{Kind: kind, Deferred: true}, nil
	}

	return Outcome{}, fmt.Errorf("unsupported action type %q", rule.Action.Type)
}

// extractPayload applies the trigger's extraction pattern to trim the
// captured text down to the actionable fragment. An absent or broken pattern
// leaves the text untouched.
func extractPayload(rule rules.Rule, text string) string {
	pattern := rule.Trigger.ExtractionPattern
	if pattern == "" {
		return text
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		log.Printf("Actions: bad extraction pattern %q for rule %s: %v", pattern, rule.Meta.ID, err)
		return text
	}
	if m := re.FindString(text); m != "" {
		return m
	}
	return text
}

// expandTemplate substitutes ${0} with the payload. A bare "${0}" template
// opens the payload itself; when the payload is embedded in a larger
// template (e.g. a search URL) it is query-escaped.
func expandTemplate(template, payload string) string {
	if template == "" || template == "${0}" {
		return payload
	}
	return strings.ReplaceAll(template, "${0}", url.QueryEscape(payload))
}

// FormatText is the local, non-AI reformatter: trims each line, drops empty
// lines, collapses runs of spaces and removes stray spaces after CJK
// punctuation.
func FormatText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	result := strings.Join(lines, "\n")

	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}

	replacer := strings.NewReplacer(
		"， ", "，", // ，
		"。 ", "。", // 。
		"！ ", "！", // ！
		"？ ", "？", // ？
		"： ", "：", // ：
		"； ", "；", // ；
	)
	return replacer.Replace(result)
}

// runScript executes the rule's script with its configured arguments plus the
// captured text appended. Relative paths resolve under ScriptsDir. Stdout is
// the result; a failing exit reports stderr.
func (d *Dispatcher) runScript(ctx context.Context, rule rules.Rule, text string) (string, error) {
	scriptPath := rule.Action.ScriptPath
	if scriptPath == "" {
		return "", fmt.Errorf("rule %s has no script path", rule.Meta.ID)
	}
	if !filepath.IsAbs(scriptPath) && d.ScriptsDir != "" {
		scriptPath = filepath.Join(d.ScriptsDir, scriptPath)
	}

	args := append([]string(nil), rule.Action.Arguments...)
	args = append(args, text)

	var cmd *exec.Cmd
	if strings.EqualFold(filepath.Ext(scriptPath), ".py") {
		cmd = exec.CommandContext(ctx, pythonInterpreter(), append([]string{scriptPath}, args...)...)
	} else {
		cmd = exec.CommandContext(ctx, scriptPath, args...)
	}
	cmd.Env = append(cmd.Environ(), "PYTHONIOENCODING=utf-8")

	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("script exited with error: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("run script: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func pythonInterpreter() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// openNative hands a URL to the OS default handler.
func openNative(target string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	case "darwin":
		return exec.Command("open", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}

// revealNative opens a filesystem path in the platform file manager.
func revealNative(path string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", path).Start()
	case "darwin":
		return exec.Command("open", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}
