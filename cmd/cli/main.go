package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"context-spotlight/actions"
	"context-spotlight/config"
	"context-spotlight/prober"
	"context-spotlight/router"
	"context-spotlight/rules"
)

const maxInputSize = 1 * 1024 * 1024

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	text := flag.String("text", "", "Text to match against the rule set (use '-' for stdin)")
	importPath := flag.String("import", "", "Import rules from a JSON file into the rule set")
	execTop := flag.Bool("exec", false, "Execute the highest-priority matched action")
	jsonOutput := flag.Bool("json", false, "Output results as JSON")
	verbose := flag.Bool("v", false, "Verbose output to stderr")
	flag.Parse()

	if *text == "" && *importPath == "" {
		return fmt.Errorf("nothing to do\nUsage: spotlight-cli -text <text|-> [-exec] [-json] | -import <file>")
	}

	paths := config.DefaultPaths()
	rt := router.New(paths)

	if *verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Rule source: %s (%d rules)\n", rt.SourcePath(), rt.RuleCount())
	}

	if *importPath != "" {
		count, err := importRules(rt, *importPath)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d rules into %s\n", count, rt.SourcePath())
		if *text == "" {
			return nil
		}
	}

	input, err := readText(*text)
	if err != nil {
		return err
	}

	matched := rt.Match(input)

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(matched); err != nil {
			return err
		}
	} else {
		if len(matched) == 0 {
			fmt.Println("No rules matched.")
		}
		for i, r := range matched {
			fmt.Printf("%d. [%d] %s (%s) id=%s\n", i+1, r.Scope.Priority, r.Meta.Name, r.Action.Type, r.Meta.ID)
		}
	}

	if *execTop && len(matched) > 0 {
		return executeTop(matched[0], input, paths, *verbose)
	}
	return nil
}

func importRules(rt *router.Router, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", path, err)
	}

	// Accept either a rule list or a single rule object.
	var incoming []rules.Rule
	if err := json.Unmarshal(content, &incoming); err != nil {
		var single rules.Rule
		if err := json.Unmarshal(content, &single); err != nil {
			return 0, fmt.Errorf("%s is not a valid rule or rule list: %w", path, err)
		}
		incoming = []rules.Rule{single}
	}

	return rt.Import(incoming)
}

func executeTop(rule rules.Rule, text string, paths config.Paths, verbose bool) error {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Executing %s (%s)\n", rule.Meta.ID, rule.Action.Type)
	}

	d := &actions.Dispatcher{
		Prober:     prober.New(),
		ScriptsDir: filepath.Join(paths.ConfigDir, "scripts"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome, err := d.Execute(ctx, rule, text)
	if err != nil {
		return err
	}
	if outcome.Deferred {
		fmt.Printf("Action %q needs the UI or AI backend, not executed.\n", rule.Action.Type)
		return nil
	}
	if outcome.Output != "" {
		fmt.Println(outcome.Output)
	}
	return nil
}

func readText(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(io.LimitReader(bufio.NewReader(os.Stdin), maxInputSize))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return "", fmt.Errorf("empty input")
	}
	return text, nil
}
