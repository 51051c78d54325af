package actions

import (
	"context"
	"testing"

	"context-spotlight/rules"
)

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		payload  string
		expected string
	}{
		{"bare placeholder passes through", "${0}", "https://example.com/a?b=c", "https://example.com/a?b=c"},
		{"empty template passes through", "", "anything", "anything"},
		{"embedded payload is escaped", "https://www.google.com/search?q=${0}", "hello world", "https://www.google.com/search?q=hello+world"},
		{"embedded special chars", "https://s/?q=${0}", "a&b=c", "https://s/?q=a%26b%3Dc"},
		{"no placeholder", "https://fixed.example.com", "ignored", "https://fixed.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandTemplate(tt.template, tt.payload); got != tt.expected {
				t.Errorf("expandTemplate(%q, %q) = %q, expected %q", tt.template, tt.payload, got, tt.expected)
			}
		})
	}
}

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		text     string
		expected string
	}{
		{"no pattern keeps text", "", "doi: 10.1000/182 (2024)", "doi: 10.1000/182 (2024)"},
		{"doi trimmed from surroundings", `10\.\d{4,9}/[-._;()/:a-zA-Z0-9]+`, "see doi: 10.1000/xyz123, cited", "10.1000/xyz123"},
		{"url trimmed", `https?://\S+`, "read https://example.com/p now", "https://example.com/p"},
		{"no match keeps text", `\d{10}`, "no long numbers here", "no long numbers here"},
		{"broken pattern keeps text", `(`, "unchanged", "unchanged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rules.Rule{
				Meta:    rules.Meta{ID: "t"},
				Trigger: rules.Trigger{Type: "regex", ExtractionPattern: tt.pattern},
			}
			if got := extractPayload(r, tt.text); got != tt.expected {
				t.Errorf("extractPayload = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFormatText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"trims and drops empty lines", "  first  \n\n  second  \n", "first\nsecond"},
		{"collapses space runs", "a    b     c", "a b c"},
		{"cjk punctuation spacing", "你好， 世界。 再见", "你好，世界。再见"},
		{"already clean", "one\ntwo", "one\ntwo"},
		{"whitespace only", "   \n\t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatText(tt.in); got != tt.expected {
				t.Errorf("FormatText(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestExecuteDefersAIActions(t *testing.T) {
	d := &Dispatcher{}
	for _, typ := range []string{"ai_translate", "ai_summarize", "ai_process", "math"} {
		t.Run(typ, func(t *testing.T) {
			r := rules.Rule{Meta: rules.Meta{ID: typ}, Action: rules.Action{Type: typ}}
			out, err := d.Execute(context.Background(), r, "some text")
			if err != nil {
				t.Fatal(err)
			}
			if !out.Deferred {
				t.Errorf("%s should be deferred", typ)
			}
		})
	}
}

func TestExecuteLocalFormat(t *testing.T) {
	d := &Dispatcher{}
	r := rules.Rule{Meta: rules.Meta{ID: "fmt"}, Action: rules.Action{Type: "local_format"}}
	out, err := d.Execute(context.Background(), r, "  hello  \n\n  world  ")
	if err != nil {
		t.Fatal(err)
	}
	if out.Deferred {
		t.Error("local_format runs locally")
	}
	if out.Output != "hello\nworld" {
		t.Errorf("Output = %q", out.Output)
	}
}

func TestExecuteRejectsUnknownType(t *testing.T) {
	d := &Dispatcher{}
	r := rules.Rule{Meta: rules.Meta{ID: "x"}, Action: rules.Action{Type: "utility"}}
	if _, err := d.Execute(context.Background(), r, "text"); err == nil {
		t.Fatal("unknown action type should error")
	}
}

func TestExecuteDOIRequiresProber(t *testing.T) {
	d := &Dispatcher{}
	r := rules.Rule{Meta: rules.Meta{ID: "doi"}, Action: rules.Action{Type: "doi_lookup"}}
	if _, err := d.Execute(context.Background(), r, "10.1000/182"); err == nil {
		t.Fatal("doi_lookup without a prober should error")
	}
}

func TestExecuteScriptRequiresPath(t *testing.T) {
	d := &Dispatcher{}
	r := rules.Rule{Meta: rules.Meta{ID: "s"}, Action: rules.Action{Type: "script"}}
	if _, err := d.Execute(context.Background(), r, "text"); err == nil {
		t.Fatal("script without a path should error")
	}
}
