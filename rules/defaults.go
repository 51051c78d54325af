package rules

import "encoding/json"

// defaultRulesJSON is the built-in rule set used when no rule file exists
// anywhere. It is kept as JSON so it round-trips through the same parser as
// a user-authored file.
const defaultRulesJSON = `[
  {
    "meta": {
      "id": "builtin-url",
      "name": "Open URL",
      "version": "1.0.0"
    },
    "scope": {
      "include": ["*"],
      "priority": 90
    },
    "trigger": {
      "type": "regex",
      "pattern": "^.*(https?:\\/\\/|www\\.)([\\w_-]+(?:(?:\\.[\\w_-]+)+))([\\w.,@?^=%&:/~+#-]*[\\w@?^=%&/~+#-])?",
      "extraction_pattern": "(https?://|www\\.)[\\x21-\\x7e]+"
    },
    "action": {
      "type": "url",
      "template": "${0}"
    }
  },
  {
    "meta": {
      "id": "builtin-doi",
      "name": "Look up DOI",
      "version": "1.0.0"
    },
    "scope": {
      "include": ["*"],
      "priority": 95
    },
    "trigger": {
      "type": "regex",
      "pattern": "\\b10\\.\\d{4,9}/[-._;()/:a-zA-Z0-9]+",
      "extraction_pattern": "10\\.\\d{4,9}/[-._;()/:a-zA-Z0-9]+"
    },
    "action": {
      "type": "doi_lookup",
      "template": ""
    }
  },
  {
    "meta": {
      "id": "builtin-path",
      "name": "Open file path",
      "version": "1.0.0"
    },
    "scope": {
      "include": ["*"],
      "priority": 90
    },
    "trigger": {
      "type": "regex",
      "pattern": "^(?:[a-zA-Z]:\\\\(?:[^\\\\/:*?\"<>|\\r\\n]+\\\\)*[^\\\\/:*?\"<>|\\r\\n]*|(?:/[\\w .-]+)+/?)$"
    },
    "action": {
      "type": "path",
      "template": "${0}"
    }
  },
  {
    "meta": {
      "id": "builtin-ai-translate",
      "name": "Translate",
      "version": "1.0.0"
    },
    "scope": {
      "include": ["*"],
      "priority": 50
    },
    "trigger": {
      "type": "regex",
      "pattern": ".{5,}"
    },
    "action": {
      "type": "ai_translate",
      "template": ""
    }
  },
  {
    "meta": {
      "id": "builtin-ai-summarize",
      "name": "Summarize",
      "version": "1.0.0"
    },
    "scope": {
      "include": ["*"],
      "priority": 40
    },
    "trigger": {
      "type": "regex",
      "pattern": ".{100,}"
    },
    "action": {
      "type": "ai_summarize",
      "template": ""
    }
  },
  {
    "meta": {
      "id": "builtin-local-format",
      "name": "Reformat (local)",
      "version": "1.0.0"
    },
    "scope": {
      "include": ["*"],
      "priority": 35
    },
    "trigger": {
      "type": "regex",
      "pattern": ".{50,}"
    },
    "action": {
      "type": "local_format",
      "template": ""
    }
  },
  {
    "meta": {
      "id": "builtin-ai-format",
      "name": "Reformat (AI)",
      "version": "1.0.0"
    },
    "scope": {
      "include": ["*"],
      "priority": 30
    },
    "trigger": {
      "type": "regex",
      "pattern": ".{50,}"
    },
    "action": {
      "type": "ai_process",
      "template": "format_text"
    }
  },
  {
    "meta": {
      "id": "builtin-web-search",
      "name": "Web search",
      "version": "1.0.0"
    },
    "scope": {
      "include": ["*"],
      "priority": 10
    },
    "trigger": {
      "type": "regex",
      "pattern": ".+"
    },
    "action": {
      "type": "url",
      "template": "https://www.google.com/search?q=${0}"
    }
  }
]`

// Defaults returns a fresh copy of the built-in rule set.
func Defaults() ([]Rule, error) {
	var rs []Rule
	if err := json.Unmarshal([]byte(defaultRulesJSON), &rs); err != nil {
		return nil, err
	}
	return rs, nil
}
