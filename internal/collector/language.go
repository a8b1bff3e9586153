package collector

import (
	"path/filepath"
	"strings"

	"github.com/fakeyudi/codeclock/internal/entry"
)

// languageByExt maps file extensions to display language names. Lookups that
// miss fall back to entry.Unknown.
var languageByExt = map[string]string{
	".go":       "Go",
	".py":       "Python",
	".js":       "JavaScript",
	".mjs":      "JavaScript",
	".cjs":      "JavaScript",
	".ts":       "TypeScript",
	".jsx":      "JavaScript React",
	".tsx":      "TypeScript React",
	".java":     "Java",
	".c":        "C",
	".h":        "C",
	".cpp":      "C++",
	".cc":       "C++",
	".cxx":      "C++",
	".hpp":      "C++",
	".cs":       "C#",
	".rb":       "Ruby",
	".rs":       "Rust",
	".php":      "PHP",
	".swift":    "Swift",
	".kt":       "Kotlin",
	".kts":      "Kotlin",
	".scala":    "Scala",
	".sh":       "Shell",
	".bash":     "Shell",
	".zsh":      "Shell",
	".fish":     "Shell",
	".ps1":      "PowerShell",
	".pl":       "Perl",
	".lua":      "Lua",
	".r":        "R",
	".m":        "Objective-C",
	".dart":     "Dart",
	".ex":       "Elixir",
	".exs":      "Elixir",
	".erl":      "Erlang",
	".hs":       "Haskell",
	".ml":       "OCaml",
	".clj":      "Clojure",
	".groovy":   "Groovy",
	".sql":      "SQL",
	".html":     "HTML",
	".htm":      "HTML",
	".css":      "CSS",
	".scss":     "SCSS",
	".sass":     "SCSS",
	".less":     "Less",
	".vue":      "Vue",
	".svelte":   "Svelte",
	".json":     "JSON",
	".yaml":     "YAML",
	".yml":      "YAML",
	".toml":     "TOML",
	".xml":      "XML",
	".md":       "Markdown",
	".markdown": "Markdown",
	".tex":      "TeX",
	".proto":    "Protocol Buffers",
	".tf":       "Terraform",
	".zig":      "Zig",
	".nim":      "Nim",
	".jl":       "Julia",
	".vim":      "Vim Script",
}

// DetectLanguage returns the language attributed to path based on its
// extension, or entry.Unknown when the extension is not mapped. Pure
// function, safe to call on every signal.
func DetectLanguage(path string) string {
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		if lang, ok := languageByExt[ext]; ok {
			return lang
		}
		return entry.Unknown
	}

	// A few well-known extensionless files.
	switch filepath.Base(path) {
	case "Makefile", "makefile", "GNUmakefile":
		return "Make"
	case "Dockerfile":
		return "Docker"
	}
	return entry.Unknown
}
