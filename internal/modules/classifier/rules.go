package classifier

import "regexp"

// languageRule is one row of the detection table. New languages are added
// here, not in control flow. Table order is the tie-break: when two
// languages score equally, the earlier row wins.
type languageRule struct {
	name       string
	extensions []string
	patterns   []*regexp.Regexp
}

// extensionBonus is added to a language's score when the supplied filename
// carries one of its known extensions.
const extensionBonus = 0.5

var rules = []languageRule{
	{
		name:       "javascript",
		extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bconst\s+\w+\s*=`),
			regexp.MustCompile(`\blet\s+\w+\s*=`),
			regexp.MustCompile(`\bfunction\s+\w+\s*\(`),
			regexp.MustCompile(`=>\s*[{(]?`),
			regexp.MustCompile(`\brequire\s*\(\s*['"]`),
			regexp.MustCompile(`\bmodule\.exports\b`),
			regexp.MustCompile(`\bconsole\.log\s*\(`),
			regexp.MustCompile(`\bdocument\.\w+`),
			regexp.MustCompile(`\basync\s+function\b`),
			regexp.MustCompile(`\bexport\s+(default|const|function)\b`),
		},
	},
	{
		name:       "typescript",
		extensions: []string{".ts", ".tsx"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\binterface\s+\w+\s*\{`),
			regexp.MustCompile(`:\s*(string|number|boolean|any|void|unknown)\b`),
			regexp.MustCompile(`\btype\s+\w+\s*=`),
			regexp.MustCompile(`\benum\s+\w+\s*\{`),
			regexp.MustCompile(`<\w+(,\s*\w+)*>\s*\(`),
			regexp.MustCompile(`\bimplements\s+\w+`),
			regexp.MustCompile(`\breadonly\s+\w+`),
			regexp.MustCompile(`\bnamespace\s+\w+`),
		},
	},
	{
		name:       "python",
		extensions: []string{".py", ".pyw"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bdef\s+\w+\s*\(`),
			regexp.MustCompile(`\bimport\s+\w+`),
			regexp.MustCompile(`\bfrom\s+[\w.]+\s+import\b`),
			regexp.MustCompile(`\bprint\s*\(`),
			regexp.MustCompile(`\bself\b`),
			regexp.MustCompile(`\bclass\s+\w+(\(\w+\))?\s*:`),
			regexp.MustCompile(`\belif\b`),
			regexp.MustCompile(`\bif\s+__name__\s*==`),
			regexp.MustCompile(`:\n\s+`),
			regexp.MustCompile(`\blambda\s+\w+\s*:`),
		},
	},
	{
		name:       "go",
		extensions: []string{".go"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bfunc\s+\w+\s*\(`),
			regexp.MustCompile(`\bpackage\s+\w+`),
			regexp.MustCompile(`\bimport\s+\(`),
			regexp.MustCompile(`:=`),
			regexp.MustCompile(`\bfmt\.\w+\(`),
			regexp.MustCompile(`\bgo\s+func\b`),
			regexp.MustCompile(`\bchan\s+\w+`),
			regexp.MustCompile(`\bdefer\s+`),
			regexp.MustCompile(`\btype\s+\w+\s+struct\s*\{`),
			regexp.MustCompile(`\berr\s*!=\s*nil\b`),
		},
	},
	{
		name:       "java",
		extensions: []string{".java"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bpublic\s+(static\s+)?(void|class|int|String)\b`),
			regexp.MustCompile(`\bSystem\.out\.print`),
			regexp.MustCompile(`\bprivate\s+\w+\s+\w+\s*;`),
			regexp.MustCompile(`\bnew\s+\w+\s*\(`),
			regexp.MustCompile(`\bextends\s+\w+`),
			regexp.MustCompile(`\b@Override\b`),
			regexp.MustCompile(`\bimport\s+java\.`),
			regexp.MustCompile(`\bpublic\s+static\s+void\s+main\b`),
		},
	},
	{
		name:       "csharp",
		extensions: []string{".cs"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\busing\s+System`),
			regexp.MustCompile(`\bnamespace\s+\w+`),
			regexp.MustCompile(`\bConsole\.Write`),
			regexp.MustCompile(`\bpublic\s+(class|struct|interface)\s+\w+`),
			regexp.MustCompile(`\bvar\s+\w+\s*=\s*new\b`),
			regexp.MustCompile(`\basync\s+Task\b`),
			regexp.MustCompile(`\bget;\s*set;`),
		},
	},
	{
		name:       "cpp",
		extensions: []string{".cpp", ".cc", ".cxx", ".hpp"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`#include\s*<\w+>`),
			regexp.MustCompile(`\bstd::\w+`),
			regexp.MustCompile(`\bcout\s*<<`),
			regexp.MustCompile(`\btemplate\s*<`),
			regexp.MustCompile(`\bclass\s+\w+\s*[{:]`),
			regexp.MustCompile(`\bnullptr\b`),
			regexp.MustCompile(`\bvector<\w+>`),
		},
	},
	{
		name:       "c",
		extensions: []string{".c", ".h"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`#include\s*<\w+\.h>`),
			regexp.MustCompile(`\bprintf\s*\(`),
			regexp.MustCompile(`\bmalloc\s*\(`),
			regexp.MustCompile(`\bint\s+main\s*\(`),
			regexp.MustCompile(`\bstruct\s+\w+\s*\{`),
			regexp.MustCompile(`\bvoid\s+\w+\s*\(`),
			regexp.MustCompile(`\bsizeof\s*\(`),
		},
	},
	{
		name:       "ruby",
		extensions: []string{".rb", ".rake"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?m)\bdef\s+\w+\s*$`),
			regexp.MustCompile(`(?m)^\s*end\s*$`),
			regexp.MustCompile(`\bputs\s+`),
			regexp.MustCompile(`\brequire\s+['"]`),
			regexp.MustCompile(`\battr_(accessor|reader|writer)\b`),
			regexp.MustCompile(`\bdo\s*\|\w+\|`),
			regexp.MustCompile(`@\w+\s*=`),
		},
	},
	{
		name:       "php",
		extensions: []string{".php"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`<\?php`),
			regexp.MustCompile(`\$\w+\s*=`),
			regexp.MustCompile(`\becho\s+`),
			regexp.MustCompile(`\bfunction\s+\w+\s*\(\s*\$`),
			regexp.MustCompile(`->\w+\s*\(`),
			regexp.MustCompile(`\buse\s+[\w\\]+;`),
		},
	},
	{
		name:       "rust",
		extensions: []string{".rs"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bfn\s+\w+\s*\(`),
			regexp.MustCompile(`\blet\s+mut\s+\w+`),
			regexp.MustCompile(`\bprintln!\s*\(`),
			regexp.MustCompile(`\bimpl\s+\w+`),
			regexp.MustCompile(`\bmatch\s+\w+\s*\{`),
			regexp.MustCompile(`\buse\s+\w+::`),
			regexp.MustCompile(`&str\b`),
			regexp.MustCompile(`\bpub\s+fn\b`),
		},
	},
	{
		name:       "swift",
		extensions: []string{".swift"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bfunc\s+\w+\s*\(.*\)\s*->`),
			regexp.MustCompile(`\bvar\s+\w+\s*:\s*\w+`),
			regexp.MustCompile(`\blet\s+\w+\s*:\s*\w+`),
			regexp.MustCompile(`\bguard\s+let\b`),
			regexp.MustCompile(`\bimport\s+(Foundation|UIKit|SwiftUI)\b`),
			regexp.MustCompile(`\bextension\s+\w+`),
		},
	},
	{
		name:       "kotlin",
		extensions: []string{".kt", ".kts"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bfun\s+\w+\s*\(`),
			regexp.MustCompile(`\bval\s+\w+\s*=`),
			regexp.MustCompile(`\bvar\s+\w+\s*=`),
			regexp.MustCompile(`\bdata\s+class\b`),
			regexp.MustCompile(`\bcompanion\s+object\b`),
			regexp.MustCompile(`\bwhen\s*\(`),
		},
	},
	{
		name:       "shell",
		extensions: []string{".sh", ".bash", ".zsh"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^#!/bin/(ba|z)?sh`),
			regexp.MustCompile(`\becho\s+["$]`),
			regexp.MustCompile(`\bif\s+\[\[?\s`),
			regexp.MustCompile(`\bfi\b`),
			regexp.MustCompile(`\bdone\b`),
			regexp.MustCompile(`\$\{?\w+\}?`),
			regexp.MustCompile(`\bexport\s+\w+=`),
		},
	},
	{
		name:       "sql",
		extensions: []string{".sql"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bSELECT\s+.+\s+FROM\b`),
			regexp.MustCompile(`(?i)\bINSERT\s+INTO\b`),
			regexp.MustCompile(`(?i)\bUPDATE\s+\w+\s+SET\b`),
			regexp.MustCompile(`(?i)\bCREATE\s+TABLE\b`),
			regexp.MustCompile(`(?i)\bWHERE\s+\w+\s*=`),
			regexp.MustCompile(`(?i)\bJOIN\s+\w+\s+ON\b`),
		},
	},
	{
		name:       "html",
		extensions: []string{".html", ".htm"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<!DOCTYPE\s+html>`),
			regexp.MustCompile(`(?i)<html[\s>]`),
			regexp.MustCompile(`(?i)<div[\s>]`),
			regexp.MustCompile(`(?i)<p[\s>]`),
			regexp.MustCompile(`(?i)</\w+>`),
			regexp.MustCompile(`(?i)<a\s+href=`),
		},
	},
	{
		name:       "css",
		extensions: []string{".css", ".scss", ".less"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`[.#]?\w[\w-]*\s*\{[^}]*\}`),
			regexp.MustCompile(`\b(color|background|margin|padding|display)\s*:`),
			regexp.MustCompile(`@media\s`),
			regexp.MustCompile(`\d+(px|em|rem|vh|vw)\b`),
			regexp.MustCompile(`@import\s`),
		},
	},
	{
		name:       "json",
		extensions: []string{".json"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^\s*\{`),
			regexp.MustCompile(`"\w+"\s*:\s*["\d{\[]`),
			regexp.MustCompile(`\}\s*$`),
		},
	},
	{
		name:       "yaml",
		extensions: []string{".yml", ".yaml"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\w[\w-]*:\s`),
			regexp.MustCompile(`(?m)^\s+-\s+\w+`),
			regexp.MustCompile(`(?m)^---\s*$`),
		},
	},
}
