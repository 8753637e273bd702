package scan

import (
	"bytes"
	"path/filepath"
	"strings"
)

// extensionLanguages maps file extensions to their parser language name,
// extended to the ten supported languages.
var extensionLanguages = map[string]string{
	".go":    "go",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".py":    "python",
	".pyi":   "python",
	".rs":    "rust",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".c":     "cpp",
	".h":     "cpp",
	".hpp":   "cpp",
	".java":  "java",
	".cs":    "csharp",
	".zig":   "zig",
	".php":   "php",
	".phtml": "php",
}

var shebangLanguages = []struct {
	marker   string
	language string
}{
	{"python", "python"},
	{"node", "javascript"},
	{"php", "php"},
}

// DetectLanguage resolves a file's language by extension first, falling
// back to a shebang/content heuristic for extensionless scripts. content
// may be nil when only the path is known.
func DetectLanguage(path string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	if len(content) == 0 {
		return ""
	}

	nl := bytes.IndexByte(content, '\n')
	if nl < 0 {
		nl = len(content)
	}
	if nl > 200 {
		nl = 200
	}
	firstLine := content[:nl]
	if !bytes.HasPrefix(firstLine, []byte("#!")) {
		return ""
	}
	for _, sb := range shebangLanguages {
		if bytes.Contains(firstLine, []byte(sb.marker)) {
			return sb.language
		}
	}
	return ""
}
