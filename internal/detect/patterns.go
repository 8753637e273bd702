package detect

import (
	"os"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/coderift/drift/internal/gast"
)

// PatternFile is the `[[patterns]]`-style TOML extension mechanism: a
// project can add detectors without recompiling the binary.
type PatternFile struct {
	Patterns []PatternDef `toml:"patterns"`
}

// PatternDef describes one BaseDetector-shaped rule loaded from TOML.
type PatternDef struct {
	ID        string   `toml:"id"`
	Category  string   `toml:"category"`
	Languages []string `toml:"languages"`
	Kind      string   `toml:"kind"`
	NameRegex string   `toml:"name_regex"`
}

// LoadPatternFile parses path and registers every valid entry into r.
// Malformed individual entries are skipped (not fatal) so one bad rule
// doesn't block the rest of the project's custom patterns.
func LoadPatternFile(path string, r *Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var pf PatternFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return err
	}

	for _, def := range pf.Patterns {
		if def.ID == "" || def.Kind == "" {
			continue
		}
		var namePattern *regexp.Regexp
		if def.NameRegex != "" {
			compiled, err := regexp.Compile(def.NameRegex)
			if err != nil {
				continue
			}
			namePattern = compiled
		}
		r.Register(NewBaseDetector(def.ID, def.Category, def.Languages, gast.Kind(def.Kind), namePattern))
	}
	return nil
}
