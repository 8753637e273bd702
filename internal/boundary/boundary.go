// Package boundary implements the two-phase ORM/data-access analyzer:
// Learn infers the frameworks, table-naming convention, and
// variable-to-table hints in use across a project; Detect then walks each
// file applying the matching framework's field extractor, emitting access
// points and classifying sensitive fields. See spec §4.8.
package boundary

import (
	"regexp"
	"strings"
	"sync"

	"github.com/surgebase/porter2"

	"github.com/coderift/drift/internal/gast"
	"github.com/coderift/drift/internal/ids"
)

// Operation is the kind of data access a Boundary represents.
type Operation string

const (
	OpRead    Operation = "Read"
	OpWrite   Operation = "Write"
	OpDelete  Operation = "Delete"
	OpUnknown Operation = "Unknown"
)

// Boundary is one detected table/field access point (spec §3).
type Boundary struct {
	Table      string
	Framework  string
	Operation  Operation
	Fields     []string
	FileID     ids.FileID
	Line       uint
	Confidence float64
}

// SensitivityClass groups a field name into one of four buckets.
type SensitivityClass string

const (
	ClassPII         SensitivityClass = "PII"
	ClassCredentials SensitivityClass = "Credentials"
	ClassFinancial   SensitivityClass = "Financial"
	ClassHealth      SensitivityClass = "Health"
)

// SensitiveField is one field name classified into at most one class.
type SensitiveField struct {
	FieldName  string
	Table      string
	Class      SensitivityClass
	Confidence float64
}

// NamingConvention is the table-naming style the Learn phase infers
// dominant across the project.
type NamingConvention string

const (
	NamingSnake  NamingConvention = "snake"
	NamingCamel  NamingConvention = "camel"
	NamingPascal NamingConvention = "pascal"
	NamingMixed  NamingConvention = "mixed"
)

// FrameworkExtractor recognizes one ORM/query-builder convention's call
// shape in a file's GAST and extracts Boundary rows from it. Two concrete
// shapes are registered by default: a decorator+field-list ORM style, and
// a query-builder method-chain style.
type FrameworkExtractor interface {
	Name() string
	// Recognize reports whether fileCtx shows signs this framework is in
	// use (Learn phase).
	Recognize(fileCtx *gast.Node, imports []string) bool
	// Extract walks fileCtx emitting Boundary rows (Detect phase). knownTables
	// and varHints come from the Learn phase's project-wide state.
	Extract(fileCtx *gast.Node, fileID ids.FileID, knownTables map[string]bool, varHints map[string]string) []Boundary
}

// Analyzer owns Learn-phase state (frameworks in use, naming convention,
// known tables, variable->table hints) and the Detect-phase extractors.
type Analyzer struct {
	mu          sync.Mutex
	extractors  []FrameworkExtractor
	frameworks  map[string]int
	tableNames  map[string]int // name -> occurrence, for naming-convention inference
	knownTables map[string]bool
	varHints    map[string]string // variable name -> table name, e.g. userRepo -> users
	learned     bool
}

// NewAnalyzer creates an Analyzer with the default extractor set.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		extractors:  []FrameworkExtractor{decoratorORMExtractor{}, queryBuilderExtractor{}},
		frameworks:  make(map[string]int),
		tableNames:  make(map[string]int),
		knownTables: make(map[string]bool),
		varHints:    make(map[string]string),
	}
}

var varRepoPattern = regexp.MustCompile(`(?i)^(\w+?)(Repo|Repository|Model|Table)$`)

// Learn scans one file likely to contain data-access code: it tallies
// which frameworks are recognized, records table names it can see, and
// derives variable->table hints from repository-style identifiers.
func (a *Analyzer) Learn(root *gast.Node, imports []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ext := range a.extractors {
		if ext.Recognize(root, imports) {
			a.frameworks[ext.Name()]++
		}
	}

	gast.Walk(root, func(n *gast.Node) {
		if n.Kind == gast.KindVariable || n.Kind == gast.KindField {
			if m := varRepoPattern.FindStringSubmatch(n.Name); m != nil {
				table := pluralizeGuess(toSnakeCase(m[1]))
				a.varHints[n.Name] = table
				a.knownTables[table] = true
			}
		}
		if n.Kind == gast.KindClass || n.Kind == gast.KindStruct {
			a.tableNames[n.Name]++
		}
	})
}

// Seal marks the Learn phase as complete. It does not compute anything;
// NamingConvention and DominantFramework read the learned tallies on each
// call. Safe to call multiple times; subsequent calls are no-ops.
func (a *Analyzer) Seal() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.learned = true
}

// DominantFramework returns the most-recognized framework name, or "" if
// none were recognized.
func (a *Analyzer) DominantFramework() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	best, bestCount := "", 0
	for name, count := range a.frameworks {
		if count > bestCount {
			best, bestCount = name, count
		}
	}
	return best
}

// NamingConvention infers the dominant table/type naming style learned.
func (a *Analyzer) NamingConvention() NamingConvention {
	a.mu.Lock()
	defer a.mu.Unlock()
	var snake, camel, pascal int
	for name := range a.tableNames {
		switch {
		case strings.Contains(name, "_"):
			snake++
		case len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z':
			pascal++
		default:
			camel++
		}
	}
	total := snake + camel + pascal
	if total == 0 {
		return NamingMixed
	}
	max := snake
	conv := NamingSnake
	if camel > max {
		max, conv = camel, NamingCamel
	}
	if pascal > max {
		max, conv = pascal, NamingPascal
	}
	if float64(max)/float64(total) < 0.6 {
		return NamingMixed
	}
	return conv
}

// falsePositivePrefixes names the well-known test/mock prefixes the Detect
// phase filters out (spec §4.8).
var falsePositivePrefixes = []string{"mock", "stub", "fake", "test_", "Test"}

// Detect runs every registered extractor over root, filtering out matches
// whose table name carries a recognized test/mock prefix.
func (a *Analyzer) Detect(root *gast.Node, fileID ids.FileID) []Boundary {
	a.mu.Lock()
	tables := make(map[string]bool, len(a.knownTables))
	for k, v := range a.knownTables {
		tables[k] = v
	}
	hints := make(map[string]string, len(a.varHints))
	for k, v := range a.varHints {
		hints[k] = v
	}
	a.mu.Unlock()

	var out []Boundary
	for _, ext := range a.extractors {
		for _, b := range ext.Extract(root, fileID, tables, hints) {
			if isFalsePositiveTable(b.Table) {
				continue
			}
			out = append(out, b)
		}
	}
	return out
}

func isFalsePositiveTable(table string) bool {
	lower := strings.ToLower(table)
	for _, p := range falsePositivePrefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func pluralizeGuess(s string) string {
	if strings.HasSuffix(s, "s") {
		return s
	}
	if strings.HasSuffix(s, "y") {
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}

// sensitivityPattern is one layered entry: a field-name stem plus the
// class it maps to and a prior confidence. Matched after porter2 stemming
// so "password"/"passwords"/"passworded" all hit the same entry.
type sensitivityPattern struct {
	stem       string
	class      SensitivityClass
	confidence float64
}

var sensitivityTable = []sensitivityPattern{
	{"password", ClassCredentials, 0.98},
	{"passwd", ClassCredentials, 0.95},
	{"secret", ClassCredentials, 0.9},
	{"apikey", ClassCredentials, 0.92},
	{"token", ClassCredentials, 0.75},
	{"ssn", ClassPII, 0.97},
	{"socialsecur", ClassPII, 0.95},
	{"email", ClassPII, 0.8},
	{"phone", ClassPII, 0.75},
	{"address", ClassPII, 0.6},
	{"birthdat", ClassPII, 0.85},
	{"creditcard", ClassFinancial, 0.97},
	{"cardnumb", ClassFinancial, 0.95},
	{"iban", ClassFinancial, 0.95},
	{"salari", ClassFinancial, 0.8},
	{"bankaccount", ClassFinancial, 0.93},
	{"diagnosi", ClassHealth, 0.95},
	{"medicalrecord", ClassHealth, 0.95},
	{"prescript", ClassHealth, 0.9},
	{"bloodtyp", ClassHealth, 0.9},
}

// ClassifyField matches a field name against the layered pattern table
// after porter2 stemming and snake/camel normalization, returning the
// single highest-prior class it belongs to, or ok=false if none match.
func ClassifyField(fieldName string) (SensitiveField, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(toSnakeCase(fieldName), "_", ""))
	stem := porter2.Stem(normalized)

	best := sensitivityPattern{}
	found := false
	for _, p := range sensitivityTable {
		if strings.Contains(normalized, p.stem) || strings.Contains(stem, p.stem) {
			if !found || p.confidence > best.confidence {
				best, found = p, true
			}
		}
	}
	if !found {
		return SensitiveField{}, false
	}
	return SensitiveField{FieldName: fieldName, Class: best.class, Confidence: best.confidence}, true
}

// --- default framework extractors ---

// decoratorORMExtractor recognizes a model-decorator + field-definition
// style (e.g. `@Entity class User { @Column() email: string }`).
type decoratorORMExtractor struct{}

func (decoratorORMExtractor) Name() string { return "decorator-orm" }

func (decoratorORMExtractor) Recognize(root *gast.Node, imports []string) bool {
	found := false
	gast.Walk(root, func(n *gast.Node) {
		if n.Kind == gast.KindDecorator && (n.Name == "Entity" || n.Name == "Table" || n.Name == "Model") {
			found = true
		}
	})
	return found
}

func (d decoratorORMExtractor) Extract(root *gast.Node, fileID ids.FileID, knownTables map[string]bool, varHints map[string]string) []Boundary {
	var out []Boundary
	gast.Walk(root, func(n *gast.Node) {
		if n.Kind != gast.KindClass && n.Kind != gast.KindStruct {
			return
		}
		hasEntity := false
		var fields []string
		for _, c := range n.Children {
			if c.Kind == gast.KindDecorator && (c.Name == "Entity" || c.Name == "Table" || c.Name == "Model") {
				hasEntity = true
			}
			if c.Kind == gast.KindField || c.Kind == gast.KindProperty {
				fields = append(fields, c.Name)
			}
		}
		if !hasEntity {
			return
		}
		table := toSnakeCase(n.Name)
		table = pluralizeGuess(table)
		confidence := 0.2 // framework matched
		if knownTables[table] {
			confidence += 0.3
		}
		if len(fields) > 0 {
			confidence += 0.2
		}
		confidence += 0.2 // operation determinable: declarative model => schema-level, not a literal op
		out = append(out, Boundary{
			Table: table, Framework: d.Name(), Operation: OpUnknown,
			Fields: fields, FileID: fileID, Line: n.Range.StartLine + 1, Confidence: confidence,
		})
	})
	return out
}

// queryBuilderExtractor recognizes a fluent query-builder style:
// `db.table("users").select("email").where(...)`.
type queryBuilderExtractor struct{}

func (queryBuilderExtractor) Name() string { return "query-builder" }

var queryBuilderOps = map[string]Operation{
	"select": OpRead, "find": OpRead, "get": OpRead,
	"insert": OpWrite, "create": OpWrite, "update": OpWrite, "save": OpWrite,
	"delete": OpDelete, "remove": OpDelete,
}

func (queryBuilderExtractor) Recognize(root *gast.Node, imports []string) bool {
	found := false
	gast.Walk(root, func(n *gast.Node) {
		if n.Kind == gast.KindCall {
			if _, ok := queryBuilderOps[strings.ToLower(n.Name)]; ok {
				found = true
			}
		}
	})
	return found
}

func (q queryBuilderExtractor) Extract(root *gast.Node, fileID ids.FileID, knownTables map[string]bool, varHints map[string]string) []Boundary {
	var out []Boundary
	gast.Walk(root, func(n *gast.Node) {
		if n.Kind != gast.KindCall {
			return
		}
		op, isOp := queryBuilderOps[strings.ToLower(n.Name)]
		if !isOp {
			return
		}
		table := ""
		isLiteral := false
		for _, c := range n.Children {
			if c.Kind == gast.KindLiteral {
				table = c.Name
				isLiteral = true
				break
			}
			if c.Kind == gast.KindIdentifier {
				if hint, ok := varHints[c.Name]; ok {
					table = hint
				}
			}
		}
		if table == "" {
			return
		}
		confidence := 0.2 // operation determinable
		if knownTables[table] {
			confidence += 0.3
		}
		confidence += 0.2 // framework matched
		if isLiteral {
			confidence += 0.1
		}
		out = append(out, Boundary{
			Table: table, Framework: q.Name(), Operation: op,
			FileID: fileID, Line: n.Range.StartLine + 1, Confidence: confidence,
		})
	})
	return out
}
