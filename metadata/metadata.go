// Package metadata accumulates the structured, order-preserving record a
// lowering pipeline builds alongside its transformed source: dependencies,
// resource/interface declarations, printf format strings, and the create-info
// fragments re-emitted to the downstream backend (spec.md §4.10), grounded on
// original_source's metadata.hh/metadata.cc.
package metadata

import (
	"iter"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/btree"

	"github.com/blender/bslc/internal/toposort"
)

// Qualifier is a function parameter's passing convention, carried per
// SPEC_FULL.md §4.11 ("function.cc's node-library function metadata
// additionally records each parameter's qualifier").
type Qualifier int

const (
	QualifierValue Qualifier = iota
	QualifierIn
	QualifierOut
	QualifierInout
)

func (q Qualifier) String() string {
	switch q {
	case QualifierIn:
		return "in"
	case QualifierOut:
		return "out"
	case QualifierInout:
		return "inout"
	default:
		return ""
	}
}

// NodeFunctionParam is one parameter of a [[node]]-decorated function.
type NodeFunctionParam struct {
	Type      string
	Name      string
	Qualifier Qualifier
}

// NodeFunction is a node-library function prototype (spec.md §4.10
// "functions: node-library function signatures").
type NodeFunction struct {
	Name   string
	Return string
	Params []NodeFunctionParam
}

// PrintfFormat is one string literal lowered to a hash, with the original
// text preserved for the runtime string table (spec.md §4.9 "Strings,
// printf, assert": "Replace string literals by their hash and store the
// original string in the file metadata").
type PrintfFormat struct {
	Hash uint32
	Text string
}

// SharedVariable is a `shared T name;` declaration extracted by the
// threadgroup-variable pass (spec.md §4.9 "Cleanup & parse").
type SharedVariable struct {
	Type string
	Name string
}

// ResourceKind buckets a resource_table member (spec.md §4.9 "Resource
// tables").
type ResourceKind int

const (
	ResourceSampler ResourceKind = iota
	ResourceImage
	ResourceUniform
	ResourceStorage
	ResourcePushConstant
	ResourceConstant
)

// Resource is one member of a [[resource_table]] struct.
type Resource struct {
	Kind ResourceKind
	Type string
	Name string
	// Args holds the raw attribute arguments (binding index, format, …)
	// exactly as written, since their shape varies per Kind.
	Args []string
}

// StageInterfaceKind is the other resource_table bucket family: per-vertex
// varyings rather than backend resources.
type StageInterfaceKind int

const (
	InterfaceAttribute StageInterfaceKind = iota
	InterfaceFlat
	InterfaceSmooth
	InterfaceNoPerspective
	InterfaceFragColor
	InterfaceFragDepth
	InterfaceFragStencilRef
)

// StageInterface is one stage-interface member.
type StageInterface struct {
	Kind StageInterfaceKind
	Type string
	Name string
	Args []string
}

// VertexInput and FragmentOutput record entry-point parameter bindings
// after lower_entry_points rewrites them to built-ins (spec.md §4.9 "Entry
// points").
type VertexInput struct {
	Type string
	Name string
}

type FragmentOutput struct {
	Type  string
	Name  string
	Index int
}

// SpecializationConstant is its own bucket, distinct from a regular
// compilation constant — SPEC_FULL.md §4.11, grounded on original_source's
// metadata.hh separating the two.
type SpecializationConstant struct {
	Type string
	Name string
	// Default is the literal default value text, if any.
	Default string
}

// SymbolEntry is one row of the per-file symbol table (spec.md §4.10
// "symbol_table: entries sortable first by is_method ... then by namespace
// (descending), then by definition line, then by identifier").
type SymbolEntry struct {
	Identifier string
	Namespace  string
	Line       int
	IsMethod   bool
}

func symbolLess(a, b SymbolEntry) bool {
	if a.IsMethod != b.IsMethod {
		// Methods first.
		return a.IsMethod && !b.IsMethod
	}
	if a.Namespace != b.Namespace {
		// Descending namespace order, per spec.md §4.10.
		return a.Namespace > b.Namespace
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Identifier < b.Identifier
}

// Source is the full per-file metadata record (spec.md §4.10).
type Source struct {
	Dependencies []string
	Builtins     []string

	SharedVariables []SharedVariable
	PrintfFormats   []PrintfFormat
	Functions       []NodeFunction

	ResourceTables  []Resource
	StageInterfaces []StageInterface
	VertexInputs    []VertexInput
	FragmentOutputs []FragmentOutput

	SpecializationConstants []SpecializationConstant

	CreateInfos             []string
	CreateInfosDeclarations []string
	CreateInfosDefines      []string

	symbols *btree.BTreeG[SymbolEntry]

	dependencySet map[string]bool
	builtinSet    map[string]bool
}

// NewSource returns an empty, ready-to-use metadata record.
func NewSource() *Source {
	return &Source{
		symbols:       btree.NewBTreeG(symbolLess),
		dependencySet: map[string]bool{},
		builtinSet:    map[string]bool{},
	}
}

// AddDependency appends path to Dependencies if it has not been seen yet,
// preserving first-seen order (spec.md §4.10 "dedup-ordered include list").
func (s *Source) AddDependency(path string) {
	if s.dependencySet[path] {
		return
	}
	s.dependencySet[path] = true
	s.Dependencies = append(s.Dependencies, path)
}

// AddBuiltin records a builtin identifier, deduplicated.
func (s *Source) AddBuiltin(name string) {
	if s.builtinSet[name] {
		return
	}
	s.builtinSet[name] = true
	s.Builtins = append(s.Builtins, name)
}

// AddSymbol inserts an entry into the order-independent symbol table;
// Symbols returns it fully sorted.
func (s *Source) AddSymbol(e SymbolEntry) {
	s.symbols.Set(e)
}

// Symbols returns the symbol table in the canonical sort order (spec.md
// §4.10).
func (s *Source) Symbols() []SymbolEntry {
	out := make([]SymbolEntry, 0, s.symbols.Len())
	s.symbols.Scan(func(e SymbolEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// HashString folds a 64-bit FNV-1a hash into 32 bits, per spec.md §4.9
// "String literal → string_t(<u32 hash>)... (fold of FNV-1a 64 → 32)".
func HashString(str string) uint32 {
	h := fnv1a64(str)
	return uint32(h ^ (h >> 32))
}

func fnv1a64(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// AddPrintfFormat records str under its 32-bit hash, returning the hash for
// use as the string_t(...) literal.
func (s *Source) AddPrintfFormat(str string) uint32 {
	h := HashString(str)
	for _, f := range s.PrintfFormats {
		if f.Hash == h {
			return h
		}
	}
	s.PrintfFormats = append(s.PrintfFormats, PrintfFormat{Hash: h, Text: str})
	return h
}

// Serialize renders the create-info-consumable fragments the downstream
// backend expects: one CREATE_INFO_DEPENDENCY line per dependency, the
// CreateInfosDefines lines, the recorded create-info blocks in
// ADDITIONAL_INFO topological order, and one PRINTF_FORMAT line per printf
// format (sorted by hash). Builtins are not emitted. Grounded on original_source's
// per-bucket `serialize()` responsibility described in metadata.cc (spec.md
// §4.10: "Each record has a canonical serialize() emitting the create-info
// macro form consumed by the downstream backend").
func (s *Source) Serialize() string {
	var b strings.Builder
	for _, dep := range s.Dependencies {
		b.WriteString("CREATE_INFO_DEPENDENCY(")
		b.WriteString(dep)
		b.WriteString(")\n")
	}
	for _, def := range s.CreateInfosDefines {
		b.WriteString(def)
		b.WriteString("\n")
	}
	for _, info := range orderCreateInfos(s.CreateInfosDeclarations, s.CreateInfos) {
		b.WriteString(info)
		b.WriteString("\n")
	}
	for _, f := range sortedPrintf(s.PrintfFormats) {
		b.WriteString("PRINTF_FORMAT(")
		b.WriteString(strconv.FormatUint(uint64(f.Hash), 10))
		b.WriteString(", \"")
		b.WriteString(f.Text)
		b.WriteString("\")\n")
	}
	return b.String()
}

func sortedPrintf(formats []PrintfFormat) []PrintfFormat {
	out := make([]PrintfFormat, len(formats))
	copy(out, formats)
	sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	return out
}

var (
	createInfoNameRe = regexp.MustCompile(`GPU_SHADER_CREATE_INFO\(([\w]+)\)`)
	additionalInfoRe = regexp.MustCompile(`ADDITIONAL_INFO\(([\w]+)\)`)
)

// orderCreateInfos topologically sorts declarations and pipeline infos so
// that any GPU_SHADER_CREATE_INFO an ADDITIONAL_INFO(...) names is emitted
// before the block that references it, regardless of pass ordering. A block
// whose name can't be parsed is appended after the sorted blocks rather
// than dropped; a dangling ADDITIONAL_INFO reference to a name nothing
// declares is simply not followed.
func orderCreateInfos(declarations, infos []string) []string {
	all := make([]string, 0, len(declarations)+len(infos))
	all = append(all, declarations...)
	all = append(all, infos...)

	byName := make(map[string]string, len(all))
	var order []string
	for _, block := range all {
		m := createInfoNameRe.FindStringSubmatch(block)
		if m == nil {
			order = append(order, "")
			continue
		}
		name := m[1]
		byName[name] = block
		order = append(order, name)
	}

	var roots []string
	for _, name := range order {
		if name != "" {
			roots = append(roots, name)
		}
	}

	var sorter toposort.Sorter[string, string]
	sorter.Key = func(n string) string { return n }
	sorted := slices.Collect(sorter.Sort(roots, func(n string) iter.Seq[string] {
		return func(yield func(string) bool) {
			for _, dep := range additionalInfoRe.FindAllStringSubmatch(byName[n], -1) {
				if _, ok := byName[dep[1]]; ok {
					if !yield(dep[1]) {
						return
					}
				}
			}
		}
	}))

	out := make([]string, 0, len(all))
	for _, name := range sorted {
		out = append(out, byName[name])
	}
	for i, name := range order {
		if name == "" {
			out = append(out, all[i])
		}
	}
	return out
}
