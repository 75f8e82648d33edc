package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/metadata"
)

func TestSymbolTableSortOrder(t *testing.T) {
	s := metadata.NewSource()
	s.AddSymbol(metadata.SymbolEntry{Identifier: "b_func", Namespace: "alpha", Line: 10, IsMethod: false})
	s.AddSymbol(metadata.SymbolEntry{Identifier: "a_method", Namespace: "beta", Line: 5, IsMethod: true})
	s.AddSymbol(metadata.SymbolEntry{Identifier: "c_method", Namespace: "alpha", Line: 1, IsMethod: true})
	s.AddSymbol(metadata.SymbolEntry{Identifier: "a_func", Namespace: "alpha", Line: 2, IsMethod: false})

	got := s.Symbols()
	var ids []string
	for _, e := range got {
		ids = append(ids, e.Identifier)
	}
	// Methods first; within methods, namespace descending (beta > alpha);
	// within non-methods, namespace descending then line ascending.
	assert.Equal(t, []string{"a_method", "c_method", "a_func", "b_func"}, ids)
}

func TestDependencyDedup(t *testing.T) {
	s := metadata.NewSource()
	s.AddDependency("a.bsl")
	s.AddDependency("b.bsl")
	s.AddDependency("a.bsl")
	assert.Equal(t, []string{"a.bsl", "b.bsl"}, s.Dependencies)
}

func TestPrintfFormatHashDedup(t *testing.T) {
	s := metadata.NewSource()
	h1 := s.AddPrintfFormat("hello %d")
	h2 := s.AddPrintfFormat("hello %d")
	h3 := s.AddPrintfFormat("other")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, s.PrintfFormats, 2)
}

func TestSerializeOrdersCreateInfosByDependency(t *testing.T) {
	s := metadata.NewSource()
	// Pipeline info is appended before the entry-point info it references,
	// as lower_pipelines and lower_entry_points would if run in the other
	// order; Serialize must still emit the dependency first.
	s.CreateInfos = append(s.CreateInfos, "GPU_SHADER_CREATE_INFO(main_pipeline)\nADDITIONAL_INFO(vert_infos_)\n")
	s.CreateInfosDeclarations = append(s.CreateInfosDeclarations, "GPU_SHADER_CREATE_INFO(vert_infos_)\n")

	out := s.Serialize()
	depIdx := indexOf(out, "vert_infos_")
	useIdx := indexOf(out, "main_pipeline")
	assert.Greater(t, useIdx, depIdx)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestSerializeEmitsDependenciesAndFormats(t *testing.T) {
	s := metadata.NewSource()
	s.AddDependency("common.bsl")
	s.AddPrintfFormat("x=%d")
	out := s.Serialize()
	assert.Contains(t, out, "CREATE_INFO_DEPENDENCY(common.bsl)")
	assert.Contains(t, out, "PRINTF_FORMAT(")
	assert.Contains(t, out, "x=%d")
}
