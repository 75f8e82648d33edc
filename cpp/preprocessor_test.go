package cpp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blender/bslc/cpp"
	"github.com/blender/bslc/ir"
)

func TestIfdefKeepsTakenBranch(t *testing.T) {
	src := "#define FOO\nint a;\n#ifdef FOO\nint kept;\n#else\nint dropped;\n#endif\nint b;\n"
	f := ir.New("t.bsl", src, nil)
	p := cpp.New(f, nil)
	changed := p.Run()
	require.True(t, changed)

	out := f.Source()
	assert.Contains(t, out, "kept")
	assert.NotContains(t, out, "dropped")
	assert.NotContains(t, out, "#ifdef")
	assert.NotContains(t, out, "#define")
	assert.Contains(t, out, "int a;")
	assert.Contains(t, out, "int b;")
}

func TestIfElifElse(t *testing.T) {
	src := "#if 0\none\n#elif 1\ntwo\n#else\nthree\n#endif\n"
	f := ir.New("t.bsl", src, nil)
	p := cpp.New(f, nil)
	p.Run()

	out := f.Source()
	assert.NotContains(t, out, "one")
	assert.Contains(t, out, "two")
	assert.NotContains(t, out, "three")
}

func TestUndefRemovesMacro(t *testing.T) {
	src := "#define X 1\n#undef X\n#ifdef X\nyes\n#else\nno\n#endif\n"
	f := ir.New("t.bsl", src, nil)
	p := cpp.New(f, nil)
	p.Run()

	out := f.Source()
	assert.NotContains(t, out, "yes")
	assert.Contains(t, out, "no")
}

func TestFunctionLikeMacroInCondition(t *testing.T) {
	src := "#define MAX(a, b) ((a) > (b) ? (a) : (b))\n#if MAX(1, 2) == 2\nmatched\n#endif\n"
	f := ir.New("t.bsl", src, nil)
	p := cpp.New(f, nil)
	p.Run()

	assert.Contains(t, f.Source(), "matched")
}

func TestNestedConditionalsPreserveLineCount(t *testing.T) {
	src := "#if 1\n#if 0\nskip\n#endif\nkeep\n#endif\n"
	f := ir.New("t.bsl", src, nil)
	before := len(splitLines(src))
	p := cpp.New(f, nil)
	p.Run()
	out := f.Source()
	assert.Contains(t, out, "keep")
	assert.NotContains(t, out, "skip")
	assert.Equal(t, before, len(splitLines(out)))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}
