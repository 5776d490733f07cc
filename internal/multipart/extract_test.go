package multipart

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anvil-esign/internal/payload"
)

func isFileHandle(v any) bool {
	_, ok := v.(*payload.FileHandle)
	return ok
}

func TestExtract_NestedHandle(t *testing.T) {
	handle := &payload.FileHandle{Name: "doc.pdf", Reader: strings.NewReader("%PDF")}
	tree := map[string]any{
		"a": []any{map[string]any{"f": handle}},
		"b": "text",
	}

	out, pairs := Extract(tree, isFileHandle, "variables")

	require.Len(t, pairs, 1)
	assert.Equal(t, "variables.a.0.f", pairs[0].Path)
	assert.Same(t, handle, pairs[0].Value)

	want := map[string]any{
		"a": []any{map[string]any{"f": nil}},
		"b": "text",
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("extracted tree mismatch (-want +got):\n%s", diff)
	}

	// the input is left untouched
	inner := tree["a"].([]any)[0].(map[string]any)
	assert.Same(t, handle, inner["f"])
}

func TestExtract_IntPredicate(t *testing.T) {
	isInt := func(v any) bool {
		_, ok := v.(int)
		return ok
	}
	tree := map[string]any{
		"a": 1,
		"b": "2",
		"c": map[string]any{"d": 3, "e": []any{4, "5"}},
	}

	out, pairs := Extract(tree, isInt, "variables")

	assert.Equal(t, []Pair{
		{Path: "variables.a", Value: 1},
		{Path: "variables.c.d", Value: 3},
		{Path: "variables.c.e.0", Value: 4},
	}, pairs)
	want := map[string]any{
		"a": nil,
		"b": "2",
		"c": map[string]any{"d": nil, "e": []any{nil, "5"}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("extracted tree mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Completeness(t *testing.T) {
	build := func() *payload.Object {
		files := []any{}
		for i := 0; i < 5; i++ {
			doc := payload.NewObject()
			doc.Set("id", "file")
			doc.Set("file", payload.FilePath("/tmp/doc.pdf"))
			files = append(files, doc)
		}
		nested := payload.NewObject()
		nested.Set("deep", []any{[]any{payload.FilePath("/tmp/deep.pdf")}})

		root := payload.NewObject()
		root.Set("name", "Packet")
		root.Set("files", files)
		root.Set("nested", nested)
		root.Set("inline", &payload.Base64Upload{Data: "AAAA", Filename: "inline.pdf"})
		return root
	}

	tree := build()
	out, pairs := Extract(tree, IsUpload, "variables")
	require.Len(t, pairs, 6)

	// every extracted position is nil in the output
	obj := out.(*payload.Object)
	files, _ := obj.Get("files")
	for _, f := range files.([]any) {
		v, _ := f.(*payload.Object).Get("file")
		assert.Nil(t, v)
	}
	nested, _ := obj.Get("nested")
	deep, _ := nested.(*payload.Object).Get("deep")
	assert.Equal(t, []any{[]any{nil}}, deep)

	// the rest of the tree is unchanged
	name, _ := obj.Get("name")
	assert.Equal(t, "Packet", name)
	inline, _ := obj.Get("inline")
	assert.IsType(t, &payload.Base64Upload{}, inline)
	assert.Equal(t, tree.Keys(), obj.Keys())

	// a fresh tree with the same shape yields the same paths in the same order
	_, again := Extract(build(), IsUpload, "variables")
	require.Len(t, again, len(pairs))
	for i := range pairs {
		assert.Equal(t, pairs[i].Path, again[i].Path)
	}
	assert.Equal(t, "variables.files.0.file", pairs[0].Path)
	assert.Equal(t, "variables.files.4.file", pairs[4].Path)
	assert.Equal(t, "variables.nested.deep.0.0", pairs[5].Path)
}

func TestExtract_SortedMapKeys(t *testing.T) {
	tree := map[string]any{
		"zeta":  payload.FilePath("z.pdf"),
		"alpha": payload.FilePath("a.pdf"),
		"mid":   payload.FilePath("m.pdf"),
	}

	_, pairs := Extract(tree, IsUpload, "variables")

	require.Len(t, pairs, 3)
	assert.Equal(t, "variables.alpha", pairs[0].Path)
	assert.Equal(t, "variables.mid", pairs[1].Path)
	assert.Equal(t, "variables.zeta", pairs[2].Path)
}

func TestExtract_EmptyInputs(t *testing.T) {
	always := func(any) bool { return true }

	for name, tree := range map[string]any{
		"nil":          nil,
		"empty map":    map[string]any{},
		"empty object": payload.NewObject(),
		"empty slice":  []any{},
		"empty string": "",
		"false":        false,
		"zero":         0,
	} {
		t.Run(name, func(t *testing.T) {
			out, pairs := Extract(tree, always, "variables")
			assert.Empty(t, pairs)
			assert.Equal(t, tree, out)
		})
	}
}

func TestExtract_RootMatch(t *testing.T) {
	handle := &payload.FileHandle{Name: "root.pdf", Reader: strings.NewReader("x")}

	out, pairs := Extract(handle, IsUpload, "variables")

	assert.Nil(t, out)
	assert.Equal(t, []Pair{{Path: "variables", Value: handle}}, pairs)
}

func TestExtract_TypedContainers(t *testing.T) {
	handle := &payload.FileHandle{Name: "b.pdf", Reader: strings.NewReader("%PDF")}
	tree := map[string]any{
		"files": []map[string]any{{"id": "a", "file": payload.FilePath("/tmp/a.pdf")}},
		"docs":  []*payload.FileHandle{handle},
		"more":  map[string][]any{"x": {"keep"}},
	}

	out, pairs := Extract(tree, IsUpload, "variables")

	assert.Equal(t, []Pair{
		{Path: "variables.docs.0", Value: handle},
		{Path: "variables.files.0.file", Value: payload.FilePath("/tmp/a.pdf")},
	}, pairs)

	want := map[string]any{
		"docs":  []any{nil},
		"files": []any{map[string]any{"id": "a", "file": nil}},
		"more":  map[string]any{"x": []any{"keep"}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("extracted tree mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, HasUploads(tree))
}
