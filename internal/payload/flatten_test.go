package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRect struct {
	X     float64 `anvil:"x"`
	Width float64 `anvil:"width,omitzero"`
}

type testModel struct {
	Name          string         `anvil:"name"`
	EmailSubject  string         `anvil:"signature_email_subject,omitzero"`
	MergePDFs     *bool          `anvil:"merge_pdfs"`
	WebhookURL    string         `anvil:"webhook_url,omitzero"`
	Rect          testRect       `anvil:"rect"`
	Tags          []string       `anvil:"tags"`
	Optional      []string       `anvil:"optional,omitnil"`
	Upload        Upload         `anvil:"file"`
	Settings      map[string]any `anvil:"settings"`
	Ignored       string         `anvil:"-"`
	Extra         map[string]any `anvil:",remain"`
	unexported    string
	RoutingOrder  int `anvil:"routing_order,omitzero"`
	AcceptEachOne bool
}

func TestFlatten_ModelNaming(t *testing.T) {
	yes := true
	m := testModel{
		Name:         "Packet",
		EmailSubject: "Please sign",
		MergePDFs:    &yes,
		WebhookURL:   "https://example.com/hook",
		Rect:         testRect{X: 10},
		Settings:     map[string]any{"b_key": 2, "a_key": 1},
		Ignored:      "skip",
		Extra:        map[string]any{"serverOnly": "kept", "name": "shadowed"},
		unexported:   "skip",
	}

	obj, err := FlattenObject(m)
	require.NoError(t, err)

	out, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"Packet","signatureEmailSubject":"Please sign","mergePDFs":true,`+
			`"webhookURL":"https://example.com/hook","rect":{"x":10},"tags":[],`+
			`"settings":{"a_key":1,"b_key":2},"acceptEachOne":false,"serverOnly":"kept"}`,
		string(out))
}

func TestFlatten_UploadLeaves(t *testing.T) {
	handle := &FileHandle{Name: "a.pdf", Reader: strings.NewReader("x")}

	obj, err := FlattenObject(testModel{Upload: handle})
	require.NoError(t, err)
	v, ok := obj.Get("file")
	require.True(t, ok)
	assert.Same(t, handle, v)

	obj, err = FlattenObject(testModel{Upload: FilePath("/tmp/a.pdf")})
	require.NoError(t, err)
	v, _ = obj.Get("file")
	assert.Equal(t, FilePath("/tmp/a.pdf"), v)

	obj, err = FlattenObject(testModel{Upload: &Base64Upload{Data: "AA", Filename: "a.pdf", Mimetype: "application/pdf"}})
	require.NoError(t, err)
	v, _ = obj.Get("file")
	inline, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"data": "AA", "filename": "a.pdf", "mimetype": "application/pdf"}, inline.Map())
}

func TestFlatten_RejectsFunctions(t *testing.T) {
	_, err := Flatten(map[string]any{"cb": func() {}})
	assert.Error(t, err)
}

func TestFlattenObject_NotAnObject(t *testing.T) {
	_, err := FlattenObject([]string{"a"})
	assert.Error(t, err)
}

func TestObject_KeepsInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("b", 1)
	o.Set("a", 2)
	o.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, o.Keys())
	out, err := Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"b":3,"a":2}`, string(out))
}

func TestMarshal_NoHTMLEscape(t *testing.T) {
	out, err := Marshal(map[string]string{"html": "<p>&</p>"})
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<p>&</p>"}`, string(out))
}

func TestNewBase64Upload(t *testing.T) {
	u, err := NewBase64Upload("a.pdf", "", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", u.Data)
	assert.Equal(t, DefaultMimeType, u.Mimetype)
}
