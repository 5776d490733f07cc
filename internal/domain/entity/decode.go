package entity

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"anvil-esign/internal/payload"
)

var (
	uploadType        = reflect.TypeOf((*payload.Upload)(nil)).Elem()
	etchFileType      = reflect.TypeOf((*EtchFile)(nil)).Elem()
	markdownFieldType = reflect.TypeOf((*MarkdownField)(nil)).Elem()
)

// Decode fills out from caller-supplied map data. Keys may use the snake_case
// source names or their camelCase wire names; keys that match no field are
// kept in the model's Extra map.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:   payload.TagName,
		MatchName: payload.MatchName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			uploadHook,
			etchFileHook,
			markdownFieldHook,
		),
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return &ValidationError{Message: err.Error(), Err: err}
	}
	return nil
}

// DecodeSigner decodes a signer from map data.
func DecodeSigner(m map[string]any) (*EtchSigner, error) {
	var s EtchSigner
	if err := Decode(m, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeFile decodes an attachable file, choosing the variant by the keys
// present: cast_eid, then markup, then file, then filename. A map with
// none of them but a title is an upload without content.
func DecodeFile(m map[string]any) (EtchFile, error) {
	var f EtchFile
	switch {
	case hasKey(m, "cast_eid"):
		f = &CastReference{}
	case hasKey(m, "markup"):
		f = &DocumentMarkup{}
	case hasKey(m, "file"):
		f = &DocumentUpload{}
	case hasKey(m, "filename"):
		f = &DocumentMarkdown{}
	case hasKey(m, "title"):
		f = &DocumentUpload{}
	default:
		return nil, &ValidationError{
			Field:   "files",
			Message: "entry must have one of cast_eid, markup, file or filename",
		}
	}
	if err := Decode(m, f); err != nil {
		return nil, err
	}
	return f, nil
}

// DecodeForgeSubmit decodes a forge submission. Without a forge_eid the
// payload member is taken to be the complete submission.
func DecodeForgeSubmit(m map[string]any) (*ForgeSubmitPayload, error) {
	src := m
	if !hasKey(m, "forge_eid") {
		inner, ok := m["payload"].(map[string]any)
		if !ok {
			return nil, &ValidationError{Field: "forge_eid", Message: "is required"}
		}
		src = inner
	}

	var p ForgeSubmitPayload
	if err := Decode(src, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func hasKey(m map[string]any, name string) bool {
	for k := range m {
		if payload.MatchName(k, name) {
			return true
		}
	}
	return false
}

func uploadHook(from, to reflect.Type, data any) (any, error) {
	if to != uploadType {
		return data, nil
	}
	switch v := data.(type) {
	case payload.Upload:
		return v, nil
	case string:
		return payload.FilePath(v), nil
	case map[string]any:
		var u payload.Base64Upload
		if err := Decode(v, &u); err != nil {
			return nil, err
		}
		return &u, nil
	}
	return nil, fmt.Errorf("cannot use %s as file content", from)
}

func etchFileHook(from, to reflect.Type, data any) (any, error) {
	if to != etchFileType {
		return data, nil
	}
	switch v := data.(type) {
	case EtchFile:
		return v, nil
	case map[string]any:
		return DecodeFile(v)
	}
	return nil, fmt.Errorf("cannot use %s as a packet file", from)
}

func markdownFieldHook(from, to reflect.Type, data any) (any, error) {
	if to != markdownFieldType {
		return data, nil
	}
	switch v := data.(type) {
	case MarkdownField:
		return v, nil
	case map[string]any:
		// signature fields are the ones that place something on a page
		if hasKey(v, "id") && hasKey(v, "type") && hasKey(v, "page_num") && hasKey(v, "rect") {
			var f SignatureField
			if err := Decode(v, &f); err != nil {
				return nil, err
			}
			return &f, nil
		}
		var c MarkdownContent
		if err := Decode(v, &c); err != nil {
			return nil, err
		}
		return &c, nil
	}
	return nil, fmt.Errorf("cannot use %s as a markdown field", from)
}
