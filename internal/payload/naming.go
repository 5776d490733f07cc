package payload

import (
	"regexp"
	"strings"
	"unicode"
)

var underscorePattern = regexp.MustCompile(`_([a-z])`)

// aliases are wire names the API spells differently from the mechanical
// camelCase transform.
var aliases = map[string]string{
	"merge_pdfs":   "mergePDFs",
	"webhook_url":  "webhookURL",
	"redirect_url": "redirectURL",
}

// CamelCase converts a snake_case name to camelCase: signature_email_subject
// becomes signatureEmailSubject. Only an underscore followed by a lowercase
// letter is folded.
func CamelCase(name string) string {
	return underscorePattern.ReplaceAllStringFunc(name, func(m string) string {
		return strings.ToUpper(m[1:])
	})
}

// SnakeCase converts a camelCase or PascalCase name to snake_case. Runs of
// capitals are kept together: DocumentID becomes document_id.
func SnakeCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FieldName returns the wire name for a snake_case source name.
func FieldName(name string) string {
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return CamelCase(name)
}

// MatchName reports whether a key from caller-supplied data addresses the
// field with the given snake_case source name. Both the source name and its
// wire name are accepted.
func MatchName(mapKey, fieldName string) bool {
	return mapKey == fieldName || mapKey == FieldName(fieldName)
}
