package httpclient

import (
	"net/url"
	"strings"
)

// FormContentType is the media type of an encoded Form.
const FormContentType = "application/x-www-form-urlencoded"

type formField struct {
	key   string
	value string
}

// Form is an application/x-www-form-urlencoded body that keeps fields in
// insertion order. The zero value is an empty form.
type Form struct {
	fields []formField
}

// Add appends a field. Repeated keys are kept.
func (f *Form) Add(key, value string) {
	f.fields = append(f.fields, formField{key: key, value: value})
}

// Get returns the first value for key.
func (f *Form) Get(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, field := range f.fields {
		if field.key == key {
			return field.value, true
		}
	}
	return "", false
}

// Keys returns field names in insertion order.
func (f *Form) Keys() []string {
	if f == nil {
		return nil
	}
	keys := make([]string, len(f.fields))
	for i, field := range f.fields {
		keys[i] = field.key
	}
	return keys
}

// Encode renders the form in insertion order.
func (f *Form) Encode() string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	for i, field := range f.fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(field.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(field.value))
	}
	return b.String()
}
