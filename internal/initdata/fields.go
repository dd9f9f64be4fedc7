package initdata

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

// Reserved field names
const (
	FieldHash     = "hash"
	FieldAuthDate = "auth_date"
	FieldUser     = "user"

	FieldQueryID      = "query_id"
	FieldChatType     = "chat_type"
	FieldChatInstance = "chat_instance"
	FieldStartParam   = "start_param"
)

// Field is a single decoded key/value pair of a launch payload
type Field struct {
	Key   string
	Value string
}

// FieldSet is the decoded payload in source order. Keys are unique: a repeated
// key keeps the position of its first occurrence and the value of its last.
type FieldSet struct {
	fields []Field
	index  map[string]int
}

func newFieldSet() FieldSet {
	return FieldSet{index: make(map[string]int)}
}

func (fs *FieldSet) set(key, value string) {
	if i, ok := fs.index[key]; ok {
		fs.fields[i].Value = value
		return
	}
	fs.index[key] = len(fs.fields)
	fs.fields = append(fs.fields, Field{Key: key, Value: value})
}

// Get returns the value stored under key
func (fs FieldSet) Get(key string) (string, bool) {
	i, ok := fs.index[key]
	if !ok {
		return "", false
	}
	return fs.fields[i].Value, true
}

// Len returns the number of fields
func (fs FieldSet) Len() int {
	return len(fs.fields)
}

// Fields returns a copy of the fields in source order
func (fs FieldSet) Fields() []Field {
	out := make([]Field, len(fs.fields))
	copy(out, fs.fields)
	return out
}

// Keys returns the field names in source order
func (fs FieldSet) Keys() []string {
	keys := make([]string, len(fs.fields))
	for i, f := range fs.fields {
		keys[i] = f.Key
	}
	return keys
}

// without returns a copy of fs with key removed
func (fs FieldSet) without(key string) FieldSet {
	out := newFieldSet()
	for _, f := range fs.fields {
		if f.Key != key {
			out.set(f.Key, f.Value)
		}
	}
	return out
}

func decodeComponent(s string) (string, error) {
	decoded, err := url.QueryUnescape(s)
	if err != nil || !utf8.ValidString(decoded) {
		return "", reject(MalformedData)
	}
	return decoded, nil
}

// Canonicalize parses raw, isolates the signature and returns the remaining
// fields. A missing signature is reported ahead of decoding problems in other
// fields.
func Canonicalize(raw string) (FieldSet, string, error) {
	fs, hashSeen, parseErr := parseFields(raw)

	signature, ok := fs.Get(FieldHash)
	if !ok || signature == "" {
		// a hash that is present but undecodable is malformed, not missing
		if hashSeen && parseErr != nil {
			return FieldSet{}, "", parseErr
		}
		return FieldSet{}, "", reject(MissingSignature)
	}

	if parseErr != nil {
		return FieldSet{}, "", parseErr
	}

	return fs.without(FieldHash), signature, nil
}

// ParseFields decodes a query-string encoded payload into a FieldSet. Empty
// segments are skipped. On failure the returned set still holds every segment
// that decoded, and the error reports the first one that did not.
func ParseFields(raw string) (FieldSet, error) {
	fs, _, err := parseFields(raw)
	return fs, err
}

// parseFields also reports whether a hash segment was present, even one whose
// value failed to decode
func parseFields(raw string) (FieldSet, bool, error) {
	fs := newFieldSet()
	var firstErr error
	hashSeen := false

	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}

		rawKey, rawValue, found := strings.Cut(segment, "=")
		if !found || rawKey == "" {
			if firstErr == nil {
				firstErr = reject(MalformedData)
			}
			continue
		}

		key, kerr := decodeComponent(rawKey)
		value, verr := decodeComponent(rawValue)
		if kerr == nil && key == FieldHash {
			hashSeen = true
		}
		if kerr != nil || verr != nil {
			if firstErr == nil {
				firstErr = reject(MalformedData)
			}
			continue
		}

		fs.set(key, value)
	}

	if firstErr == nil && fs.Len() == 0 {
		firstErr = reject(MalformedData)
	}

	return fs, hashSeen, firstErr
}

// DataCheckString sorts fields by name (byte-wise) and joins them as
// key=value lines separated by a single newline.
func DataCheckString(fs FieldSet) string {
	fields := fs.Fields()
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Key < fields[j].Key
	})

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}
