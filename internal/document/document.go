// Package document holds the JSON document model: keys, repository paths,
// request payloads and the encoding used for stored content.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultKey is used when a request names no key.
const DefaultKey = "state"

var (
	ErrInvalidKey       = errors.New("invalid key")
	ErrMalformedContent = errors.New("stored content is not valid JSON")
)

// ResolveKey applies the default and rejects keys that would escape the
// configured directory.
func ResolveKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return DefaultKey, nil
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return key, nil
}

// Path is the repository path of the document stored under key.
func Path(dir, key string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return key + ".json"
	}
	return dir + "/" + key + ".json"
}

// DefaultCommitMessage is used when a write carries no commitMessage.
func DefaultCommitMessage(key string) string {
	return fmt.Sprintf("Update %s.json", key)
}

// Encode renders a payload the way it is committed: two-space indented JSON.
func Encode(p Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, p.Value(), "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeContent validates stored bytes as a JSON value.
func DecodeContent(raw []byte) (json.RawMessage, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		var v any
		err := json.Unmarshal(raw, &v)
		return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	return json.RawMessage(raw), nil
}
