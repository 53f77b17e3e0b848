package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "state", false},
		{"  ", "state", false},
		{"vaccines", "vaccines", false},
		{"cat-1_v2", "cat-1_v2", false},
		{"a/b", "", true},
		{`a\b`, "", true},
		{"..", "", true},
		{"x\ny", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveKey(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidKey, "key %q", tt.in)
			continue
		}
		require.NoError(t, err, "key %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPath(t *testing.T) {
	assert.Equal(t, "data/state.json", Path("data", "state"))
	assert.Equal(t, "a/b/k.json", Path("/a/b/", "k"))
	assert.Equal(t, "k.json", Path("", "k"))
}

func TestDefaultCommitMessage(t *testing.T) {
	assert.Equal(t, "Update state.json", DefaultCommitMessage("state"))
}

func TestDecodeWriteRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wrapped bool
		value   string
		message string
		err     error
	}{
		{name: "wrapped", body: `{"data":{"count":5}}`, wrapped: true, value: `{"count":5}`},
		{name: "wrapped with message", body: `{"data":[1,2],"commitMessage":"dose 2"}`, wrapped: true, value: `[1,2]`, message: "dose 2"},
		{name: "falsy data is still wrapped", body: `{"data":0}`, wrapped: true, value: `0`},
		{name: "null data is bare", body: `{"data":null,"x":1}`, value: `{"data":null,"x":1}`},
		{name: "bare object", body: `{"count":5}`, value: `{"count":5}`},
		{name: "bare array", body: ` [1] `, value: `[1]`},
		{name: "non-string message ignored", body: `{"data":1,"commitMessage":7}`, wrapped: true, value: `1`},
		{name: "empty", body: "", err: ErrEmptyBody},
		{name: "null", body: "null", err: ErrEmptyBody},
		{name: "false", body: "false", err: ErrEmptyBody},
		{name: "zero", body: "0", err: ErrEmptyBody},
		{name: "negative zero", body: "-0.0", err: ErrEmptyBody},
		{name: "empty string", body: `""`, err: ErrEmptyBody},
		{name: "true is bare", body: "true", value: "true"},
		{name: "nonzero number is bare", body: "3", value: "3"},
		{name: "malformed", body: "{", err: ErrInvalidBody},
		{name: "not json", body: "not json", err: ErrInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeWriteRequest([]byte(tt.body))
			if tt.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
				return
			}
			require.NoError(t, err)
			_, isWrapped := req.Payload.(Wrapped)
			assert.Equal(t, tt.wrapped, isWrapped)
			assert.JSONEq(t, tt.value, string(req.Payload.Value()))
			assert.Equal(t, tt.message, req.CommitMessage)
		})
	}
}

func TestEncode_prettyPrints(t *testing.T) {
	out, err := Encode(Wrapped{Data: json.RawMessage(`{"count":5,"tags":["a"]}`)})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"count\": 5,\n  \"tags\": [\n    \"a\"\n  ]\n}", string(out))
}

func TestDecodeContent(t *testing.T) {
	raw, err := DecodeContent([]byte("\xEF\xBB\xBF{\n  \"count\": 5\n}\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":5}`, string(raw))

	_, err = DecodeContent([]byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformedContent)
}
