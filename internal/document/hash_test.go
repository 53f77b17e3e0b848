package document

import (
	"testing"
)

func TestBlobSHA(t *testing.T) {
	// Must match `git hash-object` so SHAs line up with what GitHub reports.
	tests := []struct {
		in   string
		want string
	}{
		{"", "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"},
		{"hello world\n", "3b18e512dba79e4c8300dd08aeb37f8e728b8dad"},
	}
	for _, tt := range tests {
		got := BlobSHA([]byte(tt.in))
		if got != tt.want {
			t.Errorf("BlobSHA(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if a, b := BlobSHA([]byte("a")), BlobSHA([]byte("b")); a == b {
		t.Errorf("BlobSHA(\"a\") == BlobSHA(\"b\")")
	}
}
