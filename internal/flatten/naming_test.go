package flatten

import "testing"

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name string
		base string
		ext  string
	}{
		{"x.txt", "x", ".txt"},
		{"a.tar.gz", "a.tar", ".gz"},
		{"noext", "noext", ""},
		{".bashrc", ".bashrc", ""},
		{"..a", "..a", ""},
		{".a.b", ".a", ".b"},
		{"trailing.", "trailing", "."},
	}

	for _, tt := range tests {
		base, ext := SplitExt(tt.name)
		if base != tt.base || ext != tt.ext {
			t.Errorf("SplitExt(%q): expected (%q, %q), got (%q, %q)", tt.name, tt.base, tt.ext, base, ext)
		}
	}
}

func TestCandidateName(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"a.txt", 1, "a_1.txt"},
		{"a.txt", 12, "a_12.txt"},
		{"noext", 2, "noext_2"},
		{".hidden", 1, ".hidden_1"},
		{"a.tar.gz", 3, "a.tar_3.gz"},
	}

	for _, tt := range tests {
		if got := CandidateName(tt.name, tt.n); got != tt.want {
			t.Errorf("CandidateName(%q, %d): expected %q, got %q", tt.name, tt.n, tt.want, got)
		}
	}
}
