package flatten

import (
	"fmt"
	"strings"
)

// SplitExt splits name at its last dot. Leading dots belong to the base,
// so ".bashrc" has no extension while "a.tar.gz" splits into "a.tar" and
// ".gz".
func SplitExt(name string) (base, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, ""
	}
	if strings.TrimLeft(name[:dot], ".") == "" {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// CandidateName returns the n-th collision name for name: base_n.ext.
func CandidateName(name string, n int) string {
	base, ext := SplitExt(name)
	return fmt.Sprintf("%s_%d%s", base, n, ext)
}
