package hash

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const bufferSize = 32 * 1024

// File streams the file at path through xxHash and returns the hex digest.
func File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := xxhash.New()
	if _, err := io.CopyBuffer(h, file, make([]byte, bufferSize)); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Node is the go-merkletree hash function: big-endian xxHash64 of data.
func Node(data []byte) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64(data))
	return buf, nil
}

// Key returns a short stable identifier for s, safe to use in file names.
func Key(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}
