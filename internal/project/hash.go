package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest identifies a set of source texts; the program cache is keyed by it.
type Digest [32]byte

// SourceDigest hashes one unit. The path takes part so that renaming a
// file changes the key.
func SourceDigest(path string, text []byte) Digest {
	h := sha256.New()
	_, _ = h.Write([]byte(path))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(text)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Combine folds unit digests in the given order.
func Combine(parts ...Digest) Digest {
	h := sha256.New()
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }
