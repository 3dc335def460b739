package cache

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the template identity and content into a cache key: the
// hex form of the 128-bit XXH3 digest. Each part is length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) string {
	h := xxh3.New()
	size := make([]byte, 8)
	for _, part := range parts {
		binary.LittleEndian.PutUint64(size, uint64(len(part)))
		_, _ = h.Write(size)
		_, _ = h.Write([]byte(part))
	}
	return hex.EncodeToString(uint128ToBytes(h.Sum128()))
}

func uint128ToBytes(a xxh3.Uint128) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:8], a.Lo)
	binary.LittleEndian.PutUint64(b[8:16], a.Hi)
	return b
}
