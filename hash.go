package zkgroup

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/dgryski/go-jump"
)

// PickMember allocates a key to one member of the snapshot using jump
// consistent hashing, allocating keys (somewhat) evenly. The snapshot is
// sorted internally so the same key and member set always pick the same
// member regardless of snapshot order. It returns false for an empty
// snapshot.
func PickMember(key string, members []string) (string, bool) {
	if len(members) == 0 {
		return "", false
	}

	sorted := append([]string(nil), members...)
	sort.Strings(sorted)

	// Convert the key string to a uint64 hash key
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	b := h.Sum(nil)
	k := binary.BigEndian.Uint64(b[len(b)-8:])

	return sorted[jump.Hash(k, len(sorted))], true
}
