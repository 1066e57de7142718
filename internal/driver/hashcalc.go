package driver

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a blake3 sum used as a disk cache key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// cacheKey: H(schema || limit || sorted known filters || content).
// Everything that changes the diagnostics of a file must be part of the key.
func cacheKey(content []byte, opts ParseOptions) Digest {
	h := blake3.New()
	fmt.Fprintf(h, "dtl-check/v%d\n", diskCacheSchemaVersion)
	fmt.Fprintf(h, "max: %d\n", opts.maxDiagnostics())
	known := NewFilterSet(opts.KnownFilters)
	for _, name := range known.Names() {
		fmt.Fprintf(h, "f: %s\n", name)
	}
	fmt.Fprintf(h, "c: %d\n", len(content))
	_, _ = h.Write(content)

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
