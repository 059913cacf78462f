package grid

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/mr-tron/base58"
)

// Fingerprint returns a short, stable, human-loggable identifier for the
// grid's current contents: an FNV hash of every cell's quantized
// probability, base58-encoded the way the rest of the codebase encodes
// short binary IDs. Two grids with identical occupancy produce the same
// fingerprint regardless of update order, which makes it useful for
// logging "did the map actually change" around a replan decision without
// dumping the whole grid.
func (g *Grid) Fingerprint() string {
	h := fnv.New64a()
	buf := make([]byte, 2)
	for _, row := range g.Cells {
		for _, cell := range row {
			binary.BigEndian.PutUint16(buf, uint16(cell.Probability*65535))
			h.Write(buf)
		}
	}
	sum := make([]byte, 8)
	binary.BigEndian.PutUint64(sum, h.Sum64())
	return base58.Encode(sum)
}
