package placement

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the ordered entity list. Two runs agree on the
// fingerprint exactly when they agree on every category, position,
// orientation and scale bit for bit.
func Fingerprint(entities []Entity) uint64 {
	d := xxhash.New()
	var buf [8]byte
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}

	for _, e := range entities {
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(e.Category)))
		_, _ = d.Write(buf[:4])
		_, _ = d.WriteString(e.Category)
		for _, c := range e.Position {
			putFloat(c)
		}
		putFloat(e.Orientation.W)
		for _, c := range e.Orientation.V {
			putFloat(c)
		}
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(e.Scale))
		_, _ = d.Write(buf[:4])
	}
	return d.Sum64()
}
