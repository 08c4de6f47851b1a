package codec

// cacheSize is the number of slots in the color cache (§3: "fixed-size
// array cache[0..128]").
const cacheSize = 128

// cache is the 128-slot color cache shared by the encoder and decoder. Both
// sides seed it identically (all-zero pixels, including alpha) and mutate it
// identically so that, after any given emitted byte, encoder and decoder
// caches agree (P2 cache coherence).
type cache struct {
	slots [cacheSize]Pixel
}

// newCache returns a cache seeded with the all-zero pixel in every slot.
// The zero value of cache already satisfies this, but newCache documents
// the invariant at call sites.
func newCache() *cache {
	return &cache{}
}

// lookup returns the pixel stored at p's hash slot and whether it equals p
// (a cache hit).
func (c *cache) lookup(p Pixel) (slot byte, hit bool) {
	slot = hash(p)
	return slot, c.slots[slot] == p
}

// set stores p at its hash slot. Called on every non-repeat, non-INDEX
// emission (§3 invariant b); never called for run-type-0 pixels (invariant
// c) or INDEX emissions (invariant d, the slot already holds p).
func (c *cache) set(p Pixel) {
	c.slots[hash(p)] = p
}

// at returns the pixel stored at the given slot, used to satisfy an INDEX
// opcode.
func (c *cache) at(slot byte) Pixel {
	return c.slots[slot]
}
