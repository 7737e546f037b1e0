package des

const mask28 = 1<<HalfBits - 1

// permute builds len(table) output bits, most significant first, by picking the
// 1-indexed positions of table out of a width-bit input.
func permute(in uint64, width uint, table []Position) uint64 {
	var out uint64
	for _, p := range table {
		out = out<<1 | (in>>(width-uint(p)))&1
	}
	return out
}

// dropParityBits discards positions 8, 16, ..., 64 of the key. The parity itself is
// never checked.
func dropParityBits(key uint64) uint64 {
	var out uint64
	for p := uint(1); p <= BlockBits; p++ {
		if p%8 == 0 {
			continue
		}
		out = out<<1 | (key>>(BlockBits-p))&1
	}
	return out
}

func rotl28(x uint32, n uint8) uint32 {
	s := uint(n) % HalfBits
	return (x<<s | x>>(HalfBits-s)) & mask28
}

func rotr28(x uint32, n uint8) uint32 {
	s := uint(n) % HalfBits
	return (x>>s | x<<(HalfBits-s)) & mask28
}

func splitKey(key uint64) (uint32, uint32) {
	return uint32(key>>HalfBits) & mask28, uint32(key) & mask28
}

func joinKey(c, d uint32) uint64 {
	return uint64(c)<<HalfBits | uint64(d)
}
