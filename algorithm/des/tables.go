package des

import (
	myErrors "TripleDES/internal/errors"
	"fmt"
	"strings"
)

const (
	Rounds     = 16
	BlockBits  = 64
	KeyBits    = 56
	HalfBits   = 28
	SubkeyBits = 48
	SBoxCount  = 8
)

// Position is a 1-indexed bit position inside the input of a permutation table.
type Position uint8

// Nibble is a 4-bit S-box cell.
type Nibble uint8

// SBox is indexed by [row][column].
type SBox [4][16]Nibble

// SBoxIndexing selects how the outer and inner bits of a 6-bit group are weighted
// when they are turned into an S-box row and column.
type SBoxIndexing int

const (
	// IndexLSBFirst gives the first-read bit of the row and of the column the weight 2^0.
	IndexLSBFirst SBoxIndexing = iota
	// IndexMSBFirst is the FIPS 46-3 order: the first-read bit is the most significant.
	IndexMSBFirst
)

func (i SBoxIndexing) String() string {
	switch i {
	case IndexLSBFirst:
		return "lsb"
	case IndexMSBFirst:
		return "msb"
	default:
		return fmt.Sprintf("SBoxIndexing(%d)", int(i))
	}
}

func ParseSBoxIndexing(indexing string) (SBoxIndexing, error) {
	switch strings.ToUpper(indexing) {
	case "", "LSB":
		return IndexLSBFirst, nil
	case "MSB", "FIPS":
		return IndexMSBFirst, nil
	default:
		return 0, fmt.Errorf("unknown sbox indexing: %s", indexing)
	}
}

// Tables is the full set of lookup data the cipher core needs. It is immutable once
// handed to New and may be shared between goroutines.
type Tables struct {
	Initial       [BlockBits]Position
	Final         [BlockBits]Position
	Expansion     [SBoxCount][6]Position
	PBox          [SBoxCount][4]Position
	Contraction   [SubkeyBits]Position
	EncryptShifts [Rounds]uint8
	DecryptShifts [Rounds]uint8
	SBoxes        [SBoxCount]SBox
	Indexing      SBoxIndexing
}

func (t *Tables) Validate() error {
	if t == nil {
		return myErrors.ErrTablesUnavailable
	}

	if err := checkPermutation("initial permutation", t.Initial[:], BlockBits); err != nil {
		return err
	}
	if err := checkPermutation("final permutation", t.Final[:], BlockBits); err != nil {
		return err
	}
	for i, p := range t.Initial {
		if t.Final[p-1] != Position(i+1) {
			return fmt.Errorf("%w: final permutation is not the inverse of the initial permutation", myErrors.ErrMalformedTable)
		}
	}

	expansion := t.flatExpansion()
	if err := checkRange("expansion", expansion[:], 32); err != nil {
		return err
	}

	pbox := t.flatPBox()
	if err := checkPermutation("pbox", pbox[:], 32); err != nil {
		return err
	}

	if err := checkRange("key contraction", t.Contraction[:], KeyBits); err != nil {
		return err
	}
	if err := checkDistinct("key contraction", t.Contraction[:], KeyBits); err != nil {
		return err
	}

	for b := range t.SBoxes {
		for row := range t.SBoxes[b] {
			for col, v := range t.SBoxes[b][row] {
				if v > 15 {
					return fmt.Errorf("%w: sbox %d cell (%d,%d) = %d does not fit in 4 bits",
						myErrors.ErrMalformedTable, b+1, row, col, v)
				}
			}
		}
	}

	if t.Indexing != IndexLSBFirst && t.Indexing != IndexMSBFirst {
		return fmt.Errorf("%w: unknown sbox indexing %d", myErrors.ErrMalformedTable, t.Indexing)
	}

	return t.checkSchedules()
}

// checkSchedules makes sure the decrypt schedule visits the encrypt schedule's key
// states in reverse order: after round r of decryption the accumulated right rotation
// must land on the state encryption reached after round 15-r.
func (t *Tables) checkSchedules() error {
	var encrypt [Rounds]int
	total := 0
	for r, s := range t.EncryptShifts {
		if s >= HalfBits {
			return fmt.Errorf("%w: key shift %d in round %d", myErrors.ErrMalformedTable, s, r+1)
		}
		total += int(s)
		encrypt[r] = total
	}
	if total%HalfBits != 0 {
		return fmt.Errorf("%w: key shifts sum to %d, not a multiple of %d", myErrors.ErrMalformedTable, total, HalfBits)
	}

	decrypt := 0
	for r, s := range t.DecryptShifts {
		if s >= HalfBits {
			return fmt.Errorf("%w: decrypt key shift %d in round %d", myErrors.ErrMalformedTable, s, r+1)
		}
		decrypt += int(s)
		if (encrypt[Rounds-1-r]+decrypt)%HalfBits != 0 {
			return fmt.Errorf("%w: decrypt key shifts do not mirror the encrypt schedule at round %d",
				myErrors.ErrMalformedTable, r+1)
		}
	}
	return nil
}

func (t *Tables) flatExpansion() [SubkeyBits]Position {
	var out [SubkeyBits]Position
	for i := range out {
		out[i] = t.Expansion[i/6][i%6]
	}
	return out
}

func (t *Tables) flatPBox() [32]Position {
	var out [32]Position
	for i := range out {
		out[i] = t.PBox[i/4][i%4]
	}
	return out
}

func checkRange(name string, table []Position, width int) error {
	for i, p := range table {
		if p == 0 || int(p) > width {
			return fmt.Errorf("%w: %s entry %d = %d is outside 1..%d", myErrors.ErrMalformedTable, name, i+1, p, width)
		}
	}
	return nil
}

func checkDistinct(name string, table []Position, width int) error {
	seen := make([]bool, width+1)
	for i, p := range table {
		if seen[p] {
			return fmt.Errorf("%w: %s entry %d repeats position %d", myErrors.ErrMalformedTable, name, i+1, p)
		}
		seen[p] = true
	}
	return nil
}

func checkPermutation(name string, table []Position, width int) error {
	if len(table) != width {
		return fmt.Errorf("%w: %s has %d entries, want %d", myErrors.ErrMalformedTable, name, len(table), width)
	}
	if err := checkRange(name, table, width); err != nil {
		return err
	}
	return checkDistinct(name, table, width)
}
