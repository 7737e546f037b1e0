package des

import (
	myErrors "TripleDES/internal/errors"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cast"
)

const (
	InitialPermutationFile = "initial_permutation.txt"
	FinalPermutationFile   = "final_permutation.txt"
	ExpansionFile          = "expansion.txt"
	PBoxFile               = "pbox.txt"
	KeyContractionFile     = "key_contraction.txt"
	KeyShiftsFile          = "key_shifts.txt"
	DecryptKeyShiftsFile   = "decrypt_key_shifts.txt"
	SBoxesFile             = "sboxes.txt"
)

//go:embed tables/*.txt
var standardTables embed.FS

// StandardTables returns the FIPS 46-3 tables shipped with the package, read through
// the same loader as external table directories.
func StandardTables(indexing SBoxIndexing) (*Tables, error) {
	sub, err := fs.Sub(standardTables, "tables")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded tables: %w", err)
	}
	return LoadTables(sub, indexing)
}

// LoadTables reads every table file from fsys and validates the result. A missing
// file surfaces as ErrTableMissing, anything unparseable as ErrMalformedTable.
func LoadTables(fsys fs.FS, indexing SBoxIndexing) (*Tables, error) {
	if fsys == nil {
		return nil, myErrors.ErrTablesUnavailable
	}

	t := &Tables{Indexing: indexing}

	if err := loadPositions(fsys, InitialPermutationFile, t.Initial[:]); err != nil {
		return nil, err
	}
	if err := loadPositions(fsys, FinalPermutationFile, t.Final[:]); err != nil {
		return nil, err
	}

	var expansion [SubkeyBits]Position
	if err := loadPositions(fsys, ExpansionFile, expansion[:]); err != nil {
		return nil, err
	}
	for i, p := range expansion {
		t.Expansion[i/6][i%6] = p
	}

	var pbox [32]Position
	if err := loadPositions(fsys, PBoxFile, pbox[:]); err != nil {
		return nil, err
	}
	for i, p := range pbox {
		t.PBox[i/4][i%4] = p
	}

	if err := loadPositions(fsys, KeyContractionFile, t.Contraction[:]); err != nil {
		return nil, err
	}

	if err := loadShifts(fsys, KeyShiftsFile, t.EncryptShifts[:]); err != nil {
		return nil, err
	}
	if err := loadShifts(fsys, DecryptKeyShiftsFile, t.DecryptShifts[:]); err != nil {
		return nil, err
	}

	if err := loadSBoxes(fsys, &t.SBoxes); err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func readValues(fsys fs.FS, name string, want int) ([]uint8, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", myErrors.ErrTableMissing, name)
		}
		return nil, fmt.Errorf("cannot read table %s: %w", name, err)
	}

	fields := strings.Fields(string(data))
	if len(fields) != want {
		return nil, fmt.Errorf("%w: %s has %d values, want %d", myErrors.ErrMalformedTable, name, len(fields), want)
	}

	values := make([]uint8, len(fields))
	for i, field := range fields {
		digits, ok := decimalDigits(field)
		if !ok {
			return nil, fmt.Errorf("%w: %s value %d = %q is not a decimal number", myErrors.ErrMalformedTable, name, i+1, field)
		}
		v, err := cast.ToIntE(digits)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %d: %s", myErrors.ErrMalformedTable, name, i+1, err)
		}
		if v < 0 || v > 0xff {
			return nil, fmt.Errorf("%w: %s value %d = %d is out of range", myErrors.ErrMalformedTable, name, i+1, v)
		}
		values[i] = uint8(v)
	}
	return values, nil
}

// decimalDigits strips leading zeros from a plain decimal cell. cast reads a
// leading zero as an octal prefix, so "010" would otherwise load as 8.
func decimalDigits(field string) (string, bool) {
	for _, r := range field {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if trimmed := strings.TrimLeft(field, "0"); trimmed != "" {
		return trimmed, true
	}
	return "0", true
}

func loadPositions(fsys fs.FS, name string, dst []Position) error {
	values, err := readValues(fsys, name, len(dst))
	if err != nil {
		return err
	}
	for i, v := range values {
		dst[i] = Position(v)
	}
	return nil
}

func loadShifts(fsys fs.FS, name string, dst []uint8) error {
	values, err := readValues(fsys, name, len(dst))
	if err != nil {
		return err
	}
	copy(dst, values)
	return nil
}

// loadSBoxes expects the eight boxes one after another, four rows of sixteen
// decimal cells each.
func loadSBoxes(fsys fs.FS, dst *[SBoxCount]SBox) error {
	values, err := readValues(fsys, SBoxesFile, SBoxCount*4*16)
	if err != nil {
		return err
	}
	for i, v := range values {
		if v > 15 {
			return fmt.Errorf("%w: %s value %d = %d does not fit in 4 bits", myErrors.ErrMalformedTable, SBoxesFile, i+1, v)
		}
		dst[i/64][(i/16)%4][i%16] = Nibble(v)
	}
	return nil
}
