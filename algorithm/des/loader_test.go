package des

import (
	myErrors "TripleDES/internal/errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// standardFS copies the embedded tables into a MapFS the test can tamper with.
func standardFS(t *testing.T) fstest.MapFS {
	t.Helper()
	sub, err := fs.Sub(standardTables, "tables")
	require.NoError(t, err)

	out := fstest.MapFS{}
	names := []string{
		InitialPermutationFile, FinalPermutationFile, ExpansionFile, PBoxFile,
		KeyContractionFile, KeyShiftsFile, DecryptKeyShiftsFile, SBoxesFile,
	}
	for _, name := range names {
		data, err := fs.ReadFile(sub, name)
		require.NoError(t, err, name)
		out[name] = &fstest.MapFile{Data: data}
	}
	return out
}

func TestStandardTables(t *testing.T) {
	tables, err := StandardTables(IndexMSBFirst)
	require.NoError(t, err)

	assert.Equal(t, Position(58), tables.Initial[0])
	assert.Equal(t, Position(40), tables.Final[0])
	assert.Equal(t, [6]Position{32, 1, 2, 3, 4, 5}, tables.Expansion[0])
	assert.Equal(t, [4]Position{16, 7, 20, 21}, tables.PBox[0])
	assert.Equal(t, Position(14), tables.Contraction[0])
	assert.Equal(t, [Rounds]uint8{1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}, tables.EncryptShifts)
	assert.Equal(t, [Rounds]uint8{0, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}, tables.DecryptShifts)
	assert.Equal(t, Nibble(14), tables.SBoxes[0][0][0])
	assert.Equal(t, Nibble(11), tables.SBoxes[7][3][15])
	assert.Equal(t, IndexMSBFirst, tables.Indexing)
}

func TestLoadTablesFromFS(t *testing.T) {
	want, err := StandardTables(IndexLSBFirst)
	require.NoError(t, err)

	got, err := LoadTables(standardFS(t), IndexLSBFirst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadTablesZeroPaddedCells(t *testing.T) {
	want, err := StandardTables(IndexLSBFirst)
	require.NoError(t, err)

	fsys := standardFS(t)
	for name, file := range fsys {
		fields := strings.Fields(string(file.Data))
		for i, field := range fields {
			fields[i] = "00" + field
		}
		fsys[name] = &fstest.MapFile{Data: []byte(strings.Join(fields, " "))}
	}
	require.Contains(t, string(fsys[SBoxesFile].Data), "008")
	require.Contains(t, string(fsys[SBoxesFile].Data), "010")

	got, err := LoadTables(fsys, IndexLSBFirst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecimalDigits(t *testing.T) {
	tests := []struct {
		field string
		want  string
		ok    bool
	}{
		{"14", "14", true},
		{"08", "8", true},
		{"010", "10", true},
		{"0", "0", true},
		{"000", "0", true},
		{"0x0E", "", false},
		{"1_4", "", false},
		{"+1", "", false},
		{"-1", "", false},
	}

	for _, tt := range tests {
		got, ok := decimalDigits(tt.field)
		assert.Equal(t, tt.ok, ok, tt.field)
		assert.Equal(t, tt.want, got, tt.field)
	}
}

func TestLoadTablesErrors(t *testing.T) {
	tests := []struct {
		name    string
		tamper  func(fstest.MapFS)
		wantErr error
	}{
		{
			name:    "missing sboxes",
			tamper:  func(m fstest.MapFS) { delete(m, SBoxesFile) },
			wantErr: myErrors.ErrTableMissing,
		},
		{
			name:    "missing decrypt schedule",
			tamper:  func(m fstest.MapFS) { delete(m, DecryptKeyShiftsFile) },
			wantErr: myErrors.ErrTableMissing,
		},
		{
			name:    "short pbox",
			tamper:  func(m fstest.MapFS) { m[PBoxFile] = &fstest.MapFile{Data: []byte("16 7 20 21")} },
			wantErr: myErrors.ErrMalformedTable,
		},
		{
			name: "non numeric shift",
			tamper: func(m fstest.MapFS) {
				m[KeyShiftsFile] = &fstest.MapFile{Data: []byte("1 1 2 2 2 2 2 2 1 2 2 2 2 2 2 x")}
			},
			wantErr: myErrors.ErrMalformedTable,
		},
		{
			name: "hex sbox cell",
			tamper: func(m fstest.MapFS) {
				data := strings.Replace(string(m[SBoxesFile].Data), "14", "0x0E", 1)
				m[SBoxesFile] = &fstest.MapFile{Data: []byte(data)}
			},
			wantErr: myErrors.ErrMalformedTable,
		},
		{
			name: "digit separator in position",
			tamper: func(m fstest.MapFS) {
				data := strings.Replace(string(m[KeyContractionFile].Data), "14", "1_4", 1)
				m[KeyContractionFile] = &fstest.MapFile{Data: []byte(data)}
			},
			wantErr: myErrors.ErrMalformedTable,
		},
		{
			name: "position out of range",
			tamper: func(m fstest.MapFS) {
				data := strings.Replace(string(m[ExpansionFile].Data), "32", "33", 1)
				m[ExpansionFile] = &fstest.MapFile{Data: []byte(data)}
			},
			wantErr: myErrors.ErrMalformedTable,
		},
		{
			name: "value above a byte",
			tamper: func(m fstest.MapFS) {
				data := strings.Replace(string(m[KeyContractionFile].Data), "14", "300", 1)
				m[KeyContractionFile] = &fstest.MapFile{Data: []byte(data)}
			},
			wantErr: myErrors.ErrMalformedTable,
		},
		{
			name: "sbox cell wider than a nibble",
			tamper: func(m fstest.MapFS) {
				data := strings.Replace(string(m[SBoxesFile].Data), "14", "16", 1)
				m[SBoxesFile] = &fstest.MapFile{Data: []byte(data)}
			},
			wantErr: myErrors.ErrMalformedTable,
		},
		{
			name: "decrypt schedule equal to encrypt schedule",
			tamper: func(m fstest.MapFS) {
				m[DecryptKeyShiftsFile] = &fstest.MapFile{Data: m[KeyShiftsFile].Data}
			},
			wantErr: myErrors.ErrMalformedTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := standardFS(t)
			tt.tamper(fsys)

			_, err := LoadTables(fsys, IndexLSBFirst)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadTablesNilFS(t *testing.T) {
	_, err := LoadTables(nil, IndexLSBFirst)
	assert.ErrorIs(t, err, myErrors.ErrTablesUnavailable)
}
