package persistence

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Height:   2,
		Width:    3,
		Periodic: true,
		Dim:      2,
		Weights: []float64{
			0.5, -1.5,
			2.25, 3,
			-4, 5.125,
			6, 7,
			8, 9,
			10.75, -11,
		},
	}
}

func TestRoundTrip(t *testing.T) {
	compressions := map[string]CompressionType{
		"None": CompressionNone,
		"LZ4":  CompressionLZ4,
		"ZSTD": CompressionZSTD,
	}

	for name, compression := range compressions {
		t.Run(name, func(t *testing.T) {
			want := testSnapshot()

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, want, compression))

			got, err := Read(&buf)
			require.NoError(t, err)

			assert.Equal(t, want.Height, got.Height)
			assert.Equal(t, want.Width, got.Width)
			assert.Equal(t, want.Periodic, got.Periodic)
			assert.Equal(t, want.Dim, got.Dim)
			assert.Equal(t, want.Weights, got.Weights, "weights survive bit-for-bit")
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	want := testSnapshot()

	data, err := Encode(want, CompressionZSTD)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, want.Weights, got.Weights)
}

func TestWriteValidatesGeometry(t *testing.T) {
	s := testSnapshot()
	s.Weights = s.Weights[:4]

	var buf bytes.Buffer
	require.ErrorIs(t, Write(&buf, s, CompressionNone), ErrInvalidGeometry)

	s = testSnapshot()
	s.Height = 0
	require.ErrorIs(t, Write(&buf, s, CompressionNone), ErrInvalidGeometry)
}

func TestReadRejectsCorruptFiles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testSnapshot(), CompressionNone))
	raw := buf.Bytes()

	t.Run("BadMagic", func(t *testing.T) {
		corrupt := append([]byte(nil), raw...)
		binary.LittleEndian.PutUint32(corrupt[0:], 0xDEADBEEF)
		_, err := Read(bytes.NewReader(corrupt))
		require.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("BadVersion", func(t *testing.T) {
		corrupt := append([]byte(nil), raw...)
		binary.LittleEndian.PutUint32(corrupt[4:], 0x00990000)
		_, err := Read(bytes.NewReader(corrupt))
		require.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("FlippedPayloadBit", func(t *testing.T) {
		corrupt := append([]byte(nil), raw...)
		corrupt[len(corrupt)-1] ^= 0x01
		_, err := Read(bytes.NewReader(corrupt))
		require.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Read(bytes.NewReader(raw[:len(raw)-8]))
		require.Error(t, err)
	})

	t.Run("OversizedGeometry", func(t *testing.T) {
		// A consistent but absurd grid must fail the size bound, not
		// wrap the payload allocation.
		header := FileHeader{
			Magic:     MagicNumber,
			Version:   Version,
			Height:    0xFFFFFFFF,
			Width:     0xFFFFFFFF,
			Dimension: 1,
			NodeCount: uint64(0xFFFFFFFF) * uint64(0xFFFFFFFF),
		}
		var buf bytes.Buffer
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, &header))
		_, err := Read(&buf)
		require.ErrorIs(t, err, ErrInvalidGeometry)
	})
}

func TestFileRoundTripAndIOFaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.som")

	want := testSnapshot()
	require.NoError(t, WriteFile(path, want, CompressionLZ4))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.Weights, got.Weights)

	t.Run("MissingFile", func(t *testing.T) {
		missing := filepath.Join(dir, "nope.som")
		_, err := ReadFile(missing)
		require.Error(t, err)
		assert.Contains(t, err.Error(), missing, "error names the offending path")
	})
}
