// Package persistence serializes trained map snapshots in a compact binary
// format: a fixed little-endian header carrying the lattice geometry,
// followed by the raw node weight rows in x*height+y order, optionally
// compressed. Loading restores height, width and the periodic flag from the
// header, superseding whatever the caller configured.
package persistence

import "errors"

const (
	// MagicNumber identifies map snapshot files (ASCII: "SOM1").
	MagicNumber = 0x534F4D31
	// Version is the current file format version.
	Version = 0x00010000
)

var (
	ErrInvalidMagic     = errors.New("invalid magic number")
	ErrInvalidVersion   = errors.New("unsupported version")
	ErrChecksumMismatch = errors.New("weight payload checksum mismatch")
	ErrInvalidGeometry  = errors.New("invalid snapshot geometry")
)

// CompressionType selects the weight payload compression.
type CompressionType uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 stream compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD stream compression (better ratio).
	CompressionZSTD CompressionType = 2
)

// FileHeader is the 48-byte header at the start of every snapshot file.
type FileHeader struct {
	Magic       uint32
	Version     uint32
	Height      uint32
	Width       uint32
	Periodic    uint8
	Compression uint8
	Padding     [2]byte
	Dimension   uint32
	NodeCount   uint64
	Checksum    uint32 // CRC32 (IEEE) of the uncompressed weight payload
	Reserved    [12]byte
}

// Snapshot is the serializable state of a trained map: the lattice geometry
// plus every node's weight vector, flattened in x*height+y order.
type Snapshot struct {
	Height   int
	Width    int
	Periodic bool
	Dim      int

	// Weights holds Height*Width rows of Dim values.
	Weights []float64
}
