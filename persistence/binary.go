package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Write serializes the snapshot to w with the given payload compression.
func Write(w io.Writer, s *Snapshot, compression CompressionType) error {
	if s.Height <= 0 || s.Width <= 0 || s.Dim <= 0 {
		return fmt.Errorf("%w: %dx%d dim %d", ErrInvalidGeometry, s.Width, s.Height, s.Dim)
	}
	if len(s.Weights) != s.Height*s.Width*s.Dim {
		return fmt.Errorf("%w: %d weight values, want %d", ErrInvalidGeometry, len(s.Weights), s.Height*s.Width*s.Dim)
	}

	payload := make([]byte, len(s.Weights)*8)
	for i, v := range s.Weights {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(v))
	}

	header := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Height:      uint32(s.Height),
		Width:       uint32(s.Width),
		Compression: uint8(compression),
		Dimension:   uint32(s.Dim),
		NodeCount:   uint64(s.Height * s.Width),
		Checksum:    crc32.ChecksumIEEE(payload),
	}
	if s.Periodic {
		header.Periodic = 1
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}

	switch compression {
	case CompressionNone:
		_, err := w.Write(payload)
		return err
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		if _, err := lw.Write(payload); err != nil {
			return err
		}
		return lw.Close()
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		if _, err := zw.Write(payload); err != nil {
			return err
		}
		return zw.Close()
	default:
		return fmt.Errorf("unknown compression type: %d", compression)
	}
}

// Read deserializes a snapshot, validating magic, version and payload
// checksum.
func Read(r io.Reader) (*Snapshot, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	if header.Height == 0 || header.Width == 0 || header.Dimension == 0 {
		return nil, fmt.Errorf("%w: %dx%d dim %d", ErrInvalidGeometry, header.Width, header.Height, header.Dimension)
	}
	if header.NodeCount != uint64(header.Height)*uint64(header.Width) {
		return nil, fmt.Errorf("%w: node count %d for %dx%d grid", ErrInvalidGeometry, header.NodeCount, header.Width, header.Height)
	}
	// Bound the payload size in uint64 arithmetic; a crafted header must
	// not wrap the allocation below.
	if header.NodeCount > (math.MaxInt/8)/uint64(header.Dimension) {
		return nil, fmt.Errorf("%w: payload of %d nodes x %d dims exceeds addressable size", ErrInvalidGeometry, header.NodeCount, header.Dimension)
	}

	var payloadReader io.Reader
	switch CompressionType(header.Compression) {
	case CompressionNone:
		payloadReader = r
	case CompressionLZ4:
		payloadReader = lz4.NewReader(r)
	case CompressionZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		payloadReader = zr
	default:
		return nil, fmt.Errorf("unknown compression type: %d", header.Compression)
	}

	payload := make([]byte, int(header.NodeCount)*int(header.Dimension)*8)
	if _, err := io.ReadFull(payloadReader, payload); err != nil {
		return nil, fmt.Errorf("read weight payload: %w", err)
	}
	if sum := crc32.ChecksumIEEE(payload); sum != header.Checksum {
		return nil, fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrChecksumMismatch, sum, header.Checksum)
	}

	weights := make([]float64, len(payload)/8)
	for i := range weights {
		weights[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}

	return &Snapshot{
		Height:   int(header.Height),
		Width:    int(header.Width),
		Periodic: header.Periodic != 0,
		Dim:      int(header.Dimension),
		Weights:  weights,
	}, nil
}

// Encode serializes the snapshot to a byte slice, the unit handed to blob
// stores.
func Encode(s *Snapshot, compression CompressionType) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s, compression); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes a snapshot from a byte slice.
func Decode(data []byte) (*Snapshot, error) {
	return Read(bytes.NewReader(data))
}

// WriteFile writes the snapshot to path. IO faults carry the offending path.
func WriteFile(path string, s *Snapshot, compression CompressionType) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	if err := Write(bw, s, compression); err != nil {
		_ = f.Close()
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a snapshot from path. IO faults carry the offending path.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	defer f.Close()

	s, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return s, nil
}
