// Package snapshot exports ledger state to a compact file and imports it
// back. The payload is a msgpack record list, LZ4 block compressed when that
// makes it smaller, framed by a fixed header and a BLAKE3 checksum of the
// uncompressed payload.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/LeJamon/goswap/internal/core/ledger/entry"
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"
	"github.com/zeebo/blake3"
)

const (
	// Version is the payload format written by Export
	Version = 1

	headerSize   = 16
	checksumSize = 32

	flagLZ4 = 1 << 0

	// maxPayload bounds the uncompressed size Import accepts
	maxPayload = 1 << 30
)

var magic = [4]byte{'S', 'W', 'P', 'S'}

var (
	ErrBadMagic    = errors.New("snapshot: bad magic")
	ErrBadVersion  = errors.New("snapshot: unsupported version")
	ErrChecksum    = errors.New("snapshot: checksum mismatch")
	ErrCorrupt     = errors.New("snapshot: corrupt payload")
	ErrInvalidData = errors.New("snapshot: invalid record")
)

// Record is one ledger entry.
type Record struct {
	Type  uint16 `codec:"t"`
	Key   []byte `codec:"k"`
	Value []byte `codec:"v"`
}

// Snapshot is the decoded payload.
type Snapshot struct {
	Version   uint8    `codec:"version"`
	CreatedAt int64    `codec:"created_at"`
	Records   []Record `codec:"records"`
}

// Stats summarizes an export or import.
type Stats struct {
	Records     int
	ByType      map[entry.Type]int
	RawSize     int
	EncodedSize int
	Compressed  bool
	CreatedAt   time.Time
}

func newStats() Stats {
	return Stats{ByType: make(map[entry.Type]int)}
}

func handle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true // byte slices as msgpack bin
	return h
}

// Collect reads every entry of view in type then key order.
func Collect(view tx.LedgerView) ([]Record, error) {
	var records []Record
	for _, t := range entry.Types() {
		err := view.ForEach(t, func(k keylet.Keylet, data []byte) bool {
			records = append(records, Record{
				Type:  uint16(k.Type),
				Key:   append([]byte(nil), k.Key[:]...),
				Value: append([]byte(nil), data...),
			})
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("snapshot: scan %s: %w", t, err)
		}
	}
	return records, nil
}

// Export writes every entry of view to w.
func Export(w io.Writer, view tx.LedgerView, now time.Time) (Stats, error) {
	records, err := Collect(view)
	if err != nil {
		return Stats{}, err
	}
	return Write(w, Snapshot{Version: Version, CreatedAt: now.UTC().UnixNano(), Records: records})
}

// Write encodes s to w.
func Write(w io.Writer, s Snapshot) (Stats, error) {
	var payload []byte
	if err := codec.NewEncoderBytes(&payload, handle()).Encode(s); err != nil {
		return Stats{}, fmt.Errorf("snapshot: encode: %w", err)
	}

	body, flags, err := compress(payload)
	if err != nil {
		return Stats{}, err
	}

	var header [headerSize]byte
	copy(header[:4], magic[:])
	header[4] = s.Version
	header[5] = flags
	binary.LittleEndian.PutUint64(header[8:], uint64(len(payload)))
	sum := blake3.Sum256(payload)

	for _, part := range [][]byte{header[:], body, sum[:]} {
		if _, err := w.Write(part); err != nil {
			return Stats{}, fmt.Errorf("snapshot: write: %w", err)
		}
	}

	st := newStats()
	st.Records = len(s.Records)
	for _, r := range s.Records {
		st.ByType[entry.Type(r.Type)]++
	}
	st.RawSize = len(payload)
	st.EncodedSize = headerSize + len(body) + checksumSize
	st.Compressed = flags&flagLZ4 != 0
	st.CreatedAt = time.Unix(0, s.CreatedAt).UTC()
	return st, nil
}

// compress returns the LZ4 block of payload, or payload itself when
// compression does not shrink it.
func compress(payload []byte) ([]byte, byte, error) {
	if len(payload) == 0 {
		return payload, 0, nil
	}
	buf := make([]byte, lz4.CompressBlockBound(len(payload)))
	n, err := lz4.CompressBlock(payload, buf, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("snapshot: lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(payload) {
		return payload, 0, nil
	}
	return buf[:n], flagLZ4, nil
}

// Read decodes a snapshot from r and verifies its checksum.
func Read(r io.Reader) (Snapshot, Stats, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, Stats{}, fmt.Errorf("snapshot: read: %w", err)
	}
	if len(raw) < headerSize+checksumSize {
		return Snapshot{}, Stats{}, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(raw))
	}
	if !bytes.Equal(raw[:4], magic[:]) {
		return Snapshot{}, Stats{}, ErrBadMagic
	}
	if raw[4] != Version {
		return Snapshot{}, Stats{}, fmt.Errorf("%w: %d", ErrBadVersion, raw[4])
	}
	flags := raw[5]
	size := binary.LittleEndian.Uint64(raw[8:headerSize])
	if size > maxPayload {
		return Snapshot{}, Stats{}, fmt.Errorf("%w: payload of %d bytes", ErrCorrupt, size)
	}
	body := raw[headerSize : len(raw)-checksumSize]

	payload := body
	if flags&flagLZ4 != 0 {
		payload = make([]byte, size)
		n, err := lz4.UncompressBlock(body, payload)
		if err != nil {
			return Snapshot{}, Stats{}, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		payload = payload[:n]
	}
	if uint64(len(payload)) != size {
		return Snapshot{}, Stats{}, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(payload), size)
	}
	sum := blake3.Sum256(payload)
	if !bytes.Equal(sum[:], raw[len(raw)-checksumSize:]) {
		return Snapshot{}, Stats{}, ErrChecksum
	}

	var s Snapshot
	if err := codec.NewDecoderBytes(payload, handle()).Decode(&s); err != nil {
		return Snapshot{}, Stats{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	st := newStats()
	st.Records = len(s.Records)
	for _, rec := range s.Records {
		st.ByType[entry.Type(rec.Type)]++
	}
	st.RawSize = len(payload)
	st.EncodedSize = len(raw)
	st.Compressed = flags&flagLZ4 != 0
	st.CreatedAt = time.Unix(0, s.CreatedAt).UTC()
	return s, st, nil
}

// Import reads a snapshot from r and commits every record to dst in one
// batch. Each record must parse as its entry type.
func Import(r io.Reader, dst tx.BatchApplier) (Stats, error) {
	s, st, err := Read(r)
	if err != nil {
		return Stats{}, err
	}
	changes := make([]tx.StateChange, 0, len(s.Records))
	for i, rec := range s.Records {
		k, err := rec.keylet()
		if err != nil {
			return Stats{}, fmt.Errorf("record %d: %w", i, err)
		}
		if err := checkRecord(k.Type, rec.Value); err != nil {
			return Stats{}, fmt.Errorf("record %d (%s): %w", i, k, err)
		}
		changes = append(changes, tx.StateChange{Key: k, Data: rec.Value})
	}
	if err := dst.ApplyBatch(changes); err != nil {
		return Stats{}, fmt.Errorf("snapshot: commit: %w", err)
	}
	return st, nil
}

func (r Record) keylet() (keylet.Keylet, error) {
	if len(r.Key) != 32 {
		return keylet.Keylet{}, fmt.Errorf("%w: key of %d bytes", ErrInvalidData, len(r.Key))
	}
	k := keylet.Keylet{Type: entry.Type(r.Type)}
	copy(k.Key[:], r.Key)
	return k, nil
}

func checkRecord(t entry.Type, data []byte) error {
	var err error
	switch t {
	case entry.TypeHolding:
		_, err = sle.ParseHolding(data)
	case entry.TypeMint:
		_, err = sle.ParseMint(data)
	case entry.TypePool:
		var p sle.Pool
		if p, err = sle.ParsePool(data); err == nil {
			err = p.Validate()
		}
	default:
		return fmt.Errorf("%w: unknown type %s", ErrInvalidData, t)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}
