package relationaldb

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"
)

// InvocationID is the 32-byte id the engine assigns an invocation
type InvocationID [32]byte

// String returns the hex encoding of the id
func (id InvocationID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText encodes the id as hex
func (id InvocationID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// ParseInvocationID decodes a 64-character hex id
func ParseInvocationID(s string) (InvocationID, error) {
	var id InvocationID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("invocation id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ReceiptInfo is one row of invocation history
type ReceiptInfo struct {
	ID        InvocationID `json:"id"`
	Sequence  uint64       `json:"sequence"`
	Operation string       `json:"operation"`
	Result    string       `json:"result"`
	Code      int32        `json:"code"`
	Affected  int          `json:"affected"`
	CreatedAt time.Time    `json:"created_at"`
}

// ReceiptRepository stores and queries invocation receipts
type ReceiptRepository interface {
	// SaveReceipt inserts a receipt, replacing one with the same id
	SaveReceipt(ctx context.Context, r *ReceiptInfo) error

	// GetReceipt returns ErrReceiptNotFound when the id is unknown
	GetReceipt(ctx context.Context, id InvocationID) (*ReceiptInfo, error)

	// ListReceipts returns receipts newest first
	ListReceipts(ctx context.Context, offset, limit int) ([]ReceiptInfo, error)

	GetReceiptCount(ctx context.Context) (int64, error)

	// GetMaxSequence returns nil on an empty table
	GetMaxSequence(ctx context.Context) (*uint64, error)

	DeleteReceiptsBeforeSequence(ctx context.Context, seq uint64) error
}

// Database is a relational backend with a receipt repository
type Database interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Ping(ctx context.Context) error
	Receipts() ReceiptRepository
}

// MaxListLimit bounds ListReceipts
const MaxListLimit = 1000

// CheckPage validates list paging arguments
func CheckPage(offset, limit int) error {
	if offset < 0 {
		return ErrInvalidOffset
	}
	if limit <= 0 || limit > MaxListLimit {
		return ErrInvalidLimit
	}
	return nil
}
