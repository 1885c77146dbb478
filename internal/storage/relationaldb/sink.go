package relationaldb

import (
	"context"

	"github.com/LeJamon/goswap/internal/core/tx"
)

// ReceiptSink records engine receipts into a ReceiptRepository
type ReceiptSink struct {
	repo ReceiptRepository
}

var _ tx.ReceiptSink = (*ReceiptSink)(nil)

// NewReceiptSink creates a sink writing to repo
func NewReceiptSink(repo ReceiptRepository) *ReceiptSink {
	return &ReceiptSink{repo: repo}
}

// RecordReceipt implements tx.ReceiptSink
func (s *ReceiptSink) RecordReceipt(ctx context.Context, r tx.Receipt) error {
	return s.repo.SaveReceipt(ctx, ReceiptFromTx(r))
}

// ReceiptFromTx converts an engine receipt to a row
func ReceiptFromTx(r tx.Receipt) *ReceiptInfo {
	return &ReceiptInfo{
		ID:        InvocationID(r.ID),
		Sequence:  r.Sequence,
		Operation: r.Operation,
		Result:    r.Result.String(),
		Code:      int32(r.Result),
		Affected:  r.Affected,
		CreatedAt: r.CreatedAt,
	}
}
