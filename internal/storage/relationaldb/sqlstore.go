package relationaldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Executor allows using both sql.DB and sql.Tx
type Executor interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Dialect holds what differs between SQL backends
type Dialect struct {
	Name string

	// Upsert is the INSERT statement for a receipt, with placeholders for
	// id, seq, operation, result, code, affected and created_at.
	Upsert string

	// Bind rewrites '?' placeholders for the driver
	Bind func(query string) string
}

// DollarBind rewrites '?' placeholders to $1, $2, ...
func DollarBind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// QuestionBind leaves '?' placeholders unchanged
func QuestionBind(query string) string { return query }

// SQLReceiptRepository implements ReceiptRepository over database/sql
type SQLReceiptRepository struct {
	exec    Executor
	dialect Dialect
}

// NewSQLReceiptRepository creates a receipt repository on exec
func NewSQLReceiptRepository(exec Executor, dialect Dialect) *SQLReceiptRepository {
	return &SQLReceiptRepository{exec: exec, dialect: dialect}
}

func (r *SQLReceiptRepository) q(query string) string {
	return r.dialect.Bind(query)
}

func (r *SQLReceiptRepository) SaveReceipt(ctx context.Context, info *ReceiptInfo) error {
	_, err := r.exec.ExecContext(ctx, r.q(r.dialect.Upsert),
		info.ID[:], int64(info.Sequence), info.Operation, info.Result, info.Code,
		info.Affected, info.CreatedAt.UTC().UnixNano())
	if err != nil {
		return NewQueryError("save_receipt", "failed to save receipt", err)
	}
	return nil
}

const receiptColumns = `id, seq, operation, result, code, affected, created_at`

func scanReceipt(scan func(dest ...interface{}) error) (ReceiptInfo, error) {
	var (
		info    ReceiptInfo
		id      []byte
		seq     int64
		created int64
	)
	if err := scan(&id, &seq, &info.Operation, &info.Result, &info.Code, &info.Affected, &created); err != nil {
		return ReceiptInfo{}, err
	}
	if len(id) != len(info.ID) {
		return ReceiptInfo{}, NewDataError("scan_receipt", fmt.Sprintf("receipt id has %d bytes", len(id)), nil)
	}
	copy(info.ID[:], id)
	info.Sequence = uint64(seq)
	info.CreatedAt = time.Unix(0, created).UTC()
	return info, nil
}

func (r *SQLReceiptRepository) GetReceipt(ctx context.Context, id InvocationID) (*ReceiptInfo, error) {
	row := r.exec.QueryRowContext(ctx, r.q(`SELECT `+receiptColumns+` FROM invocations WHERE id = ?`), id[:])
	info, err := scanReceipt(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, NewQueryError("get_receipt", "failed to query receipt", err)
	}
	return &info, nil
}

func (r *SQLReceiptRepository) ListReceipts(ctx context.Context, offset, limit int) ([]ReceiptInfo, error) {
	if err := CheckPage(offset, limit); err != nil {
		return nil, err
	}
	rows, err := r.exec.QueryContext(ctx,
		r.q(`SELECT `+receiptColumns+` FROM invocations ORDER BY seq DESC LIMIT ? OFFSET ?`), limit, offset)
	if err != nil {
		return nil, NewQueryError("list_receipts", "failed to query receipts", err)
	}
	defer rows.Close()

	var results []ReceiptInfo
	for rows.Next() {
		info, err := scanReceipt(rows.Scan)
		if err != nil {
			return nil, NewQueryError("list_receipts", "failed to scan row", err)
		}
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("list_receipts", "error iterating rows", err)
	}
	return results, nil
}

func (r *SQLReceiptRepository) GetReceiptCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM invocations`).Scan(&count); err != nil {
		return 0, NewQueryError("get_receipt_count", "failed to count receipts", err)
	}
	return count, nil
}

func (r *SQLReceiptRepository) GetMaxSequence(ctx context.Context) (*uint64, error) {
	var seq sql.NullInt64
	if err := r.exec.QueryRowContext(ctx, `SELECT MAX(seq) FROM invocations`).Scan(&seq); err != nil {
		return nil, NewQueryError("get_max_sequence", "failed to query max sequence", err)
	}
	if !seq.Valid {
		return nil, nil
	}
	result := uint64(seq.Int64)
	return &result, nil
}

func (r *SQLReceiptRepository) DeleteReceiptsBeforeSequence(ctx context.Context, seq uint64) error {
	if _, err := r.exec.ExecContext(ctx, r.q(`DELETE FROM invocations WHERE seq < ?`), int64(seq)); err != nil {
		return NewQueryError("delete_receipts_before_sequence", "failed to delete receipts", err)
	}
	return nil
}
