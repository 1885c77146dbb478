package tx

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/gagliardetto/solana-go"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// EngineConfig holds configuration for the engine
type EngineConfig struct {
	// StartSequence is the sequence assigned to the first invocation
	StartSequence uint64
}

// Invocation is one request to the program: the instruction data, the
// ordered account list and the accounts that signed it.
type Invocation struct {
	Signers  []solana.PublicKey `json:"signers"`
	Accounts []solana.PublicKey `json:"accounts"`
	Data     []byte             `json:"data"`
}

// NewInvocation encodes op into an Invocation.
func NewInvocation(op Operation, signers, accounts []solana.PublicKey) (Invocation, error) {
	data, err := EncodeInstruction(op)
	if err != nil {
		return Invocation{}, err
	}
	return Invocation{Signers: signers, Accounts: accounts, Data: data}, nil
}

// ApplyResult contains the result of applying an invocation
type ApplyResult struct {
	// ID identifies the invocation
	ID [32]byte

	// Sequence is the engine sequence assigned to the invocation
	Sequence uint64

	// Op is the decoded operation, nil when decoding failed
	Op Operation

	// Result is the result code
	Result Result

	// Applied indicates if the changes were committed
	Applied bool

	// Metadata contains the changes made by the invocation
	Metadata *Metadata

	// Message is a human-readable result message
	Message string
}

// Metadata tracks changes made by an invocation
type Metadata struct {
	// AffectedNodes lists all entries that were created, modified, or deleted
	AffectedNodes []AffectedNode
}

// AffectedNode is a single changed entry.
type AffectedNode struct {
	Action Action
	Key    keylet.Keylet
}

// Receipt is the persisted summary of one invocation.
type Receipt struct {
	ID        [32]byte
	Sequence  uint64
	Operation string
	Result    Result
	Affected  int
	CreatedAt time.Time
}

// ReceiptSink receives a receipt for every invocation, applied or not.
type ReceiptSink interface {
	RecordReceipt(ctx context.Context, r Receipt) error
}

// Engine applies invocations against a LedgerView. Invocations are applied
// one at a time.
type Engine struct {
	mu        sync.Mutex
	view      LedgerView
	deriver   pda.Deriver
	processor Processor
	config    EngineConfig
	seq       uint64
	sink      ReceiptSink
	logger    *zap.Logger
	now       func() time.Time
}

// EngineOption configures optional engine dependencies.
type EngineOption func(*Engine)

// WithReceiptSink records a receipt for every invocation.
func WithReceiptSink(s ReceiptSink) EngineOption {
	return func(e *Engine) { e.sink = s }
}

// WithClock sets the time source for receipt timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a new engine
func NewEngine(view LedgerView, deriver pda.Deriver, processor Processor, config EngineConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		view:      view,
		deriver:   deriver,
		processor: processor,
		config:    config,
		seq:       config.StartSequence,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// View returns the committed state the engine applies to.
func (e *Engine) View() LedgerView {
	return e.view
}

// Deriver returns the address deriver bound to the program.
func (e *Engine) Deriver() pda.Deriver {
	return e.deriver
}

// Sequence returns the sequence the next invocation will receive.
func (e *Engine) Sequence() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

// invocationID is blake3(data || seq), seq little-endian.
func invocationID(data []byte, seq uint64) [32]byte {
	buf := make([]byte, len(data)+8)
	copy(buf, data)
	binary.LittleEndian.PutUint64(buf[len(data):], seq)
	return blake3.Sum256(buf)
}

// Apply decodes and applies an invocation. Changes are committed only when
// the result is tesSUCCESS.
func (e *Engine) Apply(ctx context.Context, inv Invocation) ApplyResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	seq := e.seq
	e.seq++

	res := ApplyResult{
		ID:       invocationID(inv.Data, seq),
		Sequence: seq,
	}
	res.Result, res.Metadata = e.apply(ctx, inv, &res)
	res.Applied = res.Result.IsSuccess()
	res.Message = res.Result.Message()

	log := e.logger.With(
		zap.String("id", shortID(res.ID)),
		zap.Uint64("seq", seq),
		zap.String("op", opName(res.Op)),
		zap.Stringer("result", res.Result),
	)
	if res.Applied {
		log.Debug("invocation applied", zap.Int("affected", len(res.Metadata.AffectedNodes)))
	} else {
		log.Info("invocation failed")
	}

	e.record(ctx, res)
	return res
}

func (e *Engine) apply(ctx context.Context, inv Invocation, res *ApplyResult) (Result, *Metadata) {
	if err := ctx.Err(); err != nil {
		return TefINTERNAL, nil
	}

	op, err := DecodeInstruction(inv.Data)
	if err != nil {
		e.logger.Debug("decode failed", zap.Error(err))
		return TemINVALID_INSTRUCTION, nil
	}
	res.Op = op

	if err := op.Validate(); err != nil {
		return parseValidationError(err), nil
	}

	table := NewApplyStateTable(e.view)
	actx := &ApplyContext{
		View:         table,
		Accounts:     inv.Accounts,
		Signers:      inv.Signers,
		Deriver:      e.deriver,
		Config:       e.config,
		InvocationID: res.ID,
		Logger:       e.logger,
	}

	result := Dispatch(actx, op, e.processor)
	if !result.IsSuccess() {
		table.Discard()
		return result, nil
	}

	metadata, err := table.Apply()
	if err != nil {
		e.logger.Error("commit failed", zap.Error(err))
		return TefINTERNAL, nil
	}
	return TesSUCCESS, metadata
}

func (e *Engine) record(ctx context.Context, res ApplyResult) {
	if e.sink == nil {
		return
	}
	r := Receipt{
		ID:        res.ID,
		Sequence:  res.Sequence,
		Operation: opName(res.Op),
		Result:    res.Result,
		CreatedAt: e.now().UTC(),
	}
	if res.Metadata != nil {
		r.Affected = len(res.Metadata.AffectedNodes)
	}
	if err := e.sink.RecordReceipt(ctx, r); err != nil {
		e.logger.Warn("receipt not recorded", zap.Error(err))
	}
}

func opName(op Operation) string {
	if op == nil {
		return "Unknown"
	}
	return op.Type().String()
}

func shortID(id [32]byte) string {
	return hex.EncodeToString(id[:6])
}
