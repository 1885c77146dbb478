package tx

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrInvalidInstruction is returned when instruction data cannot be decoded.
var ErrInvalidInstruction = errors.New("invalid instruction data")

// maxPathLen bounds the decoded path so a corrupt length cannot force a huge allocation.
const maxPathLen = 64

// DecodeInstruction decodes borsh instruction data: a u8 variant index
// followed by the variant fields, integers little-endian. A path is a u32
// length followed by 32-byte keys. Trailing bytes are rejected.
func DecodeInstruction(data []byte) (Operation, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidInstruction)
	}

	dec := bin.NewBorshDecoder(data)
	variant, err := dec.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}

	var op Operation
	switch OpType(variant) {
	case OpInitPool:
		var o InitPool
		if o.AmountA, o.AmountB, err = readPair(dec); err == nil {
			op = o
		}
	case OpAddLiquidity:
		var o AddLiquidity
		if o.AmountA, o.AmountB, err = readPair(dec); err == nil {
			op = o
		}
	case OpRemoveLiquidity:
		var o RemoveLiquidity
		if o.LPAmount, err = dec.ReadUint64(bin.LE); err == nil {
			op = o
		}
	case OpSwap:
		var o Swap
		if o.AmountIn, err = dec.ReadUint64(bin.LE); err == nil {
			if o.AToB, err = dec.ReadBool(); err == nil {
				op = o
			}
		}
	case OpMultihopSwap:
		var o MultihopSwap
		if o.AmountIn, o.MinimumAmountOut, err = readPair(dec); err == nil {
			op = o
		}
	case OpMultihopSwapWithPath:
		var o MultihopSwapWithPath
		if o.AmountIn, o.MinimumAmountOut, err = readPair(dec); err == nil {
			if o.Path, err = readPath(dec); err == nil {
				op = o
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown variant %d", ErrInvalidInstruction, variant)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInstruction, OpType(variant), err)
	}
	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidInstruction, dec.Remaining())
	}
	return op, nil
}

func readPair(dec *bin.Decoder) (uint64, uint64, error) {
	a, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return 0, 0, err
	}
	b, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func readPath(dec *bin.Decoder) ([]solana.PublicKey, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	if n > maxPathLen {
		return nil, fmt.Errorf("path length %d exceeds %d", n, maxPathLen)
	}
	path := make([]solana.PublicKey, n)
	for i := range path {
		raw, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, err
		}
		copy(path[i][:], raw)
	}
	return path, nil
}

// EncodeInstruction is the inverse of DecodeInstruction.
func EncodeInstruction(op Operation) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)

	if err := enc.WriteUint8(uint8(op.Type())); err != nil {
		return nil, err
	}

	var err error
	switch o := op.(type) {
	case InitPool:
		err = writePair(enc, o.AmountA, o.AmountB)
	case AddLiquidity:
		err = writePair(enc, o.AmountA, o.AmountB)
	case RemoveLiquidity:
		err = enc.WriteUint64(o.LPAmount, bin.LE)
	case Swap:
		if err = enc.WriteUint64(o.AmountIn, bin.LE); err == nil {
			err = enc.WriteBool(o.AToB)
		}
	case MultihopSwap:
		err = writePair(enc, o.AmountIn, o.MinimumAmountOut)
	case MultihopSwapWithPath:
		if err = writePair(enc, o.AmountIn, o.MinimumAmountOut); err != nil {
			break
		}
		if err = enc.WriteUint32(uint32(len(o.Path)), bin.LE); err != nil {
			break
		}
		for _, key := range o.Path {
			if err = enc.WriteBytes(key[:], false); err != nil {
				break
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported operation %T", ErrInvalidInstruction, op)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePair(enc *bin.Encoder, a, b uint64) error {
	if err := enc.WriteUint64(a, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint64(b, bin.LE)
}
