package tx

// Processor implements the AMM operations. Each method runs inside an
// ApplyStateTable, so a non-success result discards every write it made.
type Processor interface {
	InitPool(ctx *ApplyContext, op InitPool) Result
	AddLiquidity(ctx *ApplyContext, op AddLiquidity) Result
	RemoveLiquidity(ctx *ApplyContext, op RemoveLiquidity) Result
	Swap(ctx *ApplyContext, op Swap) Result
	MultihopSwap(ctx *ApplyContext, op MultihopSwap) Result
	MultihopSwapWithPath(ctx *ApplyContext, op MultihopSwapWithPath) Result
}

// Dispatch routes op to the matching Processor method.
func Dispatch(ctx *ApplyContext, op Operation, p Processor) Result {
	switch o := op.(type) {
	case InitPool:
		return p.InitPool(ctx, o)
	case AddLiquidity:
		return p.AddLiquidity(ctx, o)
	case RemoveLiquidity:
		return p.RemoveLiquidity(ctx, o)
	case Swap:
		return p.Swap(ctx, o)
	case MultihopSwap:
		return p.MultihopSwap(ctx, o)
	case MultihopSwapWithPath:
		return p.MultihopSwapWithPath(ctx, o)
	default:
		return TemINVALID_INSTRUCTION
	}
}
