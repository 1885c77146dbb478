package amm

// Account list sizes per operation.
const (
	initPoolAccounts        = 10
	addLiquidityAccounts    = 10
	removeLiquidityAccounts = 10
	swapAccounts            = 8

	// Multihop lists start with [user, user_input] followed by one block per hop:
	// [pool, asset_a, asset_b, vault_a, vault_b, intermediate, output]
	multihopPrefixAccounts = 2
	hopAccounts            = 7
)

// LPDecimals is the precision of every pool share mint.
const LPDecimals = 0
