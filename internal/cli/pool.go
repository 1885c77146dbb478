package cli

import (
	"github.com/LeJamon/goswap/internal/core/tx/amm"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var (
	poolAsset  string
	poolAssetA string
	poolAssetB string
)

type poolOutput struct {
	Address       string `json:"address"`
	AssetA        string `json:"asset_a"`
	AssetB        string `json:"asset_b"`
	Bump          uint8  `json:"bump"`
	ReserveA      uint64 `json:"reserve_a"`
	ReserveB      uint64 `json:"reserve_b"`
	TotalLPSupply uint64 `json:"total_lp_supply"`
}

func newPoolOutput(addr solana.PublicKey, p sle.Pool) poolOutput {
	return poolOutput{
		Address:       addr.String(),
		AssetA:        p.AssetA.String(),
		AssetB:        p.AssetB.String(),
		Bump:          p.Bump,
		ReserveA:      p.ReserveA,
		ReserveB:      p.ReserveB,
		TotalLPSupply: p.TotalLPSupply,
	}
}

func poolOutputs(entries []amm.PoolEntry) []poolOutput {
	out := make([]poolOutput, len(entries))
	for i, e := range entries {
		out[i] = newPoolOutput(e.Address, e.Pool)
	}
	return out
}

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Inspect pools",
}

var poolInfoCmd = &cobra.Command{
	Use:   "info ADDRESS",
	Short: "Show one pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			p, err := amm.GetPool(n.store, addr)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), newPoolOutput(addr, p))
		})
	},
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(cmd.Context(), func(n *node) error {
			pools, err := amm.ListPools(n.store)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), poolOutputs(pools))
		})
	},
}

var poolFindCmd = &cobra.Command{
	Use:   "find",
	Short: "List the pools trading an asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		asset, err := solana.PublicKeyFromBase58(poolAsset)
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			pools, err := amm.FindPoolsByAsset(n.store, asset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), poolOutputs(pools))
		})
	},
}

// derive needs no state, only the program id
var poolDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive the pool, vault and share mint addresses for an ordered pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := solana.PublicKeyFromBase58(poolAssetA)
		if err != nil {
			return err
		}
		b, err := solana.PublicKeyFromBase58(poolAssetB)
		if err != nil {
			return err
		}
		program, err := cfg.Program()
		if err != nil {
			return err
		}
		return printDerived(cmd, program, a, b)
	},
}

func init() {
	poolFindCmd.Flags().StringVar(&poolAsset, "asset", "", "asset mint")
	_ = poolFindCmd.MarkFlagRequired("asset")

	poolDeriveCmd.Flags().StringVar(&poolAssetA, "a", "", "asset a mint")
	poolDeriveCmd.Flags().StringVar(&poolAssetB, "b", "", "asset b mint")
	_ = poolDeriveCmd.MarkFlagRequired("a")
	_ = poolDeriveCmd.MarkFlagRequired("b")

	poolCmd.AddCommand(poolInfoCmd, poolListCmd, poolFindCmd, poolDeriveCmd)
	rootCmd.AddCommand(poolCmd)
}
