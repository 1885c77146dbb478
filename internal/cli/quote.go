package cli

import (
	"github.com/LeJamon/goswap/internal/core/tx/amm"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var (
	quotePool    string
	quoteAmount  uint64
	quoteBToA    bool
	quoteFrom    string
	quoteTo      string
	quoteMaxHops int
)

type routeOutput struct {
	Path      []solana.PublicKey `json:"path"`
	Pools     []solana.PublicKey `json:"pools"`
	AmountIn  uint64             `json:"amount_in"`
	AmountOut uint64             `json:"amount_out"`
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price trades without applying them",
}

var quoteSwapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Quote a single-pool swap",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := solana.PublicKeyFromBase58(quotePool)
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			out, err := amm.QuoteSwap(n.store, pool, quoteAmount, !quoteBToA)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"pool":       pool.String(),
				"a_to_b":     !quoteBToA,
				"amount_in":  quoteAmount,
				"amount_out": out,
			})
		})
	},
}

var quoteRouteCmd = &cobra.Command{
	Use:   "route",
	Short: "Find the route with the largest output between two assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := solana.PublicKeyFromBase58(quoteFrom)
		if err != nil {
			return err
		}
		to, err := solana.PublicKeyFromBase58(quoteTo)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		return withNode(ctx, func(n *node) error {
			q, err := amm.BestRoute(ctx, n.store, quoteAmount, from, to, quoteMaxHops)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), routeOutput{
				Path:      q.Route.Path,
				Pools:     q.Route.Pools,
				AmountIn:  q.AmountIn,
				AmountOut: q.AmountOut,
			})
		})
	},
}

func init() {
	quoteSwapCmd.Flags().StringVar(&quotePool, "pool", "", "pool address")
	quoteSwapCmd.Flags().Uint64Var(&quoteAmount, "amount", 0, "input amount")
	quoteSwapCmd.Flags().BoolVar(&quoteBToA, "b-to-a", false, "trade asset b for asset a")
	_ = quoteSwapCmd.MarkFlagRequired("pool")

	quoteRouteCmd.Flags().StringVar(&quoteFrom, "from", "", "input asset")
	quoteRouteCmd.Flags().StringVar(&quoteTo, "to", "", "output asset")
	quoteRouteCmd.Flags().Uint64Var(&quoteAmount, "amount", 0, "input amount")
	quoteRouteCmd.Flags().IntVar(&quoteMaxHops, "max-hops", 3, "maximum pools in a route")
	_ = quoteRouteCmd.MarkFlagRequired("from")
	_ = quoteRouteCmd.MarkFlagRequired("to")

	quoteCmd.AddCommand(quoteSwapCmd, quoteRouteCmd)
	rootCmd.AddCommand(quoteCmd)
}
