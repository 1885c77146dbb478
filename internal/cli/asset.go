package cli

import (
	"github.com/LeJamon/goswap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	assetMint      string
	assetAuthority string
	assetDecimals  uint8
	assetHolding   string
	assetOwner     string
	assetAmount    uint64
)

// Asset setup happens on the host side, outside any invocation.
var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Create assets and fund holdings",
}

var assetCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Define a new asset mint",
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, err := solana.PublicKeyFromBase58(assetMint)
		if err != nil {
			return err
		}
		authority, err := solana.PublicKeyFromBase58(assetAuthority)
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			if err := token.CreateMint(n.store, mint, authority, assetDecimals); err != nil {
				return err
			}
			logger.Info("created asset", zap.String("mint", mint.String()))
			return nil
		})
	},
}

var assetFundCmd = &cobra.Command{
	Use:   "fund",
	Short: "Issue an amount of an asset into a holding, creating it if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, err := solana.PublicKeyFromBase58(assetMint)
		if err != nil {
			return err
		}
		holding, err := solana.PublicKeyFromBase58(assetHolding)
		if err != nil {
			return err
		}
		owner, err := solana.PublicKeyFromBase58(assetOwner)
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			m, err := token.GetMint(n.store, mint)
			if err != nil {
				return err
			}
			exists, err := token.HoldingExists(n.store, holding)
			if err != nil {
				return err
			}
			if !exists {
				if err := token.CreateHolding(n.store, holding, mint, owner); err != nil {
					return err
				}
			}
			if assetAmount > 0 {
				if err := token.Issue(n.store, mint, holding, assetAmount, m.Authority); err != nil {
					return err
				}
			}
			balance, err := token.Balance(n.store, holding)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"holding": holding.String(),
				"balance": balance,
			})
		})
	},
}

func init() {
	assetCreateCmd.Flags().StringVar(&assetMint, "mint", "", "mint address")
	assetCreateCmd.Flags().StringVar(&assetAuthority, "authority", "", "mint authority")
	assetCreateCmd.Flags().Uint8Var(&assetDecimals, "decimals", 6, "display decimals")
	_ = assetCreateCmd.MarkFlagRequired("mint")
	_ = assetCreateCmd.MarkFlagRequired("authority")

	assetFundCmd.Flags().StringVar(&assetMint, "mint", "", "mint address")
	assetFundCmd.Flags().StringVar(&assetHolding, "holding", "", "holding address")
	assetFundCmd.Flags().StringVar(&assetOwner, "owner", "", "owner of a newly created holding")
	assetFundCmd.Flags().Uint64Var(&assetAmount, "amount", 0, "amount to issue")
	_ = assetFundCmd.MarkFlagRequired("mint")
	_ = assetFundCmd.MarkFlagRequired("holding")
	_ = assetFundCmd.MarkFlagRequired("owner")

	assetCmd.AddCommand(assetCreateCmd, assetFundCmd)
	rootCmd.AddCommand(assetCmd)
}
