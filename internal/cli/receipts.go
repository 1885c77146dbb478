package cli

import (
	"errors"

	"github.com/LeJamon/goswap/internal/storage/relationaldb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	receiptsLimit  int
	receiptsOffset int
	receiptsBefore uint64
)

var errNoReceipts = errors.New("receipts.backend is none")

func receiptRepo(n *node) (relationaldb.ReceiptRepository, error) {
	if n.receipts == nil {
		return nil, errNoReceipts
	}
	return n.receipts.Receipts(), nil
}

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Query invocation history",
}

var receiptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List receipts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withNode(ctx, func(n *node) error {
			repo, err := receiptRepo(n)
			if err != nil {
				return err
			}
			list, err := repo.ListReceipts(ctx, receiptsOffset, receiptsLimit)
			if err != nil {
				return err
			}
			total, err := repo.GetReceiptCount(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"total":    total,
				"receipts": list,
			})
		})
	},
}

var receiptsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one receipt by invocation id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := relationaldb.ParseInvocationID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		return withNode(ctx, func(n *node) error {
			repo, err := receiptRepo(n)
			if err != nil {
				return err
			}
			r, err := repo.GetReceipt(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		})
	},
}

var receiptsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete receipts with a sequence below --before",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withNode(ctx, func(n *node) error {
			repo, err := receiptRepo(n)
			if err != nil {
				return err
			}
			if err := repo.DeleteReceiptsBeforeSequence(ctx, receiptsBefore); err != nil {
				return err
			}
			logger.Info("pruned receipts", zap.Uint64("before", receiptsBefore))
			return nil
		})
	},
}

func init() {
	receiptsListCmd.Flags().IntVar(&receiptsLimit, "limit", 20, "maximum receipts to show")
	receiptsListCmd.Flags().IntVar(&receiptsOffset, "offset", 0, "receipts to skip")

	receiptsPruneCmd.Flags().Uint64Var(&receiptsBefore, "before", 0, "first sequence to keep")
	_ = receiptsPruneCmd.MarkFlagRequired("before")

	receiptsCmd.AddCommand(receiptsListCmd, receiptsGetCmd, receiptsPruneCmd)
	rootCmd.AddCommand(receiptsCmd)
}
