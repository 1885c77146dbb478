package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var applyFile string

type applyOutput struct {
	ID       string `json:"id"`
	Sequence uint64 `json:"sequence"`
	Result   string `json:"result"`
	Applied  bool   `json:"applied"`
	Message  string `json:"message,omitempty"`
	Affected int    `json:"affected"`
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply invocations to the ledger",
	Long: `Apply one invocation, or an array of invocations in order, read from a JSON
file (or stdin with --file -). Each invocation is
  {"signers": [...], "accounts": [...], "op": {"type": "Swap", "amount_in": 100, "a_to_b": true}}
or carries base64 instruction bytes in "data" instead of "op".`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "-", "invocation JSON file, - for stdin")
	rootCmd.AddCommand(applyCmd)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func runApply(cmd *cobra.Command, args []string) error {
	data, err := readInput(applyFile)
	if err != nil {
		return err
	}
	invs, err := parseInvocations(data)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withNode(ctx, func(n *node) error {
		out := make([]applyOutput, 0, len(invs))
		failed := 0
		for _, inv := range invs {
			res := n.engine.Apply(ctx, inv)
			o := applyOutput{
				ID:       hex.EncodeToString(res.ID[:]),
				Sequence: res.Sequence,
				Result:   res.Result.String(),
				Applied:  res.Applied,
				Message:  res.Message,
			}
			if res.Metadata != nil {
				o.Affected = len(res.Metadata.AffectedNodes)
			}
			if !res.Applied {
				failed++
			}
			out = append(out, o)
		}
		logger.Info("applied invocations", zap.Int("count", len(invs)), zap.Int("failed", failed))
		if err := printJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d invocations failed", failed, len(invs))
		}
		return nil
	})
}
