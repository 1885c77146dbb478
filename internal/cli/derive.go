package cli

import (
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/tx/amm"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

type derivedOutput struct {
	Pool   string `json:"pool"`
	Bump   uint8  `json:"bump"`
	VaultA string `json:"vault_a"`
	VaultB string `json:"vault_b"`
	LPMint string `json:"lp_mint"`
}

func derive(program, a, b solana.PublicKey) (derivedOutput, error) {
	keys, err := amm.DerivePoolKeys(pda.NewProgramDeriver(program), a, b)
	if err != nil {
		return derivedOutput{}, err
	}
	return derivedOutput{
		Pool:   keys.Pool.String(),
		Bump:   keys.Bump,
		VaultA: keys.VaultA.String(),
		VaultB: keys.VaultB.String(),
		LPMint: keys.LPMint.String(),
	}, nil
}

func printDerived(cmd *cobra.Command, program, a, b solana.PublicKey) error {
	out, err := derive(program, a, b)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}
