package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var entropyCmd = &cobra.Command{
	Use:   "add-entropy",
	Short: "Mix caller-supplied entropy into the process-wide randomness source",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataHex, _ := cmd.Flags().GetString("data")
		data, err := hex.DecodeString(dataHex)
		if err != nil {
			return handleError(fmt.Errorf("invalid --data hex: %w", err))
		}
		sess, err := newSession()
		if err != nil {
			return handleError(err)
		}
		if err := sess.service.AddRNGEntropy(data); err != nil {
			return handleError(err)
		}
		return printer().PrintSuccess(fmt.Sprintf("mixed %d bytes of entropy", len(data)))
	},
}

func init() {
	entropyCmd.Flags().String("data", "", "hex-encoded entropy to mix in (required)")
	_ = entropyCmd.MarkFlagRequired("data")
}
