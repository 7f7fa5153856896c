package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

var supportedCmd = &cobra.Command{
	Use:   "supported",
	Short: "Print the algorithm and parameter surface a key can be generated or operated with",
	RunE: func(cmd *cobra.Command, args []string) error {
		algoStr, _ := cmd.Flags().GetString("algorithm")
		purposeStr, _ := cmd.Flags().GetString("purpose")

		sess, err := newSession()
		if err != nil {
			return handleError(err)
		}

		if algoStr == "" {
			names := make([]string, 0, 4)
			for _, a := range sess.service.GetSupportedAlgorithms() {
				names = append(names, algorithmName(a))
			}
			return printer().PrintData(map[string]interface{}{"algorithms": names})
		}

		algo, err := parseAlgorithm(algoStr)
		if err != nil {
			return handleError(err)
		}
		var purpose tag.Purpose_
		if purposeStr != "" {
			purpose, err = parsePurpose(purposeStr)
			if err != nil {
				return handleError(err)
			}
		}

		result := map[string]interface{}{"algorithm": algorithmName(algo)}

		if modes, err := sess.service.GetSupportedBlockModes(algo, purpose); err == nil && modes != nil {
			result["block_modes"] = fmt.Sprint(modes)
		}
		if paddings, err := sess.service.GetSupportedPaddingModes(algo, purpose); err == nil && paddings != nil {
			result["paddings"] = fmt.Sprint(paddings)
		}
		if digests, err := sess.service.GetSupportedDigests(algo, purpose); err == nil && digests != nil {
			result["digests"] = fmt.Sprint(digests)
		}
		result["import_formats"] = fmt.Sprint(sess.service.GetSupportedImportFormats(algo))
		result["export_formats"] = fmt.Sprint(sess.service.GetSupportedExportFormats(algo))

		return printer().PrintData(result)
	},
}

func init() {
	supportedCmd.Flags().String("algorithm", "", "algorithm to query: RSA, EC, AES or HMAC (omit to list all supported algorithms)")
	supportedCmd.Flags().String("purpose", "", "purpose to query: encrypt, decrypt, sign or verify")
}
