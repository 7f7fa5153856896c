package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/adapters/logger"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keys"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Generate, import, inspect and export keys",
}

func init() {
	keyCmd.AddCommand(keyGenerateCmd)
	keyCmd.AddCommand(keyCharacteristicsCmd)
	keyCmd.AddCommand(keyExportCmd)

	keyGenerateCmd.Flags().String("algorithm", "", "key algorithm: RSA, EC, AES or HMAC (required)")
	keyGenerateCmd.Flags().StringSlice("purpose", nil, "one or more purposes: encrypt, decrypt, sign, verify (required)")
	keyGenerateCmd.Flags().Uint32("key-size", 0, "key size in bits (required)")
	keyGenerateCmd.Flags().Uint64("exponent", 0, "RSA public exponent (RSA only, defaults to 65537)")
	keyGenerateCmd.Flags().StringSlice("digest", nil, "one or more digests: none, md5, sha1, sha224, sha256, sha384, sha512")
	keyGenerateCmd.Flags().StringSlice("padding", nil, "one or more paddings: none, pkcs7, pkcs1, oaep, pss (RSA)")
	keyGenerateCmd.Flags().StringSlice("block-mode", nil, "one or more block modes: ecb, cbc, ctr, gcm (AES)")
	keyGenerateCmd.Flags().Uint32("mac-length", 0, "MAC length in bits")
	keyGenerateCmd.Flags().Bool("caller-nonce", false, "permit the caller to supply its own nonce at begin time")
	keyGenerateCmd.Flags().String("app-id", "", "hex-encoded application ID bound into the key blob")
	keyGenerateCmd.Flags().String("app-data", "", "hex-encoded application data bound into the key blob")
	keyGenerateCmd.Flags().String("blob-out", "", "file to write the generated key blob to (base64), stdout if empty")
	_ = keyGenerateCmd.MarkFlagRequired("algorithm")
	_ = keyGenerateCmd.MarkFlagRequired("purpose")
	_ = keyGenerateCmd.MarkFlagRequired("key-size")

	keyCharacteristicsCmd.Flags().String("blob-file", "", "file containing a base64 key blob (required)")
	keyCharacteristicsCmd.Flags().String("app-id", "", "hex-encoded application ID the blob was sealed with")
	keyCharacteristicsCmd.Flags().String("app-data", "", "hex-encoded application data the blob was sealed with")
	_ = keyCharacteristicsCmd.MarkFlagRequired("blob-file")

	keyExportCmd.Flags().String("blob-file", "", "file containing a base64 key blob (required)")
	keyExportCmd.Flags().String("format", "x509", "export format: x509 (the only supported export format)")
	keyExportCmd.Flags().String("app-id", "", "hex-encoded application ID the blob was sealed with")
	keyExportCmd.Flags().String("app-data", "", "hex-encoded application data the blob was sealed with")
	_ = keyExportCmd.MarkFlagRequired("blob-file")
}

func decodeHexFlag(cmd *cobra.Command, name string) ([]byte, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func readBlobFile(path string) ([]byte, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob file: %w", err)
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key and seal it into a key blob",
	RunE: func(cmd *cobra.Command, args []string) error {
		algoStr, _ := cmd.Flags().GetString("algorithm")
		algo, err := parseAlgorithm(algoStr)
		if err != nil {
			return handleError(err)
		}
		purposes, _ := cmd.Flags().GetStringSlice("purpose")
		keySize, _ := cmd.Flags().GetUint32("key-size")
		exponent, _ := cmd.Flags().GetUint64("exponent")
		digests, _ := cmd.Flags().GetStringSlice("digest")
		paddings, _ := cmd.Flags().GetStringSlice("padding")
		blockModes, _ := cmd.Flags().GetStringSlice("block-mode")
		macLength, _ := cmd.Flags().GetUint32("mac-length")
		callerNonce, _ := cmd.Flags().GetBool("caller-nonce")

		input := authset.New()
		input.Push(tag.Algorithm, tag.EnumValue(tag.Algorithm, int64(algo)))
		input.Push(tag.KeySize, tag.UintValue(tag.KeySize, keySize))
		for _, p := range purposes {
			pv, err := parsePurpose(p)
			if err != nil {
				return handleError(err)
			}
			input.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(pv)))
		}
		if algo == tag.AlgorithmRSA {
			if exponent == 0 {
				exponent = 65537
			}
			input.Push(tag.RSAPublicExponent, tag.Uint64Value(tag.RSAPublicExponent, exponent))
		}
		for _, d := range digests {
			dv, err := parseDigest(d)
			if err != nil {
				return handleError(err)
			}
			input.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(dv)))
		}
		for _, p := range paddings {
			pv, err := parsePadding(p)
			if err != nil {
				return handleError(err)
			}
			input.Push(tag.Padding, tag.EnumValue(tag.Padding, int64(pv)))
		}
		for _, m := range blockModes {
			mv, err := parseBlockMode(m)
			if err != nil {
				return handleError(err)
			}
			input.Push(tag.BlockMode, tag.EnumValue(tag.BlockMode, int64(mv)))
		}
		if macLength > 0 {
			input.Push(tag.MACLength, tag.UintValue(tag.MACLength, macLength))
		}
		if callerNonce {
			input.Push(tag.CallerNonce, tag.BoolValue(tag.CallerNonce, true))
		}
		if appID, err := decodeHexFlag(cmd, "app-id"); err != nil {
			return handleError(err)
		} else if appID != nil {
			input.Push(tag.ApplicationID, tag.BytesValue(tag.ApplicationID, appID))
		}
		if appData, err := decodeHexFlag(cmd, "app-data"); err != nil {
			return handleError(err)
		} else if appData != nil {
			input.Push(tag.ApplicationData, tag.BytesValue(tag.ApplicationData, appData))
		}

		sess, err := newSession()
		if err != nil {
			return handleError(err)
		}
		blobBytes, hw, sw, err := sess.service.GenerateKey(sess.ctx, input)
		if err != nil {
			return handleError(err)
		}
		sess.log.InfoContext(sess.ctx, "key generated", logger.Int("hw_tags", hw.Len()), logger.Int("sw_tags", sw.Len()))

		encoded := base64.StdEncoding.EncodeToString(blobBytes)
		out, _ := cmd.Flags().GetString("blob-out")
		if out == "" {
			return printer().PrintSuccess(encoded)
		}
		if err := os.WriteFile(out, []byte(encoded+"\n"), 0600); err != nil {
			return handleError(fmt.Errorf("failed to write blob file: %w", err))
		}
		return printer().PrintSuccess(fmt.Sprintf("key blob written to %s", out))
	},
}

var keyCharacteristicsCmd = &cobra.Command{
	Use:   "characteristics",
	Short: "Print a key blob's hardware- and software-enforced authorization sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		blobFile, _ := cmd.Flags().GetString("blob-file")
		blobBytes, err := readBlobFile(blobFile)
		if err != nil {
			return handleError(err)
		}
		appID, err := decodeHexFlag(cmd, "app-id")
		if err != nil {
			return handleError(err)
		}
		appData, err := decodeHexFlag(cmd, "app-data")
		if err != nil {
			return handleError(err)
		}

		sess, err := newSession()
		if err != nil {
			return handleError(err)
		}
		hw, sw, err := sess.service.GetKeyCharacteristics(sess.ctx, blobBytes, appID, appData, nil)
		if err != nil {
			return handleError(err)
		}
		return printer().PrintData(map[string]interface{}{
			"hardware_enforced": describeSet(hw),
			"software_enforced": describeSet(sw),
		})
	},
}

var keyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a key's public material",
	RunE: func(cmd *cobra.Command, args []string) error {
		blobFile, _ := cmd.Flags().GetString("blob-file")
		blobBytes, err := readBlobFile(blobFile)
		if err != nil {
			return handleError(err)
		}
		appID, err := decodeHexFlag(cmd, "app-id")
		if err != nil {
			return handleError(err)
		}
		appData, err := decodeHexFlag(cmd, "app-data")
		if err != nil {
			return handleError(err)
		}

		sess, err := newSession()
		if err != nil {
			return handleError(err)
		}
		material, err := sess.service.ExportKey(sess.ctx, keys.FormatX509, blobBytes, appID, appData, nil)
		if err != nil {
			return handleError(err)
		}
		return printer().PrintSuccess(base64.StdEncoding.EncodeToString(material))
	},
}

func describeSet(s *authset.Set) []string {
	out := make([]string, 0, s.Len())
	for _, e := range s.Entries() {
		out = append(out, describeEntry(e))
	}
	return out
}

func describeEntry(e authset.Entry) string {
	switch e.Value.Type {
	case tag.Enum:
		return fmt.Sprintf("%s=%d", e.Tag.Name(), e.Value.Enum)
	case tag.Uint:
		return fmt.Sprintf("%s=%d", e.Tag.Name(), e.Value.UintVal)
	case tag.Uint64:
		return fmt.Sprintf("%s=%d", e.Tag.Name(), e.Value.Uint64)
	case tag.Bool:
		return fmt.Sprintf("%s=%t", e.Tag.Name(), e.Value.Bool)
	case tag.Date:
		return fmt.Sprintf("%s=%d", e.Tag.Name(), e.Value.Date)
	case tag.Bytes:
		return fmt.Sprintf("%s=%s", e.Tag.Name(), hex.EncodeToString(e.Value.Bytes))
	default:
		return e.Tag.Name()
	}
}
