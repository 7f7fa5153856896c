package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

var cryptoCmd = &cobra.Command{
	Use:   "crypto",
	Short: "Run begin/update/finish operations against a sealed key in a single invocation",
}

func init() {
	cryptoCmd.AddCommand(signCmd)
	cryptoCmd.AddCommand(verifyCmd)
	cryptoCmd.AddCommand(encryptCmd)
	cryptoCmd.AddCommand(decryptCmd)

	for _, c := range []*cobra.Command{signCmd, verifyCmd} {
		c.Flags().String("blob-file", "", "file containing a base64 key blob (required)")
		c.Flags().String("digest", "", "digest: none, md5, sha1, sha224, sha256, sha384, sha512")
		c.Flags().String("padding", "", "padding (RSA only): none, pkcs1, pss, oaep")
		c.Flags().String("in", "-", "input file, or - for stdin")
		c.Flags().String("app-id", "", "hex-encoded application ID the blob was sealed with")
		c.Flags().String("app-data", "", "hex-encoded application data the blob was sealed with")
		_ = c.MarkFlagRequired("blob-file")
	}
	verifyCmd.Flags().String("signature", "", "base64-encoded signature to verify (required)")
	_ = verifyCmd.MarkFlagRequired("signature")

	for _, c := range []*cobra.Command{encryptCmd, decryptCmd} {
		c.Flags().String("blob-file", "", "file containing a base64 key blob (required)")
		c.Flags().String("block-mode", "", "block mode (AES only): ecb, cbc, ctr, gcm")
		c.Flags().String("padding", "", "padding: none or pkcs7 (AES ECB/CBC)")
		c.Flags().Uint32("mac-length", 0, "MAC length in bits (AES-GCM, defaults to 128)")
		c.Flags().String("in", "-", "input file, or - for stdin")
		c.Flags().String("app-id", "", "hex-encoded application ID the blob was sealed with")
		c.Flags().String("app-data", "", "hex-encoded application data the blob was sealed with")
		_ = c.MarkFlagRequired("blob-file")
	}
	decryptCmd.Flags().String("nonce", "", "hex-encoded nonce/IV used at encrypt time (required for CBC, CTR, GCM)")
	decryptCmd.Flags().String("tag", "", "hex-encoded AEAD tag produced at encrypt time (required for GCM)")
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	path, _ := cmd.Flags().GetString("in")
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// oneShot drives a full begin/update/finish cycle for a single blob of
// input, aborting the operation on any failure so its table slot is freed.
// updateParams carries a decrypt's caller-supplied AEAD tag, if any; it must
// reach the adapter via Update, before Finish consumes the ciphertext.
func oneShot(sess *session, purpose tag.Purpose_, blobBytes []byte, beginParams *authset.Set, appID, appData []byte, input, signature []byte, updateParams, finishParams *authset.Set) (beginOut, finishOut *authset.Set, output []byte, err error) {
	handle, beginOut, err := sess.service.Begin(sess.ctx, purpose, blobBytes, beginParams, appID, appData, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	_, _, updateOut, err := sess.service.Update(sess.ctx, handle, updateParams, input)
	if err != nil {
		_ = sess.service.Abort(sess.ctx, handle)
		return nil, nil, nil, err
	}
	finishOut, finishOutput, err := sess.service.Finish(sess.ctx, handle, finishParams, signature)
	if err != nil {
		_ = sess.service.Abort(sess.ctx, handle)
		return nil, nil, nil, err
	}
	return beginOut, finishOut, append(updateOut, finishOutput...), nil
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign data with a sealed key",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSignVerify(cmd, tag.PurposeSign)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a signature against a sealed key",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSignVerify(cmd, tag.PurposeVerify)
	},
}

func runSignVerify(cmd *cobra.Command, purpose tag.Purpose_) error {
	blobFile, _ := cmd.Flags().GetString("blob-file")
	blobBytes, err := readBlobFile(blobFile)
	if err != nil {
		return handleError(err)
	}
	digestStr, _ := cmd.Flags().GetString("digest")
	digest, err := parseDigest(digestStr)
	if err != nil {
		return handleError(err)
	}
	paddingStr, _ := cmd.Flags().GetString("padding")
	padding, err := parsePadding(paddingStr)
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
	input, err := readInput(cmd)
	if err != nil {
		return handleError(fmt.Errorf("failed to read input: %w", err))
	}

	beginParams := authset.New()
	beginParams.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(digest)))
	if padding != tag.PaddingNone {
		beginParams.Push(tag.Padding, tag.EnumValue(tag.Padding, int64(padding)))
	}

	sess, err := newSession()
	if err != nil {
		return handleError(err)
	}

	var signature []byte
	if purpose == tag.PurposeVerify {
		sigStr, _ := cmd.Flags().GetString("signature")
		signature, err = base64.StdEncoding.DecodeString(sigStr)
		if err != nil {
			return handleError(fmt.Errorf("invalid --signature: %w", err))
		}
	}

	_, _, output, err := oneShot(sess, purpose, blobBytes, beginParams, appID, appData, input, signature, nil, nil)
	if err != nil {
		return handleError(err)
	}

	if purpose == tag.PurposeVerify {
		return printer().PrintSuccess("signature is valid")
	}
	return printer().PrintSuccess(base64.StdEncoding.EncodeToString(output))
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt data with a sealed key",
	RunE: func(cmd *cobra.Command, args []string) error {
		blobFile, _ := cmd.Flags().GetString("blob-file")
		blobBytes, err := readBlobFile(blobFile)
		if err != nil {
			return handleError(err)
		}
		blockMode, err := parseBlockMode(mustFlagString(cmd, "block-mode"))
		if err != nil {
			return handleError(err)
		}
		padding, err := parsePadding(mustFlagString(cmd, "padding"))
		if err != nil {
			return handleError(err)
		}
		macLength, _ := cmd.Flags().GetUint32("mac-length")
		appID, err := decodeHexFlag(cmd, "app-id")
		if err != nil {
			return handleError(err)
		}
		appData, err := decodeHexFlag(cmd, "app-data")
		if err != nil {
			return handleError(err)
		}
		input, err := readInput(cmd)
		if err != nil {
			return handleError(fmt.Errorf("failed to read input: %w", err))
		}

		beginParams := authset.New()
		if blockMode != 0 {
			beginParams.Push(tag.BlockMode, tag.EnumValue(tag.BlockMode, int64(blockMode)))
		}
		if padding != tag.PaddingNone {
			beginParams.Push(tag.Padding, tag.EnumValue(tag.Padding, int64(padding)))
		}
		if macLength > 0 {
			beginParams.Push(tag.MACLength, tag.UintValue(tag.MACLength, macLength))
		}

		sess, err := newSession()
		if err != nil {
			return handleError(err)
		}
		beginOut, finishOut, output, err := oneShot(sess, tag.PurposeEncrypt, blobBytes, beginParams, appID, appData, input, nil, nil, nil)
		if err != nil {
			return handleError(err)
		}

		result := map[string]interface{}{
			"ciphertext": base64.StdEncoding.EncodeToString(output),
		}
		if nonce, ok := beginOut.Get(tag.Nonce); ok {
			result["nonce"] = hex.EncodeToString(nonce.Bytes)
		}
		if aeadTag, ok := finishOut.Get(tag.AEADTag); ok {
			result["tag"] = hex.EncodeToString(aeadTag.Bytes)
		}
		return printer().PrintData(result)
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt data with a sealed key",
	RunE: func(cmd *cobra.Command, args []string) error {
		blobFile, _ := cmd.Flags().GetString("blob-file")
		blobBytes, err := readBlobFile(blobFile)
		if err != nil {
			return handleError(err)
		}
		blockMode, err := parseBlockMode(mustFlagString(cmd, "block-mode"))
		if err != nil {
			return handleError(err)
		}
		padding, err := parsePadding(mustFlagString(cmd, "padding"))
		if err != nil {
			return handleError(err)
		}
		macLength, _ := cmd.Flags().GetUint32("mac-length")
		nonce, err := decodeHexFlag(cmd, "nonce")
		if err != nil {
			return handleError(err)
		}
		aeadTag, err := decodeHexFlag(cmd, "tag")
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
		input, err := readInput(cmd)
		if err != nil {
			return handleError(fmt.Errorf("failed to read input: %w", err))
		}
		ciphertext, err := base64.StdEncoding.DecodeString(string(input))
		if err != nil {
			return handleError(fmt.Errorf("input must be base64 ciphertext: %w", err))
		}

		beginParams := authset.New()
		if blockMode != 0 {
			beginParams.Push(tag.BlockMode, tag.EnumValue(tag.BlockMode, int64(blockMode)))
		}
		if padding != tag.PaddingNone {
			beginParams.Push(tag.Padding, tag.EnumValue(tag.Padding, int64(padding)))
		}
		if macLength > 0 {
			beginParams.Push(tag.MACLength, tag.UintValue(tag.MACLength, macLength))
		}
		if len(nonce) > 0 {
			beginParams.Push(tag.Nonce, tag.BytesValue(tag.Nonce, nonce))
		}

		var updateParams *authset.Set
		if len(aeadTag) > 0 {
			updateParams = authset.New()
			updateParams.Push(tag.AEADTag, tag.BytesValue(tag.AEADTag, aeadTag))
		}

		sess, err := newSession()
		if err != nil {
			return handleError(err)
		}
		_, _, output, err := oneShot(sess, tag.PurposeDecrypt, blobBytes, beginParams, appID, appData, ciphertext, nil, updateParams, nil)
		if err != nil {
			return handleError(err)
		}
		return printer().PrintSuccess(string(output))
	},
}

func mustFlagString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}
