package main

import (
	"fmt"
	"strings"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

func parseAlgorithm(s string) (tag.Algorithm_, error) {
	switch strings.ToUpper(s) {
	case "RSA":
		return tag.AlgorithmRSA, nil
	case "EC":
		return tag.AlgorithmEC, nil
	case "AES":
		return tag.AlgorithmAES, nil
	case "HMAC":
		return tag.AlgorithmHMAC, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q (want RSA, EC, AES or HMAC)", s)
	}
}

func parsePurpose(s string) (tag.Purpose_, error) {
	switch strings.ToUpper(s) {
	case "ENCRYPT":
		return tag.PurposeEncrypt, nil
	case "DECRYPT":
		return tag.PurposeDecrypt, nil
	case "SIGN":
		return tag.PurposeSign, nil
	case "VERIFY":
		return tag.PurposeVerify, nil
	default:
		return 0, fmt.Errorf("unknown purpose %q (want encrypt, decrypt, sign or verify)", s)
	}
}

func parseDigest(s string) (tag.Digest_, error) {
	switch strings.ToUpper(s) {
	case "", "NONE":
		return tag.DigestNone, nil
	case "MD5":
		return tag.DigestMD5, nil
	case "SHA1":
		return tag.DigestSHA1, nil
	case "SHA224":
		return tag.DigestSHA224, nil
	case "SHA256":
		return tag.DigestSHA256, nil
	case "SHA384":
		return tag.DigestSHA384, nil
	case "SHA512":
		return tag.DigestSHA512, nil
	default:
		return 0, fmt.Errorf("unknown digest %q", s)
	}
}

func parsePadding(s string) (tag.Padding_, error) {
	switch strings.ToUpper(s) {
	case "", "NONE":
		return tag.PaddingNone, nil
	case "PKCS7":
		return tag.PaddingPKCS7, nil
	case "PKCS1":
		return tag.PaddingPKCS1_1_5_Sign, nil
	case "OAEP":
		return tag.PaddingOAEP, nil
	case "PSS":
		return tag.PaddingPSS, nil
	default:
		return 0, fmt.Errorf("unknown padding %q", s)
	}
}

func parseBlockMode(s string) (tag.BlockMode_, error) {
	switch strings.ToUpper(s) {
	case "", "ECB":
		return tag.BlockModeECB, nil
	case "CBC":
		return tag.BlockModeCBC, nil
	case "CTR":
		return tag.BlockModeCTR, nil
	case "GCM":
		return tag.BlockModeGCM, nil
	default:
		return 0, fmt.Errorf("unknown block mode %q", s)
	}
}

func algorithmName(a tag.Algorithm_) string {
	switch a {
	case tag.AlgorithmRSA:
		return "RSA"
	case tag.AlgorithmEC:
		return "EC"
	case tag.AlgorithmAES:
		return "AES"
	case tag.AlgorithmHMAC:
		return "HMAC"
	default:
		return "UNKNOWN"
	}
}
