package tools

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

type base64EncodeArgs struct {
	Text string `json:"text" jsonschema:"description=Plain text to encode"`
}

type base64EncodeResult struct {
	Encoded string `json:"encoded"`
}

func base64Encode(_ context.Context, args base64EncodeArgs) (any, error) {
	return base64EncodeResult{Encoded: base64.StdEncoding.EncodeToString([]byte(args.Text))}, nil
}

type sha256HashArgs struct {
	Text string `json:"text" jsonschema:"description=Text to hash"`
}

type sha256HashResult struct {
	Hash string `json:"hash"`
}

func sha256Hash(_ context.Context, args sha256HashArgs) (any, error) {
	sum := sha256.Sum256([]byte(args.Text))
	return sha256HashResult{Hash: hex.EncodeToString(sum[:])}, nil
}
