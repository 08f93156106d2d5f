package loads

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// keyPrefix distinguishes derived load keys from any other identifier kind.
const keyPrefix = "load:"

// keyHexLen is the number of hex digits kept from the digest.
const keyHexLen = 24

// DeriveKey computes the stable identity key for a candidate record from its
// immutable core fields: origin, destination, pickup, company, rate, and
// distance. Two batches describing the same physical load yield the same key.
//
// Records missing an origin or destination city/state cannot be identified
// and are rejected with ErrMalformedRecord.
func DeriveKey(in Input) (string, error) {
	oCity := strings.TrimSpace(in.OriginCity)
	oState := strings.TrimSpace(in.OriginState)
	dCity := strings.TrimSpace(in.DestCity)
	dState := strings.TrimSpace(in.DestState)
	if oCity == "" || oState == "" || dCity == "" || dState == "" {
		return "", fmt.Errorf("%w: origin and destination city/state are required", ErrMalformedRecord)
	}

	parts := []string{
		oCity,
		oState,
		dCity,
		dState,
		strings.TrimSpace(in.Pickup),
		strings.TrimSpace(in.Company),
		strings.TrimSpace(in.Rate),
		formatNullableInt(in.Distance),
	}
	for i, part := range parts {
		parts[i] = escapeKeyPart(part)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return keyPrefix + hex.EncodeToString(sum[:])[:keyHexLen], nil
}

// escapeKeyPart keeps the pipe-delimited serialization unambiguous when a
// field itself contains the delimiter.
func escapeKeyPart(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, "|", `\|`)
}

func formatNullableInt(value *int64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatInt(*value, 10)
}
