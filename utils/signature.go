package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
)

// getSaltKey retrieves the gateway salt key from environment variables
func getSaltKey() (string, error) {
	key := os.Getenv("PAYMENT_SALT_KEY")
	if key == "" {
		return "", fmt.Errorf("PAYMENT_SALT_KEY environment variable is not set")
	}
	return key, nil
}

// ComputeChecksum produces the X-VERIFY checksum the gateway expects:
// sha256(payload + saltKey) hex, suffixed with the salt index.
func ComputeChecksum(payload string) (string, error) {
	key, err := getSaltKey()
	if err != nil {
		return "", err
	}

	saltIndex := os.Getenv("PAYMENT_SALT_INDEX")
	if saltIndex == "" {
		saltIndex = "1"
	}

	sum := sha256.Sum256([]byte(payload + key))
	return hex.EncodeToString(sum[:]) + "###" + saltIndex, nil
}

// VerifyChecksum checks a gateway-supplied X-VERIFY header against the raw
// payload in constant time.
func VerifyChecksum(payload, header string) (bool, error) {
	expected, err := ComputeChecksum(payload)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(header)) == 1, nil
}
