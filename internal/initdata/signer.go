package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// keyDomain scopes the derived key to Mini App init data verification
const keyDomain = "WebAppData"

// DeriveKey computes HMAC-SHA256 keyed by "WebAppData" over the application
// secret and returns the raw digest.
func DeriveKey(secret string) []byte {
	mac := hmac.New(sha256.New, []byte(keyDomain))
	mac.Write([]byte(secret))
	return mac.Sum(nil)
}

// Sign returns the lowercase hex HMAC-SHA256 of dataCheckString under key
func Sign(dataCheckString string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}

// checkSignature recomputes the signature and compares it in constant time
func checkSignature(dataCheckString string, key []byte, signature string) error {
	expected := Sign(dataCheckString, key)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return reject(SignatureMismatch)
	}
	return nil
}
