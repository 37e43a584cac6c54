package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
	"strings"
)

const secretLen = 40

var ErrMalformedToken = errors.New("malformed token")

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns a crypto-random string of n characters.
func RandomString(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = secretAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// NewSecret returns a fresh plaintext token secret. Only its digest is ever
// persisted.
func NewSecret() (string, error) {
	return RandomString(secretLen)
}

// VerificationCode returns a random 6-digit numeric code.
func VerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Compose builds the plaintext handed to the client: "{rowID}|{secret}".
// The row id prefix makes resolution a primary-key lookup.
func Compose(id uint, secret string) string {
	return strconv.FormatUint(uint64(id), 10) + "|" + secret
}

// Split parses a presented bearer credential back into row id and secret.
func Split(plain string) (uint, string, error) {
	idPart, secret, ok := strings.Cut(plain, "|")
	if !ok || idPart == "" || secret == "" {
		return 0, "", ErrMalformedToken
	}
	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil {
		return 0, "", ErrMalformedToken
	}
	return uint(id), secret, nil
}
