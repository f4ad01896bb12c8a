package user

import (
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"
)

// prehash maps a password of any length to 44 ASCII bytes, inside bcrypt's 72 byte input limit.
func prehash(password string) []byte {
	sum := blake2b.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func hashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}
