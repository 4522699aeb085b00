package auth

import (
	"crypto/hmac"
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

func applyPepper(password, pepper string) []byte {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

func hashPassword(password, pepper string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(applyPepper(password, pepper), bcrypt.DefaultCost)
	return string(b), err
}

func checkPasswordHash(password, hash, pepper string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), applyPepper(password, pepper)) == nil
}
