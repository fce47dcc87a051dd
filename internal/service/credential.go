package service

import (
	"go-identity-core/internal/utils/errcode"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier is the boundary to credential checking. The core only
// needs hash-on-create and verify-on-login; password policy, social login
// and reset flows live with the embedding application.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

type BcryptVerifier struct {
	Cost int
}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{Cost: bcrypt.DefaultCost}
}

func (v *BcryptVerifier) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), v.Cost)
	if err != nil {
		return "", errcode.ErrPasswordEncryption
	}
	return string(hashed), nil
}

func (v *BcryptVerifier) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return errcode.ErrInvalidCredentials
	}
	return nil
}
