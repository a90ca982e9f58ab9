package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a plain password. cost comes from
// BCRYPT_COST so tests can use the cheapest setting while production
// pays for a real work factor.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash. The
// comparison is constant-time inside bcrypt.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
