package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt digest of plain at the given cost.  The cost
// comes from configuration so deployments can trade hashing time for
// hardness; out-of-range values fall back to the library default rather
// than failing registration.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt digest.
// Only a boolean comes back: callers never learn, and so can never leak,
// why a credential check failed.
func VerifyPassword(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
