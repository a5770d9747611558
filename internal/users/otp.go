package users

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// generateOTP returns a numeric code drawn uniformly from [100000, 999999].
func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic(err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10)
}
