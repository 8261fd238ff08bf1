package order

import (
	"crypto/rand"
	"math/big"
)

// codeAlphabet leaves out 0/O and 1/I so codes can be read over the phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewOrderCode returns a human friendly order reference such as "JMB-7K2QXA".
func NewOrderCode() string {
	b := make([]byte, 6)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return "JMB-" + string(b)
}
