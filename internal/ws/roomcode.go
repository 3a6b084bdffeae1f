package ws

import (
	"crypto/rand"
	"math/big"
)

// GenerateRoomCode mints a short shareable room token. Codes are not checked
// for collisions: joining a code that happens to exist simply joins that room.
func GenerateRoomCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}
