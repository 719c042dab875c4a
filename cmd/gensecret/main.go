// Command gensecret prints a random key suitable for SECRET_KEY, the
// shared secret the API uses to verify access tokens.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const secretKeyLen = 32

func main() {
	key := make([]byte, secretKeyLen)

	if _, err := rand.Read(key); err != nil {
		fmt.Fprintf(os.Stderr, "can't generate secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(key))
}
