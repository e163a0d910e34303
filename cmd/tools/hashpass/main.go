// Command hashpass prints a bcrypt hash for seeding users directly into a
// store. It honours BCRYPT_COST from the environment or .env.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"shortener.local/internal/app/shortlink"
	"shortener.local/internal/platform/config"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: go run ./cmd/tools/hashpass <password>")
	}
	password := os.Args[1]
	if err := shortlink.ValidatePassword(password); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(hash))
}
