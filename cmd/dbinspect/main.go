// Package main prints what a data directory holds: item counts per
// category from the sqlite database and the raw preference keys from the
// badger store.
//
// Usage:
//
//	DATA_PATH=~/monomori go run ./cmd/dbinspect
package main

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/store/sqlite"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/monomori")
	}

	fmt.Println("=== Collections ===")
	fmt.Println()
	inspectCollections(filepath.Join(dataPath, "monomori.db"))

	fmt.Println()
	fmt.Println("=== Preferences ===")
	fmt.Println()
	inspectPreferences(filepath.Join(dataPath, "preferences"))
}

func inspectCollections(path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("No database at %s\n", path)
		return
	}

	db, err := sqlite.Open(path, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	counts, err := db.Counts(context.Background())
	if err != nil {
		log.Fatalf("Failed to count items: %v", err)
	}

	total := 0
	for _, category := range domain.Categories() {
		n := counts[category]
		total += n
		fmt.Printf("%-14s %6d\n", category, n)
	}
	fmt.Printf("%-14s %6d\n", "TOTAL", total)
}

func inspectPreferences(path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("No preference store at %s\n", path)
		return
	}

	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open preference store: %v", err)
	}
	defer db.Close()

	keys := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(val []byte) error {
				var decoded any
				if err := json.Unmarshal(val, &decoded); err != nil {
					fmt.Printf("%s = <%d bytes, not JSON>\n", key, len(val))
					return nil
				}
				fmt.Printf("%s = %v\n", key, decoded)
				return nil
			})
			if err != nil {
				log.Printf("Error reading %s: %v", key, err)
			}
			keys++
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating preference store: %v", err)
	}

	fmt.Printf("\n%d keys\n", keys)
}
