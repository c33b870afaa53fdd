// Package main provides a tool to seed the catalogue with sample items.
//
// It writes a few items to every category through the catalog service, so
// they pass the same validation as API writes, then rebuilds the search
// index. Run it while the server is stopped.
//
// Usage:
//
//	DATA_PATH=~/monomori go run ./cmd/seed
//	DATA_PATH=~/monomori go run ./cmd/seed --clear  # Empty every category first
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/search"
	"github.com/monomori/monomori-server/internal/service"
	"github.com/monomori/monomori-server/internal/store/sqlite"
	"github.com/monomori/monomori-server/internal/validation"
)

var clearFirst = flag.Bool("clear", false, "Delete every item before seeding")

type sample struct {
	category domain.Category
	sub      string
	tags     []string
	barcode  string
	attrs    domain.Attributes
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/monomori")
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", dataPath)

	logger := slog.New(slog.DiscardHandler)
	db, err := sqlite.Open(filepath.Join(dataPath, "monomori.db"), logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: dataPath, Logger: logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	catalog := service.NewCatalogService(db, validation.New(), logger)
	searchService := service.NewSearchService(index, db, logger)

	ctx := context.Background()

	if *clearFirst {
		for _, category := range domain.Categories() {
			n, err := catalog.DeleteAll(ctx, category)
			if err != nil {
				log.Fatalf("Failed to clear %s: %v", category, err)
			}
			if n > 0 {
				fmt.Printf("  Cleared %d %s items\n", n, category)
			}
		}
	}

	// Skip per-item events and indexing; the index is rebuilt in one pass below.
	db.SetBulkMode(true)
	created := 0
	for _, s := range samples() {
		item := domain.NewItem(s.category)
		item.Subcategory = s.sub
		item.Barcode = s.barcode
		if s.tags != nil {
			item.Tags = s.tags
		}
		item.Attributes = s.attrs

		saved, err := catalog.Create(ctx, s.category, item)
		if err != nil {
			log.Printf("Failed to create %s item: %v", s.category, err)
			continue
		}
		schema, _ := domain.SchemaFor(s.category)
		fmt.Printf("  %-14s %s (%s)\n", s.category, schema.Title(saved), saved.ID)
		created++
	}
	db.SetBulkMode(false)

	fmt.Printf("\nCreated %d items, rebuilding search index...\n", created)
	if err := searchService.ReindexAll(ctx); err != nil {
		log.Fatalf("Failed to rebuild search index: %v", err)
	}

	docs, _ := searchService.DocumentCount()
	fmt.Printf("Seeding complete! %d documents indexed.\n", docs)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func samples() []sample {
	return []sample{
		{category: domain.CategoryBooks, sub: "FICTION", tags: []string{"sci-fi"}, barcode: "9780441013593", attrs: domain.Attributes{
			"title": "Dune", "authors": []string{"Frank Herbert"}, "publisher": "Ace",
			"genre": "Science Fiction", "series": "Dune Chronicles", "releaseDate": day(1990, time.September, 1),
			"readStatus": "READ",
		}},
		{category: domain.CategoryBooks, sub: "FICTION", attrs: domain.Attributes{
			"title": "Spice and Wolf, Vol. 1", "authors": []string{"Isuna Hasekura"}, "series": "Spice and Wolf",
			"readStatus": "WANT_TO_READ",
		}},
		{category: domain.CategoryFigures, sub: "SCALE_1_7", tags: []string{"display"}, attrs: domain.Attributes{
			"character": "Rei Ayanami", "seriesAnime": "Neon Genesis Evangelion", "manufacturer": "Good Smile Company",
			"scale": "1/7", "releaseDate": day(2021, time.March, 15),
		}},
		{category: domain.CategoryMusic, sub: "VINYL", barcode: "074646593815", attrs: domain.Attributes{
			"albumTitle": "Kind of Blue", "artists": []string{"Miles Davis"}, "label": "Columbia",
			"year": int64(1959), "genres": []string{"Jazz"},
		}},
		{category: domain.CategoryMoviesTV, attrs: domain.Attributes{
			"title": "Akira", "genres": []string{"Animation", "Science Fiction"}, "cast": []string{"Mitsuo Iwata"},
		}},
		{category: domain.CategoryVideoGames, attrs: domain.Attributes{
			"title": "Chrono Trigger", "platform": "SNES", "genre": "RPG", "releaseDate": day(1995, time.March, 11),
		}},
		{category: domain.CategoryTradingCards, sub: "POKEMON", attrs: domain.Attributes{
			"cardName": "Charizard", "quantityOwned": int64(2),
		}},
		{category: domain.CategoryModelKits, sub: "GUNPLA", tags: []string{"backlog"}, attrs: domain.Attributes{
			"kitName": "RX-78-2 Gundam", "seriesSource": "Mobile Suit Gundam",
		}},
		{category: domain.CategoryMagazines, attrs: domain.Attributes{
			"title": "Newtype",
		}},
		{category: domain.CategoryArtPrints, attrs: domain.Attributes{
			"title": "The Great Wave off Kanagawa",
		}},
		{category: domain.CategoryComics, attrs: domain.Attributes{
			"title": "Akira, Vol. 1", "series": "Akira", "authors": []string{"Katsuhiro Otomo"},
			"artists": []string{"Katsuhiro Otomo"}, "genres": []string{"Cyberpunk"},
		}},
		{category: domain.CategoryCustom, attrs: domain.Attributes{
			"categoryName": "Fountain Pens", "name": "Pilot Custom 74",
		}},
	}
}
