// Command seed populates the database with the default admin account and
// demo reviews/products for local development.
package main

import (
	"flag"
	"log"

	"wtero/internal/config"
	"wtero/internal/database"
	"wtero/internal/seed"
)

func main() {
	numReviews := flag.Int("reviews", 10, "number of demo reviews to create")
	numProducts := flag.Int("products", 6, "number of demo products to create")
	clean := flag.Bool("clean", false, "delete existing reviews and products first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := seed.EnsureDefaultAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed default admin: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumReviews:  *numReviews,
		NumProducts: *numProducts,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
