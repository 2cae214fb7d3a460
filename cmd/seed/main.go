// Command main runs the database seeder for Soundbite.
package main

import (
	"flag"
	"log"

	"soundbite/internal/config"
	"soundbite/internal/database"
	"soundbite/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numSnippets := flag.Int("snippets", 100, "Number of snippets to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	maxDays := flag.Int("max-days", 90, "Spread created_at over this many past days")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d snippets, clean=%v\n", *numUsers, *numSnippets, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		NumSnippets: *numSnippets,
		ShouldClean: *shouldClean,
		MaxDays:     *maxDays,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
