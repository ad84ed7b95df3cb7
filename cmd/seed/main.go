// Command main fills a development database with generated blog data and
// prints a bearer token for every seeded user.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/middleware"
	"blogicum/internal/seed"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

const tokenTTL = 30 * 24 * time.Hour

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numCategories := flag.Int("categories", 6, "Number of categories to create")
	numLocations := flag.Int("locations", 8, "Number of locations to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	numComments := flag.Int("comments", 150, "Number of comments to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fakerSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	fast := flag.Bool("fast", false, "Store plain passwords instead of bcrypt hashes")
	flag.Parse()

	log.Println(color.GreenString("Database Seeder"))
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, %d comments, clean=%v\n", *numUsers, *numPosts, *numComments, *shouldClean)

	// A local .env only fills variables the environment does not set.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{Seed: *fakerSeed, SkipBcrypt: *fast})
	if err != nil {
		log.Fatalf("Seeder setup failed: %v", err)
	}

	ctx := context.Background()
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx, seed.Counts{
		Users:      *numUsers,
		Categories: *numCategories,
		Locations:  *numLocations,
		Posts:      *numPosts,
		Comments:   *numComments,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	auth := middleware.NewAuthenticator(cfg.JWTSecret, nil, cfg.LoginURL)
	for _, user := range res.Users {
		token, err := auth.IssueToken(user.ID, tokenTTL)
		if err != nil {
			log.Fatalf("Token for %s: %v", user.Username, err)
		}
		log.Printf("%s %s", color.CyanString(user.Username), token)
	}

	log.Println(color.GreenString("All done! Your database is now populated with test data."))
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
