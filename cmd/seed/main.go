// Command seed fills a development database with demo data.
package main

import (
	"flag"
	"log"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	comments := flag.Int("comments", 2, "Comments per post")
	follows := flag.Int("follows", 5, "Authors each user follows")
	maxDays := flag.Int("days", 90, "Spread pub dates over this many past days")
	shouldClean := flag.Bool("clean", false, "Delete existing posts, comments, follows, groups and users first")
	dryRun := flag.Bool("dry-run", false, "Build the data without writing it")
	randSeed := flag.Int64("seed", 0, "Random seed; 0 uses the clock")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, clean=%v, dry-run=%v", *numUsers, *numPosts, *shouldClean, *dryRun)

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

	summary, err := seed.Seed(db, seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
		FollowsPerUser:  *follows,
		MaxDays:         *maxDays,
		BatchSize:       100,
		RandSeed:        *randSeed,
		DryRun:          *dryRun,
		ShouldClean:     *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d groups, %d users, %d posts, %d comments, %d follows",
		summary.Groups, summary.Users, summary.Posts, summary.Comments, summary.Follows)
	log.Printf("All demo users have the password: %s", seed.DemoPassword)
}
