package seed

import (
	"fmt"
	"log"

	"yatube/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	FollowsPerUser  int
	MaxDays         int
	BatchSize       int
	RandSeed        int64
	SkipBcrypt      bool
	DryRun          bool
	ShouldClean     bool
}

// Summary counts what a Seed run created.
type Summary struct {
	Groups   int
	Users    int
	Posts    int
	Comments int
	Follows  int
}

// Seed populates the database with demo groups, users, posts, comments and follow edges.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)
	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	summary := &Summary{}

	var groups []models.Group
	if !opts.DryRun {
		var err error
		if groups, err = Groups(db); err != nil {
			return nil, err
		}
	}
	summary.Groups = len(groups)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	if len(users) == 0 {
		return summary, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		posts = append(posts, f.BuildPost(users[f.rng.Intn(len(users))], groups))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	summary.Posts = len(posts)

	for _, post := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			if _, err := f.CreateComment(users[f.rng.Intn(len(users))], post); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			summary.Comments++
		}
	}

	follows, err := seedFollowMesh(f, users, opts.FollowsPerUser)
	if err != nil {
		return nil, err
	}
	summary.Follows = follows

	log.Printf("Seeding done: %+v", *summary)
	return summary, nil
}

// seedFollowMesh has every user follow up to perUser distinct other users.
func seedFollowMesh(f *Factory, users []*models.User, perUser int) (int, error) {
	if perUser >= len(users) {
		perUser = len(users) - 1
	}
	created := 0
	for i, user := range users {
		for _, offset := range f.rng.Perm(len(users) - 1)[:max(perUser, 0)] {
			author := users[(i+1+offset)%len(users)]
			if err := f.CreateFollow(user, author); err != nil {
				return created, fmt.Errorf("create follow: %w", err)
			}
			created++
		}
	}
	return created, nil
}

// clearData deletes every domain row, dependents first.
func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	for _, model := range []any{&models.Follow{}, &models.Comment{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
