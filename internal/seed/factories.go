// Package seed creates demo data for development databases.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"yatube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Yatube!Demo2024"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	hash string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. A zero Options.RandSeed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) passwordHash() string {
	if f.hash != "" {
		return f.hash
	}
	if f.opts.SkipBcrypt {
		f.hash = DemoPassword
		return f.hash
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bcrypt failed, storing plain demo password: %v", err)
		hashed = []byte(DemoPassword)
	}
	f.hash = string(hashed)
	return f.hash
}

// CreateUser constructs and persists a sample user. Overrides run before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: f.passwordHash(),
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by author with a pub_date somewhere in the last MaxDays.
// It is not persisted.
func (f *Factory) BuildPost(author *models.User, groups []models.Group, overrides ...func(*models.Post)) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute

	post := &models.Post{
		Text:     gofakeit.Paragraph(1, f.rng.Intn(4)+1, 12, "\n"),
		AuthorID: author.ID,
		PubDate:  time.Now().UTC().Add(-back),
	}
	// Roughly a third of posts stay ungrouped.
	if len(groups) > 0 && f.rng.Intn(3) > 0 {
		groupID := groups[f.rng.Intn(len(groups))].ID
		post.GroupID = &groupID
	}
	if f.rng.Float32() < 0.3 {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in chunks of BatchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.db.Omit(clause.Associations).CreateInBatches(posts, batch).Error
}

// CreateComment persists a sample comment by author on post.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:      post.ID,
		AuthorID:    author.ID,
		Text:        gofakeit.Sentence(f.rng.Intn(12) + 3),
		CreatedDate: post.PubDate.Add(time.Duration(f.rng.Intn(72)+1) * time.Hour),
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	if err := f.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow persists the edge user -> author. Existing edges are left alone.
func (f *Factory) CreateFollow(user, author *models.User) error {
	if user.ID == author.ID {
		return fmt.Errorf("user %d cannot follow themselves", user.ID)
	}
	if f.opts.DryRun {
		return nil
	}
	follow := &models.Follow{UserID: user.ID, AuthorID: author.ID}
	return f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error
}
