package repository

import (
	"context"
	"strings"

	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a feed query. Zero fields are ignored.
type PostFilter struct {
	GroupID  uint
	AuthorID uint
	// FollowerID selects posts whose author is followed by this user.
	FollowerID uint
	// Query is a case-insensitive substring match on the post text.
	Query string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := withPostRelations(readDB(r.db).WithContext(ctx)).First(&post, id).Error
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

// List returns one page of posts matching filter, newest first, and the total match count.
func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, int64, error) {
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := r.applyFilter(db.Model(&models.Post{}), filter).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	posts := []*models.Post{}
	if total == 0 || int64(offset) >= total {
		return posts, total, nil
	}

	err := withPostRelations(r.applyFilter(db, filter)).
		Order("posts.pub_date DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) applyFilter(db *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.GroupID != 0 {
		db = db.Where("posts.group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != 0 {
		db = db.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.FollowerID != 0 {
		followed := r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", filter.FollowerID)
		db = db.Where("posts.author_id IN (?)", followed)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		db = db.Where("LOWER(posts.text) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	return db
}

// withPostRelations batch-loads the author and group of every post: one query per relation.
func withPostRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author", authorColumns).Preload("Group")
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Update overwrites the editable columns only. pub_date and author_id never change.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post; comments go with it through the foreign key cascade.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}
