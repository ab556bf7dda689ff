package seed

import (
	"fmt"

	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInGroup is a group every fresh install starts with.
type BuiltInGroup struct {
	Title       string
	Slug        string
	Description string
}

// BuiltInGroups defines the starter groups.
var BuiltInGroups = []BuiltInGroup{
	{Title: "Announcements", Slug: "announcements", Description: "News about the site itself."},
	{Title: "Books", Slug: "books", Description: "Reading lists, reviews and quotes."},
	{Title: "Travel", Slug: "travel", Description: "Notes from the road."},
	{Title: "Cooking", Slug: "cooking", Description: "Recipes and kitchen disasters."},
	{Title: "Music", Slug: "music", Description: "What everyone is listening to."},
	{Title: "Programming", Slug: "programming", Description: "Code, tools and war stories."},
}

// Groups upserts the built-in groups by slug. Running it twice changes nothing.
func Groups(db *gorm.DB) ([]models.Group, error) {
	groups := make([]models.Group, 0, len(BuiltInGroups))
	for _, item := range BuiltInGroups {
		group := models.Group{Title: item.Title, Slug: item.Slug, Description: item.Description}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(&group).Error; err != nil {
			return nil, fmt.Errorf("seed built-in group %s: %w", item.Slug, err)
		}
		if group.ID == 0 {
			if err := db.Where("slug = ?", item.Slug).First(&group).Error; err != nil {
				return nil, fmt.Errorf("reload built-in group %s: %w", item.Slug, err)
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}
