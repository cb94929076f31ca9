package idea

import "time"

// DefaultCategoryTitle names the always-present category holding a user's
// unfiled ideas.
const DefaultCategoryTitle = "ALLIDEAS"

type Category struct {
	ID          uint64  `gorm:"primaryKey"`
	UserID      uint64  `gorm:"index;not null"`
	Title       string  `gorm:"size:255;not null"`
	Description *string `gorm:"type:text"`
	Color       *string `gorm:"size:50"`

	CreatedAt time.Time `gorm:"not null"`
}

// Idea is owned by exactly one user but may appear in several categories.
// Version is the optimistic concurrency token; every write bumps it.
type Idea struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text;not null;default:''"`

	Version uint64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// CategoryIdea binds an idea to a category at a zero-based position.
// The position is scoped to its category: the same idea can sit at
// different spots in different categories.
type CategoryIdea struct {
	CategoryID uint64 `gorm:"primaryKey"`
	IdeaID     uint64 `gorm:"primaryKey"`
	Order      int    `gorm:"not null"`
}

// Entry is an idea joined with one of its memberships.
type Entry struct {
	IdeaID      uint64 `json:"ideaId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  uint64 `json:"categoryId"`
	Order       int    `json:"order"`
}
