package idea

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")

	// ErrNotOwned marks a reorder item (or target category) with no
	// membership in any category of the acting user.
	ErrNotOwned = errors.New("idea not owned")

	// ErrNotMember marks an order-list item that is not currently a member
	// of the target category. Ordering never inserts.
	ErrNotMember = errors.New("idea not in category")

	// ErrDefaultCategoryMissing means provisioning failed at account
	// creation. It is a server-side invariant violation, never repaired
	// here because that would mask the provisioning bug.
	ErrDefaultCategoryMissing = errors.New("default category missing")

	ErrInvalidTitle = errors.New("invalid category title")
)

// Store owns the ordered relationship between a user's categories and
// their ideas. Every operation is scoped to the acting user's id.
type Store struct {
	DB *gorm.DB
}

const entryColumns = `category_ideas.idea_id, ideas.title, ideas.description, category_ideas.category_id, category_ideas."order"`

// List returns the user's default-category ideas in position order.
func (s *Store) List(ctx context.Context, userID uint64) ([]Entry, error) {
	cat, err := s.defaultCategory(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	return s.entriesIn(ctx, cat.ID)
}

// ListInCategory returns the ideas of one explicit category, which must
// belong to the acting user.
func (s *Store) ListInCategory(ctx context.Context, userID, categoryID uint64) ([]Entry, error) {
	var cat Category
	if err := s.DB.WithContext(ctx).First(&cat, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if cat.UserID != userID {
		return nil, ErrForbidden
	}
	return s.entriesIn(ctx, cat.ID)
}

func (s *Store) entriesIn(ctx context.Context, categoryID uint64) ([]Entry, error) {
	entries := []Entry{}
	err := s.DB.WithContext(ctx).
		Table("category_ideas").
		Select(entryColumns).
		Joins("join ideas on ideas.id = category_ideas.idea_id").
		Where("category_ideas.category_id = ?", categoryID).
		Order(`category_ideas."order" asc`).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns the idea plus the membership that joins it to a category
// owned by the user. An idea with no such membership is invisible.
func (s *Store) Get(ctx context.Context, userID, ideaID uint64) (Entry, error) {
	var e Entry
	res := s.DB.WithContext(ctx).
		Table("category_ideas").
		Select(entryColumns).
		Joins("join ideas on ideas.id = category_ideas.idea_id").
		Joins("join categories on categories.id = category_ideas.category_id").
		Where("category_ideas.idea_id = ? AND categories.user_id = ?", ideaID, userID).
		Order("category_ideas.category_id asc").
		Limit(1).
		Scan(&e)
	if res.Error != nil {
		return Entry{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Create inserts the idea and its tail membership in the default category
// as one unit. Both rows commit or neither does.
func (s *Store) Create(ctx context.Context, userID uint64, title, description string) (Entry, error) {
	var e Entry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat, err := s.defaultCategory(tx, userID)
		if err != nil {
			return err
		}

		i := Idea{UserID: userID, Title: title, Description: description}
		if err := tx.Create(&i).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&CategoryIdea{}).Where("category_id = ?", cat.ID).Count(&count).Error; err != nil {
			return err
		}

		m := CategoryIdea{CategoryID: cat.ID, IdeaID: i.ID, Order: int(count)}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		e = Entry{IdeaID: i.ID, Title: i.Title, Description: i.Description, CategoryID: cat.ID, Order: m.Order}
		return nil
	})
	return e, err
}

// Update replaces title and description. The write is guarded by the
// version read in the same transaction: a row changed underneath us is a
// conflict, a row that vanished is not found.
func (s *Store) Update(ctx context.Context, userID, ideaID uint64, title, description string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur Idea
		if err := tx.Where("id = ? AND user_id = ?", ideaID, userID).First(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return applyUpdate(tx, ideaID, title, description, cur.Version)
	})
}

// applyUpdate writes the replacement fields expecting the given version.
func applyUpdate(tx *gorm.DB, ideaID uint64, title, description string, expected uint64) error {
	res := tx.Model(&Idea{}).
		Where("id = ? AND version = ?", ideaID, expected).
		Updates(map[string]any{
			"title":       title,
			"description": description,
			"version":     expected + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a stale version from a deleted row.
		var n int64
		if err := tx.Model(&Idea{}).Where("id = ?", ideaID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// Delete removes the idea and every membership pointing at it, in any
// category, atomically.
func (s *Store) Delete(ctx context.Context, userID, ideaID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var i Idea
		if err := tx.Where("id = ? AND user_id = ?", ideaID, userID).First(&i).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("idea_id = ?", ideaID).Delete(&CategoryIdea{}).Error; err != nil {
			return err
		}
		return tx.Delete(&i).Error
	})
}

type OrderPair struct {
	IdeaID uint64 `json:"ideaId"`
	Order  int    `json:"order"`
}

// Reorder applies the submitted positions as one unit. Any pair whose idea
// has no membership in a category of the user aborts the whole batch.
// Positions are persisted verbatim; callers are expected to send a full
// permutation.
func (s *Store) Reorder(ctx context.Context, userID uint64, pairs []OrderPair) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range pairs {
			var m CategoryIdea
			err := tx.Model(&CategoryIdea{}).
				Select("category_ideas.*").
				Joins("join categories on categories.id = category_ideas.category_id").
				Where("category_ideas.idea_id = ? AND categories.user_id = ?", p.IdeaID, userID).
				Order("category_ideas.category_id asc").
				First(&m).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotOwned
				}
				return err
			}

			err = tx.Model(&CategoryIdea{}).
				Where("category_id = ? AND idea_id = ?", m.CategoryID, m.IdeaID).
				Update("order", p.Order).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SetCategoryOrder rewrites one category's ordering from a position-indexed
// id list. Every id must already be a member; ordering never inserts.
func (s *Store) SetCategoryOrder(ctx context.Context, userID, categoryID uint64, ideaIDs []uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat Category
		if err := tx.First(&cat, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotOwned
			}
			return err
		}
		if cat.UserID != userID {
			return ErrNotOwned
		}

		for i, id := range ideaIDs {
			res := tx.Model(&CategoryIdea{}).
				Where("category_id = ? AND idea_id = ?", categoryID, id).
				Update("order", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotMember
			}
		}
		return nil
	})
}

// CreateCategory adds a user category. The default title is reserved for
// account provisioning.
func (s *Store) CreateCategory(ctx context.Context, userID uint64, title string, description, color *string) (Category, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 255 {
		return Category{}, ErrInvalidTitle
	}
	if title == DefaultCategoryTitle {
		return Category{}, ErrConflict
	}

	cat := Category{UserID: userID, Title: title, Description: description, Color: color}
	if err := s.DB.WithContext(ctx).Create(&cat).Error; err != nil {
		return Category{}, err
	}
	return cat, nil
}

// DeleteCategory removes a user category and its memberships. The default
// category cannot be deleted.
func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat Category
		if err := tx.First(&cat, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if cat.UserID != userID {
			return ErrForbidden
		}
		if cat.Title == DefaultCategoryTitle {
			return ErrForbidden
		}
		if err := tx.Where("category_id = ?", cat.ID).Delete(&CategoryIdea{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
}

func (s *Store) defaultCategory(tx *gorm.DB, userID uint64) (Category, error) {
	var cat Category
	err := tx.Where("user_id = ? AND title = ?", userID, DefaultCategoryTitle).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Category{}, ErrDefaultCategoryMissing
		}
		return Category{}, err
	}
	return cat, nil
}
