package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/auth"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/idea"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates the schema and the indexes the query paths rely on.
// The DDL sticks to portable statements so tests can run it on sqlite.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&auth.User{},
		&idea.Category{},
		&idea.Idea{},
		&idea.CategoryIdea{},
	); err != nil {
		return err
	}

	// One default category per user.
	if err := gdb.Exec(`create unique index if not exists uq_categories_default
on categories(user_id) where title = 'ALLIDEAS';`).Error; err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_categories_user_title on categories(user_id, title);`,
		`create index if not exists idx_category_ideas_order on category_ideas(category_id, "order");`,
		`create index if not exists idx_category_ideas_idea on category_ideas(idea_id);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
