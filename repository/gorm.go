package repository

import (
	"errors"
	"strings"

	"food-ordering-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate creates or updates every table the API uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Menu{},
		&models.Restaurant{},
		&models.Order{},
		&models.OrderStatusChange{},
		&models.Checkout{},
	)
	if err != nil {
		return err
	}
	return backfillSearchText(db)
}

// backfillSearchText fills the search column of rows written before it
// existed; saving runs the model hook that computes it.
func backfillSearchText(db *gorm.DB) error {
	var batch []models.Restaurant
	return db.Where("search_text = ''").
		FindInBatches(&batch, 100, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				if err := db.Omit(clause.Associations).Save(&batch[i]).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
}

// newestFirst is the ordering for every "latest" listing; the ObjectID
// tie-breaker keeps rows created within the same clock tick stable.
const newestFirst = "created_at DESC, id DESC"

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	// drivers without an error translator still say so in the message
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate") {
		return ErrDuplicate
	}
	return err
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// likeEscaper neutralises LIKE wildcards in user input; '!' is used as the
// escape character because backslash means something different per driver.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
