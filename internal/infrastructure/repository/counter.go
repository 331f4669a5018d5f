package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nextCounterValue locks the (performer, year) counter row, increments it
// and returns the new value, creating the row on first use. Must run inside
// a transaction; the row lock serializes concurrent callers so the sequence
// stays gapless.
func nextCounterValue(tx *gorm.DB, performerID uuid.UUID, year int) (int, error) {
	var counter entity.ProgressiveCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("performer_id = ? AND year = ?", performerID, year).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = entity.ProgressiveCounter{
			PerformerID: performerID,
			Year:        year,
			LastValue:   1,
		}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	counter.LastValue++
	if err := tx.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastValue, nil
}
