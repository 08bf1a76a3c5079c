package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mehfilhq/mehfil/internal/domain"
	"github.com/mehfilhq/mehfil/internal/infra/database/models"
)

type ThoughtRepository struct {
	db *gorm.DB
}

func NewThoughtRepository(db *gorm.DB) *ThoughtRepository {
	return &ThoughtRepository{db: db}
}

func (r *ThoughtRepository) Create(ctx context.Context, thought domain.Thought) error {

	record := models.Thought{
		ID:             thought.ID,
		UserID:         thought.UserID,
		AuthorName:     thought.AuthorName,
		AuthorAvatar:   thought.AuthorAvatar,
		Content:        thought.Content,
		ImageURL:       thought.ImageURL,
		RelatableCount: thought.RelatableCount,
		CDate:          thought.CreatedAt,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&record).Error
	if err != nil {
		return errors.Wrap(err, "ThoughtRepository.Create: insert failed")
	}

	return nil
}

func (r *ThoughtRepository) List(ctx context.Context, limit, offset int) ([]domain.Thought, error) {

	var records []models.Thought
	err := r.db.WithContext(ctx).
		Order("c_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "ThoughtRepository.List: query failed")
	}

	thoughts := make([]domain.Thought, 0, len(records))
	for _, record := range records {
		thoughts = append(thoughts, toDomain(record))
	}

	return thoughts, nil
}

// ToggleReaction flips the reaction row for (thoughtID, userID) and adjusts
// the running counter inside a single transaction. The returned count is
// re-read from the row after the write so the broadcast always carries the
// stored value, not the arithmetic guess.
func (r *ThoughtRepository) ToggleReaction(ctx context.Context, thoughtID, userID string) (int64, error) {

	var count int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var thought models.Thought
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", thoughtID).
			Take(&thought).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "thought"}
			}
			return err
		}

		var reaction models.Reaction
		err = tx.Where("thought_id = ? AND user_id = ?", thoughtID, userID).
			Take(&reaction).Error

		switch {
		case err == nil:
			// toggle off
			if err := tx.Delete(&models.Reaction{}, "thought_id = ? AND user_id = ?", thoughtID, userID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Thought{}).
				Where("id = ?", thoughtID).
				Update("relatable_count", gorm.Expr("GREATEST(relatable_count - 1, 0)")).Error; err != nil {
				return err
			}

		case errors.Is(err, gorm.ErrRecordNotFound):
			// toggle on
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "thought_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).Create(&models.Reaction{
				ThoughtID: thoughtID,
				UserID:    userID,
			}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Thought{}).
				Where("id = ?", thoughtID).
				Update("relatable_count", gorm.Expr("relatable_count + 1")).Error; err != nil {
				return err
			}

		default:
			return err
		}

		var updated models.Thought
		if err := tx.Select("relatable_count").
			Where("id = ?", thoughtID).
			Take(&updated).Error; err != nil {
			return err
		}
		count = updated.RelatableCount

		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, err
		}
		return 0, errors.Wrap(err, "ThoughtRepository.ToggleReaction: transaction failed")
	}

	return count, nil
}

func (r *ThoughtRepository) ReactedThoughtIDs(ctx context.Context, userID string, thoughtIDs []string) ([]string, error) {

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Where("user_id = ? AND thought_id IN ?", userID, thoughtIDs).
		Pluck("thought_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "ThoughtRepository.ReactedThoughtIDs: query failed")
	}

	return ids, nil
}

func toDomain(record models.Thought) domain.Thought {
	return domain.Thought{
		ID:             record.ID,
		UserID:         record.UserID,
		AuthorName:     record.AuthorName,
		AuthorAvatar:   record.AuthorAvatar,
		Content:        record.Content,
		ImageURL:       record.ImageURL,
		RelatableCount: record.RelatableCount,
		CreatedAt:      record.CDate,
	}
}
