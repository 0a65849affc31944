package repository

import (
	"context"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository is the Postgres sequence store. Each key is one
// INSERT ... ON CONFLICT DO UPDATE ... RETURNING statement, so concurrent
// callers on the same key are serialized by the row lock Postgres takes and
// hold it until their transaction ends.
type CounterRepository interface {
	// Increment advances every key inside tx, or inside its own transaction
	// when tx is nil.
	Increment(ctx context.Context, tx *gorm.DB, keys ...string) ([]int64, error)
	Current(ctx context.Context, key string) (int64, error)
}

type counterRepo struct{ db *gorm.DB }

func NewCounterRepository(db *gorm.DB) CounterRepository { return &counterRepo{db: db} }

func (r *counterRepo) Increment(ctx context.Context, tx *gorm.DB, keys ...string) ([]int64, error) {
	if tx == nil {
		var out []int64
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			out, err = r.increment(tx, keys)
			return err
		})
		return out, err
	}
	return r.increment(tx.WithContext(ctx), keys)
}

func (r *counterRepo) increment(tx *gorm.DB, keys []string) ([]int64, error) {
	out := make([]int64, len(keys))
	for i, key := range keys {
		c := model.SequenceCounter{Key: key, Value: 1}
		err := tx.Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "key"}},
				DoUpdates: clause.Assignments(map[string]any{
					"value":      gorm.Expr("sequence_counters.value + 1"),
					"updated_at": gorm.Expr("now()"),
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "value"}}},
		).Create(&c).Error
		if err != nil {
			return nil, err
		}
		out[i] = c.Value
	}
	return out, nil
}

// Current returns the last issued value for key, 0 if none was issued.
func (r *counterRepo) Current(ctx context.Context, key string) (int64, error) {
	var v int64
	err := r.db.WithContext(ctx).Model(&model.SequenceCounter{}).
		Select("COALESCE(MAX(value), 0)").Where("key = ?", key).Scan(&v).Error
	return v, err
}
