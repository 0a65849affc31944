package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DayCloseRepository interface {
	// CreatePeriod inserts an open period. A second open period for the same
	// branch hits the partial unique index and yields ErrPeriodAlreadyOpen.
	CreatePeriod(ctx context.Context, p *model.DayClosePeriod) error
	FindOpen(ctx context.Context, branchID string) (*model.DayClosePeriod, error)
	LockOpen(ctx context.Context, tx *gorm.DB, branchID string) (*model.DayClosePeriod, error)
	FindLatestClosed(ctx context.Context, tx *gorm.DB, branchID string) (*model.DayClosePeriod, error)
	// MarkClosed closes the period only if it is still open and reports
	// whether this call was the one that closed it.
	MarkClosed(ctx context.Context, tx *gorm.DB, id uuid.UUID, closedAt time.Time, summary []byte, note *string) (bool, error)
	DB() *gorm.DB
}

type dayCloseRepo struct{ db *gorm.DB }

func NewDayCloseRepository(db *gorm.DB) DayCloseRepository { return &dayCloseRepo{db: db} }

func (r *dayCloseRepo) DB() *gorm.DB { return r.db }

func (r *dayCloseRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *dayCloseRepo) CreatePeriod(ctx context.Context, p *model.DayClosePeriod) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if isUniqueViolation(err) {
		return model.ErrPeriodAlreadyOpen
	}
	return err
}

func (r *dayCloseRepo) FindOpen(ctx context.Context, branchID string) (*model.DayClosePeriod, error) {
	var p model.DayClosePeriod
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND closed_at IS NULL", branchID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNoOpenPeriod
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *dayCloseRepo) LockOpen(ctx context.Context, tx *gorm.DB, branchID string) (*model.DayClosePeriod, error) {
	var p model.DayClosePeriod
	err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND closed_at IS NULL", branchID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNoOpenPeriod
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *dayCloseRepo) FindLatestClosed(ctx context.Context, tx *gorm.DB, branchID string) (*model.DayClosePeriod, error) {
	var p model.DayClosePeriod
	err := r.conn(ctx, tx).
		Where("branch_id = ? AND closed_at IS NOT NULL", branchID).
		Order("closed_at DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *dayCloseRepo) MarkClosed(ctx context.Context, tx *gorm.DB, id uuid.UUID, closedAt time.Time, summary []byte, note *string) (bool, error) {
	res := r.conn(ctx, tx).Model(&model.DayClosePeriod{}).
		Where("id = ? AND closed_at IS NULL", id).
		Updates(map[string]any{"closed_at": closedAt, "summary": summary, "note": note})
	return res.RowsAffected == 1, res.Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
