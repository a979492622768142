package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartSnapshotGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartSnapshotGormRepository(db *gorm.DB) *CartSnapshotGormRepository {
	return &CartSnapshotGormRepository{db: db}
}

// キーのスナップショットを取得。無ければErrNotFound。
func (r *CartSnapshotGormRepository) Load(ctx context.Context, key string) (string, error) {
	var snap model.CartSnapshot

	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&snap).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return snap.Data, nil
}

// スナップショットを上書き保存。キーは1セッション1行。
func (r *CartSnapshotGormRepository) Save(ctx context.Context, key string, data string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snap model.CartSnapshot

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			First(&snap).Error

		if err == nil {
			res := tx.Model(&model.CartSnapshot{}).
				Where("key = ?", key).
				Update("data", data)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		newSnap := model.CartSnapshot{
			Key:       key,
			Data:      data,
			UpdatedAt: time.Now(),
		}

		if err := tx.Create(&newSnap).Error; err != nil {
			return err
		}

		return nil
	})
}
