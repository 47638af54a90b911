package kv

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

// Entry is one row of the ledger_entries table.
type Entry struct {
	Key       string         `gorm:"column:entry_key;primaryKey;type:varchar(128)" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Entry) TableName() string { return "ledger_entries" }

type GormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewGormStore migrates ledger_entries and returns a store over it.
func NewGormStore(db *gorm.DB, baseLog *logger.Logger) (*GormStore, error) {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db, log: baseLog.With("repo", "GormStore")}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	var row Entry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(row.Value), true, nil
}

func (s *GormStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	row := &Entry{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(row).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error
}

// Close is a no-op; the connection belongs to db.Service.
func (s *GormStore) Close() error { return nil }
