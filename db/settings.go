package db

import (
	"errors"
	"fmt"

	"github.com/amonks/backlog/data"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSetting returns a stored setting. ok is false if it was never set.
func (db *DB) GetSetting(key string) (value string, ok bool, err error) {
	var s data.Setting
	if err := db.
		Where("key = ?", key).
		Take(&s).
		Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("error getting setting '%s': %w", key, err)
	}
	return s.Value, true, nil
}

// SetSetting stores a setting, replacing any previous value.
func (db *DB) SetSetting(key, value string) error {
	if err := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&data.Setting{Key: key, Value: value}).
		Error; err != nil {
		return fmt.Errorf("error setting '%s': %w", key, err)
	}
	return nil
}

// DeleteSetting forgets a stored setting.
func (db *DB) DeleteSetting(key string) error {
	res := db.Where("key = ?", key).Delete(&data.Setting{})
	if res.Error != nil {
		return fmt.Errorf("error deleting setting '%s': %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error deleting setting '%s': %w", key, ErrNotFound)
	}
	return nil
}

// ListSettings returns every stored setting, ordered by key.
func (db *DB) ListSettings() ([]data.Setting, error) {
	var settings []data.Setting
	if err := db.Order("key").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("error listing settings: %w", err)
	}
	return settings, nil
}
