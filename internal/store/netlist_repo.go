package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NetlistRepository struct {
	db *gorm.DB
}

func NewNetlistRepository(db *gorm.DB) *NetlistRepository {
	return &NetlistRepository{db: db}
}

// Upsert records one extraction attempt. A later run for the same
// (rtl_id, efforts) key replaces the earlier row, keeping the composite key
// unique across reruns.
func (r *NetlistRepository) Upsert(rec *NetlistRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rtl_id"}, {Name: "efforts"}},
		DoUpdates: clause.AssignmentColumns([]string{"graphgen_status", "updated_at"}),
	}).Create(rec).Error
}

func (r *NetlistRepository) Get(rtlID int, efforts string) (*NetlistRecord, error) {
	var rec NetlistRecord
	err := r.db.Where("rtl_id = ? AND efforts = ?", rtlID, efforts).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *NetlistRepository) List() ([]*NetlistRecord, error) {
	var recs []*NetlistRecord
	err := r.db.Order("rtl_id ASC, efforts ASC").Find(&recs).Error
	return recs, err
}

func (r *NetlistRepository) ByRTLID(rtlID int) ([]*NetlistRecord, error) {
	var recs []*NetlistRecord
	err := r.db.Where("rtl_id = ?", rtlID).Order("efforts ASC").Find(&recs).Error
	return recs, err
}
