package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DesignRepository struct {
	db *gorm.DB
}

func NewDesignRepository(db *gorm.DB) *DesignRepository {
	return &DesignRepository{db: db}
}

// Ensure creates the record if absent, preserving existing stage fields when
// the source adapter is re-run over the same dataset.
func (r *DesignRepository) Ensure(rec *DesignRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rtl_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"instruction", "description", "module_count"}),
	}).Create(rec).Error
}

func (r *DesignRepository) Get(rtlID int) (*DesignRecord, error) {
	var rec DesignRecord
	err := r.db.Where("rtl_id = ?", rtlID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DesignRepository) List() ([]*DesignRecord, error) {
	var recs []*DesignRecord
	err := r.db.Order("rtl_id ASC").Find(&recs).Error
	return recs, err
}

// SetSynthesisStatus overwrites only the synthesis field, creating a stub
// record when the design was never registered.
func (r *DesignRepository) SetSynthesisStatus(rtlID int, status string) error {
	res := r.db.Model(&DesignRecord{}).Where("rtl_id = ?", rtlID).Update("synthesis_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.Create(&DesignRecord{RTLID: rtlID, SynthesisStatus: status}).Error
	}
	return nil
}

// SetDataflowStatus overwrites only the dataflow field.
func (r *DesignRepository) SetDataflowStatus(rtlID int, ok bool) error {
	res := r.db.Model(&DesignRecord{}).Where("rtl_id = ?", rtlID).Update("dataflow_status", ok)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.Create(&DesignRecord{RTLID: rtlID, SynthesisStatus: StatusPending, DataflowStatus: &ok}).Error
	}
	return nil
}

// SetDescription fills the generated description for a design.
func (r *DesignRepository) SetDescription(rtlID int, description string) error {
	return r.db.Model(&DesignRecord{}).Where("rtl_id = ?", rtlID).Update("description", description).Error
}
