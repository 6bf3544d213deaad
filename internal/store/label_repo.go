package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LabelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Upsert stores one model's prediction, replacing an earlier prediction from
// the same model for the same design.
func (r *LabelRepository) Upsert(label *Label) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rtl_id"}, {Name: "model"}},
		DoUpdates: clause.AssignmentColumns([]string{"prediction", "updated_at"}),
	}).Create(label).Error
}

func (r *LabelRepository) ByRTLID(rtlID int) ([]*Label, error) {
	var labels []*Label
	err := r.db.Where("rtl_id = ?", rtlID).Order("model ASC").Find(&labels).Error
	return labels, err
}

// All returns every prediction keyed rtl_id -> model -> prediction.
func (r *LabelRepository) All() (map[int]map[string]string, error) {
	var labels []*Label
	if err := r.db.Find(&labels).Error; err != nil {
		return nil, err
	}
	out := make(map[int]map[string]string)
	for _, l := range labels {
		if out[l.RTLID] == nil {
			out[l.RTLID] = make(map[string]string)
		}
		out[l.RTLID][l.Model] = l.Prediction
	}
	return out, nil
}
