package store

import "time"

// Synthesis status values for a DesignRecord. Timeout is kept distinct from
// failure so retries can target hung designs specifically.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusTimeout = "timeout"
	StatusFailure = "failure"
)

// DesignRecord is one RTL design keyed by its stable rtl_id. Stage fields are
// populated incrementally; a re-run of a stage overwrites only its own fields.
// The key is the caller-assigned dataset index, which starts at zero, so auto
// increment must stay off or gorm treats rtl_id 0 as unset.
type DesignRecord struct {
	RTLID           int    `gorm:"column:rtl_id;primaryKey;autoIncrement:false"`
	Instruction     string `gorm:"type:text"`
	Description     string `gorm:"type:text"`
	SynthesisStatus string `gorm:"size:16;default:pending"`
	// DataflowStatus is nil until the dataflow stage has run for this design.
	DataflowStatus *bool
	ModuleCount    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DesignRecord) TableName() string {
	return "design_records"
}

// NetlistRecord is one synthesized netlist, keyed by (rtl_id, efforts) where
// efforts is the "generic_mapping_optimization" triple string.
type NetlistRecord struct {
	ID             int    `gorm:"primaryKey;autoIncrement"`
	RTLID          int    `gorm:"column:rtl_id;uniqueIndex:idx_netlist_key"`
	Efforts        string `gorm:"size:32;uniqueIndex:idx_netlist_key"`
	GraphgenStatus bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (NetlistRecord) TableName() string {
	return "netlist_records"
}

// Label is one model's circuit-type prediction for a design.
type Label struct {
	ID         int    `gorm:"primaryKey;autoIncrement"`
	RTLID      int    `gorm:"column:rtl_id;uniqueIndex:idx_label_key"`
	Model      string `gorm:"size:64;uniqueIndex:idx_label_key"`
	Prediction string `gorm:"size:64"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Label) TableName() string {
	return "labels"
}
