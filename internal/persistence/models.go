package persistence

import "time"

// TechnicianModel represents the technicians table
type TechnicianModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Lat       float64   `gorm:"column:lat;not null"`
	Lon       float64   `gorm:"column:lon;not null"`
	Status    string    `gorm:"column:status;not null;default:'Available'"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TechnicianModel) TableName() string {
	return "technicians"
}
