package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tech-dispatch/internal/models"
)

// GormTechnicianRepository stores the technician roster. Rows come back in id
// order, which is the registry order used for tie-breaks.
type GormTechnicianRepository struct {
	db *gorm.DB
}

func NewGormTechnicianRepository(db *gorm.DB) *GormTechnicianRepository {
	return &GormTechnicianRepository{db: db}
}

func (r *GormTechnicianRepository) List(ctx context.Context) ([]models.Technician, error) {
	var rows []TechnicianModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}

	techs := make([]models.Technician, 0, len(rows))
	for _, row := range rows {
		t, err := modelToDomain(row)
		if err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	return techs, nil
}

// Seed inserts techs in order. Existing names are an error.
func (r *GormTechnicianRepository) Seed(ctx context.Context, techs []models.Technician) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range techs {
			row := TechnicianModel{
				Name:   t.Name,
				Lat:    t.Location.Lat,
				Lon:    t.Location.Lon,
				Status: string(t.Status),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert technician %s: %w", t.Name, err)
			}
		}
		return nil
	})
}

func (r *GormTechnicianRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&TechnicianModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count technicians: %w", err)
	}
	return n, nil
}

func (r *GormTechnicianRepository) UpdateStatus(ctx context.Context, name string, status models.Status) error {
	res := r.db.WithContext(ctx).
		Model(&TechnicianModel{}).
		Where("name = ?", name).
		Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("failed to update technician %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownTechnician, name)
	}
	return nil
}

func modelToDomain(row TechnicianModel) (models.Technician, error) {
	loc, err := models.NewCoordinate(row.Lat, row.Lon)
	if err != nil {
		return models.Technician{}, fmt.Errorf("technician %s: %w", row.Name, err)
	}
	status, err := models.ParseStatus(row.Status)
	if err != nil {
		return models.Technician{}, fmt.Errorf("technician %s: %w", row.Name, err)
	}
	return models.Technician{Name: row.Name, Location: loc, Status: status}, nil
}
