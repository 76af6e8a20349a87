package registry

import "tech-dispatch/internal/models"

// DefaultTechnicians is the built-in roster around the Bangalore service area.
func DefaultTechnicians() []models.Technician {
	return []models.Technician{
		{Name: "Ravi", Location: models.MustCoordinate(12.9750, 77.6000), Status: models.StatusAvailable},
		{Name: "Kumar", Location: models.MustCoordinate(12.9650, 77.5900), Status: models.StatusAvailable},
		{Name: "Amit", Location: models.MustCoordinate(12.9800, 77.6100), Status: models.StatusBusy},
		{Name: "Suresh", Location: models.MustCoordinate(12.9600, 77.5850), Status: models.StatusAvailable},
	}
}

func NewDefault() *Registry {
	r, err := New(DefaultTechnicians()...)
	if err != nil {
		panic(err)
	}
	return r
}
