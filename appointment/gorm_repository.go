package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariebrainware/medibook/model"
	"gorm.io/gorm"
)

// GormRepository stores appointments in a SQL database through gorm.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Insert(ctx context.Context, a *model.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *GormRepository) FindAll(ctx context.Context) ([]model.Appointment, error) {
	var appts []model.Appointment
	if err := r.ordered(ctx).Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	return appts, nil
}

func (r *GormRepository) FindByPatient(ctx context.Context, patientID string) ([]model.Appointment, error) {
	var appts []model.Appointment
	if err := r.ordered(ctx).Where("patient_id = ?", patientID).Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("find appointments for patient %s: %w", patientID, err)
	}
	return appts, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (model.Appointment, error) {
	var appt model.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Appointment{}, ErrRecordNotFound
	}
	if err != nil {
		return model.Appointment{}, fmt.Errorf("find appointment %s: %w", id, err)
	}
	return appt, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, a *model.Appointment) error {
	// Selecting the status column keeps every other column untouched;
	// gorm still refreshes updated_at.
	err := r.db.WithContext(ctx).Model(a).Select("status").Updates(a).Error
	if err != nil {
		return fmt.Errorf("update appointment %s status: %w", a.ID, err)
	}
	return nil
}

// ordered sorts by creation time; UUIDv7 ids break ties in insertion order.
func (r *GormRepository) ordered(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC")
}
