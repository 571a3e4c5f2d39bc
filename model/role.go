package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

const (
	RolePatientID uint32 = 1
	RoleDoctorID  uint32 = 2
)

type Role struct {
	ID        uint32    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleIDByName maps a role name accepted at signup to its seeded id.
func RoleIDByName(name string) (uint32, bool) {
	switch name {
	case RolePatient:
		return RolePatientID, true
	case RoleDoctor:
		return RoleDoctorID, true
	}
	return 0, false
}

func SeedRoles(db *gorm.DB) error {
	// Ids are fixed so that signup can assign them without a lookup.
	roles := []Role{
		{ID: RolePatientID, Name: RolePatient},
		{ID: RoleDoctorID, Name: RoleDoctor},
	}

	for _, role := range roles {
		var existingRole Role
		err := db.Where("name = ?", role.Name).First(&existingRole).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}
	return nil
}
