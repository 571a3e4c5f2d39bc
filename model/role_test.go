package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedRolesCreatesRoles(t *testing.T) {
	db := setupTestDB(t, "role", &Role{})

	if err := SeedRoles(db); err != nil {
		t.Fatalf("SeedRoles returned error: %v", err)
	}

	var roles []Role
	if err := db.Order("id").Find(&roles).Error; err != nil {
		t.Fatalf("failed to list roles: %v", err)
	}
	if assert.Len(t, roles, 2) {
		assert.Equal(t, RolePatientID, roles[0].ID)
		assert.Equal(t, RolePatient, roles[0].Name)
		assert.Equal(t, RoleDoctorID, roles[1].ID)
		assert.Equal(t, RoleDoctor, roles[1].Name)
	}
}

func TestSeedRolesIsIdempotent(t *testing.T) {
	db := setupTestDB(t, "role", &Role{})

	assert.NoError(t, SeedRoles(db))
	assert.NoError(t, SeedRoles(db))

	var count int64
	db.Model(&Role{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestRoleIDByName(t *testing.T) {
	id, ok := RoleIDByName("patient")
	assert.True(t, ok)
	assert.Equal(t, RolePatientID, id)

	id, ok = RoleIDByName("doctor")
	assert.True(t, ok)
	assert.Equal(t, RoleDoctorID, id)

	_, ok = RoleIDByName("Admin")
	assert.False(t, ok)
}
