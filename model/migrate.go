package model

import (
	"fmt"

	"gorm.io/gorm"
)

// SQLModels lists the tables owned by the SQL database. Appointment is
// included so that the SQL store works without Mongo.
func SQLModels() []interface{} {
	return []interface{}{&Role{}, &User{}, &Session{}, &SecurityLog{}, &Appointment{}}
}

// Migrate creates or updates the SQL schema and seeds the fixed roles.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(SQLModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return SeedRoles(db)
}
