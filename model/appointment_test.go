package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppointment(patientID string) Appointment {
	return Appointment{
		Department:  "Cardiology",
		DoctorName:  "Dr. Smith",
		PatientName: "Alice",
		PatientID:   patientID,
		Date:        "2024-06-01",
		TimeSlot:    "09:00",
	}
}

func TestAppointmentStatus_Valid(t *testing.T) {
	tests := []struct {
		status AppointmentStatus
		valid  bool
	}{
		{StatusPending, true},
		{StatusApproved, true},
		{StatusRejected, true},
		{"", false},
		{"cancelled", false},
		{"Approved", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
		})
	}
}

func TestAppointmentModel_CreateDefaults(t *testing.T) {
	db := setupTestDB(t, "appointment", &Appointment{})

	appt := newAppointment("p1")
	require.NoError(t, db.Create(&appt).Error)

	_, err := uuid.Parse(appt.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, appt.Status)
	assert.False(t, appt.CreatedAt.IsZero())
	assert.False(t, appt.UpdatedAt.IsZero())

	var found Appointment
	require.NoError(t, db.First(&found, "id = ?", appt.ID).Error)
	assert.Equal(t, "p1", found.PatientID)
	assert.Equal(t, StatusPending, found.Status)
}

func TestAppointmentModel_CreateRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t, "appointment", &Appointment{})

	appt := newAppointment("p1")
	appt.Status = "cancelled"
	err := db.Create(&appt).Error
	assert.True(t, errors.Is(err, ErrInvalidStatus))

	var count int64
	db.Model(&Appointment{}).Count(&count)
	assert.Zero(t, count)
}

func TestAppointmentModel_StatusUpdateTouchesOnlyStatus(t *testing.T) {
	db := setupTestDB(t, "appointment", &Appointment{})

	appt := newAppointment("p1")
	require.NoError(t, db.Create(&appt).Error)
	before := appt
	time.Sleep(5 * time.Millisecond)

	appt.Status = StatusApproved
	appt.DoctorName = "Dr. Who"
	require.NoError(t, db.Model(&appt).Select("status").Updates(&appt).Error)

	var found Appointment
	require.NoError(t, db.First(&found, "id = ?", appt.ID).Error)
	assert.Equal(t, StatusApproved, found.Status)
	assert.Equal(t, before.DoctorName, found.DoctorName)
	assert.True(t, found.UpdatedAt.After(before.UpdatedAt))
	assert.True(t, found.CreatedAt.Equal(before.CreatedAt))
}

func TestAppointmentModel_UpdateRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t, "appointment", &Appointment{})

	appt := newAppointment("p1")
	require.NoError(t, db.Create(&appt).Error)

	appt.Status = "done"
	err := db.Model(&appt).Select("status").Updates(&appt).Error
	assert.ErrorIs(t, err, ErrInvalidStatus)

	var found Appointment
	require.NoError(t, db.First(&found, "id = ?", appt.ID).Error)
	assert.Equal(t, StatusPending, found.Status)
}

func TestAppointmentPrepareInsert_IDsSortInCreationOrder(t *testing.T) {
	var prev string
	for i := 0; i < 100; i++ {
		appt := newAppointment("p1")
		appt.PrepareInsert()

		parsed, err := uuid.Parse(appt.ID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
		if prev != "" {
			assert.Less(t, prev, appt.ID, "id %d", i)
		}
		prev = appt.ID
	}
}

func TestAppointmentModel_FreeTextColumnsAreUnbounded(t *testing.T) {
	db := setupTestDB(t, "appointment_text", &Appointment{})

	cols, err := db.Migrator().ColumnTypes(&Appointment{})
	require.NoError(t, err)
	types := map[string]string{}
	for _, col := range cols {
		types[col.Name()] = strings.ToLower(col.DatabaseTypeName())
	}
	for _, name := range []string{"department", "doctor_name", "patient_name", "date", "time_slot"} {
		assert.Equal(t, "text", types[name], name)
	}

	long := strings.Repeat("x", 500)
	appt := Appointment{Department: long, DoctorName: long, PatientName: long, PatientID: "p1", Date: long, TimeSlot: long}
	require.NoError(t, db.Create(&appt).Error)

	var found Appointment
	require.NoError(t, db.First(&found, "id = ?", appt.ID).Error)
	assert.Equal(t, long, found.Department)
	assert.Equal(t, long, found.Date)
	assert.Equal(t, long, found.TimeSlot)
}
