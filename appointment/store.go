// Package appointment holds the booking lifecycle: patients create
// appointment requests, doctors review all of them and change their status.
package appointment

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/ariebrainware/medibook/model"
	"github.com/go-playground/validator/v10"
)

// Caller is the authenticated identity an operation runs on behalf of.
// The store trusts it as given.
type Caller struct {
	ID   string
	Role string
}

func (c Caller) IsPatient() bool { return c.Role == model.RolePatient }
func (c Caller) IsDoctor() bool  { return c.Role == model.RoleDoctor }

// CreateInput is the client supplied part of a booking request.
type CreateInput struct {
	Department  string `json:"department" validate:"required" example:"Cardiology"`
	DoctorName  string `json:"doctorName" validate:"required" example:"Dr. Smith"`
	PatientName string `json:"patientName" validate:"required" example:"Alice"`
	Date        string `json:"date" validate:"required" example:"2024-06-01"`
	TimeSlot    string `json:"timeSlot" validate:"required" example:"09:00"`
}

// Repository persists appointment records.
type Repository interface {
	Insert(ctx context.Context, a *model.Appointment) error
	FindAll(ctx context.Context) ([]model.Appointment, error)
	FindByPatient(ctx context.Context, patientID string) ([]model.Appointment, error)
	// FindByID returns ErrRecordNotFound when no record has the id.
	FindByID(ctx context.Context, id string) (model.Appointment, error)
	// UpdateStatus writes the status and refreshes UpdatedAt, nothing else.
	UpdateStatus(ctx context.Context, a *model.Appointment) error
}

type Store struct {
	repo     Repository
	validate *validator.Validate
}

func NewStore(repo Repository) *Store {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Store{repo: repo, validate: v}
}

// AuthorizeCreate returns an authorization error unless caller may book.
// Transports call it before decoding the request body.
func AuthorizeCreate(caller Caller) error {
	if !caller.IsPatient() {
		return authorizationError("only patients can book")
	}
	return nil
}

// AuthorizeUpdate returns an authorization error unless caller may change
// an appointment status.
func AuthorizeUpdate(caller Caller) error {
	if !caller.IsDoctor() {
		return authorizationError("only doctors can update")
	}
	return nil
}

// Create books a new pending appointment owned by the caller. Only patients
// may book; date and time slot are stored as given.
func (s *Store) Create(ctx context.Context, caller Caller, input CreateInput) (model.Appointment, error) {
	if err := AuthorizeCreate(caller); err != nil {
		return model.Appointment{}, err
	}
	if err := s.validateInput(input); err != nil {
		return model.Appointment{}, err
	}

	appt := model.Appointment{
		Department:  input.Department,
		DoctorName:  input.DoctorName,
		PatientName: input.PatientName,
		PatientID:   caller.ID,
		Date:        input.Date,
		TimeSlot:    input.TimeSlot,
		Status:      model.StatusPending,
	}
	if err := s.repo.Insert(ctx, &appt); err != nil {
		if errors.Is(err, model.ErrInvalidStatus) {
			return model.Appointment{}, validationError("invalid status", err)
		}
		return model.Appointment{}, storageError("failed to create appointment", err)
	}
	return appt, nil
}

// List returns every appointment to doctors and only the caller's own
// appointments to anyone else, in insertion order.
func (s *Store) List(ctx context.Context, caller Caller) ([]model.Appointment, error) {
	var (
		appts []model.Appointment
		err   error
	)
	if caller.IsDoctor() {
		appts, err = s.repo.FindAll(ctx)
	} else {
		appts, err = s.repo.FindByPatient(ctx, caller.ID)
	}
	if err != nil {
		return nil, storageError("failed to list appointments", err)
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	return appts, nil
}

// UpdateStatus sets the status of any appointment. Only doctors may call it.
// The current status is not checked, so a decided appointment can be
// decided again.
func (s *Store) UpdateStatus(ctx context.Context, caller Caller, id string, status model.AppointmentStatus) (model.Appointment, error) {
	if err := AuthorizeUpdate(caller); err != nil {
		return model.Appointment{}, err
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return model.Appointment{}, notFoundError("appointment not found")
		}
		return model.Appointment{}, storageError("failed to fetch appointment", err)
	}

	appt.Status = status
	if err := s.repo.UpdateStatus(ctx, &appt); err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidStatus):
			return model.Appointment{}, validationError("invalid status", err)
		case errors.Is(err, ErrRecordNotFound):
			return model.Appointment{}, notFoundError("appointment not found")
		}
		return model.Appointment{}, storageError("failed to update appointment", err)
	}
	return appt, nil
}

func (s *Store) validateInput(input CreateInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return validationError("missing required field: "+verrs[0].Field(), nil)
	}
	return validationError("missing required field", err)
}
