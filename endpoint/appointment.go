package endpoint

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ariebrainware/medibook/appointment"
	"github.com/ariebrainware/medibook/middleware"
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// Role names change only through a migration, so they are cached per role id.
var roleNames = cache.New(10*time.Minute, 30*time.Minute)

type ListAppointmentsResponse struct {
	Total        int                 `json:"total" example:"1"`
	Appointments []model.Appointment `json:"appointments"`
}

type updateStatusRequest struct {
	Status model.AppointmentStatus `json:"status" example:"approved"`
}

func roleName(db *gorm.DB, roleID uint32) (string, error) {
	key := strconv.FormatUint(uint64(roleID), 10)
	if name, ok := roleNames.Get(key); ok {
		return name.(string), nil
	}
	role, err := fetchRole(db, roleID)
	if err != nil {
		return "", err
	}
	roleNames.SetDefault(key, role.Name)
	return role.Name, nil
}

// resolveCaller builds the appointment caller from the identity set by
// middleware.ValidateLoginToken. An unknown role id yields an empty role,
// which the store treats as neither patient nor doctor.
func resolveCaller(c *gin.Context) (appointment.Caller, bool) {
	userID, okUser := middleware.GetUserID(c)
	roleID, okRole := middleware.GetRoleID(c)
	if !okUser || !okRole {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("identity not found in context"),
		})
		return appointment.Caller{}, false
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return appointment.Caller{}, false
	}

	name, err := roleName(db.WithContext(c.Request.Context()), roleID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to resolve role", Err: err})
		return appointment.Caller{}, false
	}
	return appointment.Caller{ID: strconv.FormatUint(uint64(userID), 10), Role: name}, true
}

func getStoreOrRespond(c *gin.Context) (*appointment.Store, bool) {
	store := middleware.GetStore(c)
	if store == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Appointment store not available",
			Err: fmt.Errorf("store is nil"),
		})
		return nil, false
	}
	return store, true
}

// respondStoreError translates an appointment.Error into the matching response.
func respondStoreError(c *gin.Context, caller appointment.Caller, err error) {
	params := util.APIErrorParams{Msg: err.Error(), Err: err}
	switch appointment.KindOf(err) {
	case appointment.KindAuthorization:
		util.LogUnauthorizedAccess(util.UnauthorizedAccessParams{
			UserID:    caller.ID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Resource:  c.Request.Method + " " + c.FullPath(),
			Reason:    err.Error(),
		})
		util.CallForbidden(c, params)
	case appointment.KindValidation:
		util.CallUserError(c, params)
	case appointment.KindNotFound:
		util.CallErrorNotFound(c, params)
	default:
		util.CallServerError(c, util.APIErrorParams{Msg: "Server error", Err: err})
	}
}

// CreateAppointment godoc
// @Summary      Book an appointment
// @Description  Create a pending appointment for the logged in patient
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     SessionToken
// @Param        request body appointment.CreateInput true "Appointment details"
// @Success      201 {object} util.APIResponse{data=model.Appointment} "Appointment created"
// @Failure      400 {object} util.APIResponse "Missing field or malformed body"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Only patients can book"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointments [post]
func CreateAppointment(c *gin.Context) {
	store, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}

	if err := appointment.AuthorizeCreate(caller); err != nil {
		respondStoreError(c, caller, err)
		return
	}

	var input appointment.CreateInput
	if !bindJSONOrRespond(c, &input, "Invalid request body") {
		return
	}

	appt, err := store.Create(c.Request.Context(), caller, input)
	if err != nil {
		respondStoreError(c, caller, err)
		return
	}
	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Appointment created", Data: appt})
}

// ListAppointments godoc
// @Summary      List appointments
// @Description  Doctors get every appointment, patients only their own
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=ListAppointmentsResponse} "Appointments retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointments [get]
func ListAppointments(c *gin.Context) {
	store, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}

	appts, err := store.List(c.Request.Context(), caller)
	if err != nil {
		respondStoreError(c, caller, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointments retrieved",
		Data: ListAppointmentsResponse{Total: len(appts), Appointments: appts},
	})
}

// UpdateAppointmentStatus godoc
// @Summary      Approve or reject an appointment
// @Description  Set the status of an appointment, doctors only
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     SessionToken
// @Param        id path string true "Appointment ID"
// @Param        request body updateStatusRequest true "New status"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment updated"
// @Failure      400 {object} util.APIResponse "Invalid status"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Only doctors can update"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointments/{id} [put]
func UpdateAppointmentStatus(c *gin.Context) {
	store, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}
	if err := appointment.AuthorizeUpdate(caller); err != nil {
		respondStoreError(c, caller, err)
		return
	}
	id, ok := getIDParam(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	appt, err := store.UpdateStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		respondStoreError(c, caller, err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment updated", Data: appt})
}
