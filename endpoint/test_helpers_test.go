package endpoint_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariebrainware/medibook/appointment"
	"github.com/ariebrainware/medibook/config"
	"github.com/ariebrainware/medibook/endpoint"
	"github.com/ariebrainware/medibook/middleware"
	"github.com/ariebrainware/medibook/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const apiToken = "test-api-token"

type apiResp struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// requestParams groups HTTP request parameters to reduce function arguments
type requestParams struct {
	method  string
	path    string
	body    []byte
	headers map[string]string
}

func doRequest(r http.Handler, params requestParams) *httptest.ResponseRecorder {
	req := httptest.NewRequest(params.method, params.path, bytes.NewBuffer(params.body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiToken)
	for k, v := range params.headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func authed(token string) map[string]string {
	return map[string]string{"session-token": token}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

// SetupTestServer opens an isolated database, migrates it and returns a router
// wired like the service, minus compression and request logging.
func SetupTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := config.ConnectDatabase()
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}
	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := appointment.NewStore(appointment.NewGormRepository(db))

	r := gin.New()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.ValidateAPIToken(apiToken))
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.AppointmentStore(store))

	r.POST("/signup", endpoint.Signup)
	r.POST("/login", endpoint.Login)
	r.GET("/token/validate", endpoint.ValidateToken)

	auth := r.Group("/")
	auth.Use(middleware.ValidateLoginToken())
	{
		auth.DELETE("/logout", endpoint.Logout)
		auth.POST("/verify-password", endpoint.VerifyPassword)
		auth.POST("/appointments", endpoint.CreateAppointment)
		auth.GET("/appointments", endpoint.ListAppointments)
		auth.PUT("/appointments/:id", endpoint.UpdateAppointmentStatus)
	}
	return r, db
}

type SignupCreds struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type loginData struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
}

func signup(t *testing.T, r http.Handler, creds SignupCreds) *httptest.ResponseRecorder {
	t.Helper()
	body := map[string]string{"name": creds.Name, "email": creds.Email, "password": creds.Password, "role": creds.Role}
	return doRequest(r, requestParams{method: http.MethodPost, path: "/signup", body: mustJSON(t, body)})
}

func login(t *testing.T, r http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := map[string]string{"email": email, "password": password}
	return doRequest(r, requestParams{method: http.MethodPost, path: "/login", body: mustJSON(t, body)})
}

// CreateAndLoginUser signs up and logs in a user and returns the login data.
func CreateAndLoginUser(t *testing.T, r http.Handler, creds SignupCreds) loginData {
	t.Helper()
	if rr := signup(t, r, creds); rr.Code != http.StatusOK {
		t.Fatalf("signup %s returned %d: %s", creds.Email, rr.Code, rr.Body.String())
	}
	rr := login(t, r, creds.Email, creds.Password)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s returned %d: %s", creds.Email, rr.Code, rr.Body.String())
	}
	var data loginData
	ParseData(t, rr, &data)
	return data
}

// ParseAPIResp decodes a standard API response from a ResponseRecorder.
func ParseAPIResp(t *testing.T, rr *httptest.ResponseRecorder) apiResp {
	t.Helper()
	var resp apiResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v; body: %s", err, rr.Body.String())
	}
	return resp
}

// ParseData decodes the data field of a standard API response into dst.
func ParseData(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	resp := ParseAPIResp(t, rr)
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("parse data failed: %v; body: %s", err, rr.Body.String())
	}
}
