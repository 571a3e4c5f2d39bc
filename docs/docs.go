// Package docs registers the OpenAPI description served under /swagger. It
// mirrors the swag annotations on the endpoint handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/appointments": {
            "get": {
                "security": [{"BearerAuth": []}, {"SessionToken": []}],
                "description": "Doctors get every appointment, patients only their own",
                "produces": ["application/json"],
                "tags": ["Appointments"],
                "summary": "List appointments",
                "responses": {
                    "200": {"description": "Appointments retrieved", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/util.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}, {"SessionToken": []}],
                "description": "Create a pending appointment for the logged in patient",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Appointments"],
                "summary": "Book an appointment",
                "parameters": [
                    {"description": "Appointment details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/appointment.CreateInput"}}
                ],
                "responses": {
                    "201": {"description": "Appointment created", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "400": {"description": "Missing field or malformed body", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "403": {"description": "Only patients can book", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/util.APIResponse"}}
                }
            }
        },
        "/appointments/{id}": {
            "put": {
                "security": [{"BearerAuth": []}, {"SessionToken": []}],
                "description": "Set the status of an appointment, doctors only",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Appointments"],
                "summary": "Approve or reject an appointment",
                "parameters": [
                    {"type": "string", "description": "Appointment ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/endpoint.updateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Appointment updated", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "403": {"description": "Only doctors can update", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "404": {"description": "Appointment not found", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/util.APIResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Authenticate with email and password and open a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "User login",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/endpoint.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "400": {"description": "Invalid credentials or account locked", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/util.APIResponse"}}
                }
            }
        },
        "/logout": {
            "delete": {
                "security": [{"BearerAuth": []}, {"SessionToken": []}],
                "description": "Invalidate the session token",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "User logout",
                "responses": {
                    "200": {"description": "Logout successful", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "400": {"description": "Session not found", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/util.APIResponse"}}
                }
            }
        },
        "/signup": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Register a patient or doctor account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "User signup",
                "parameters": [
                    {"description": "Signup details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/endpoint.SignupRequest"}}
                ],
                "responses": {
                    "200": {"description": "Signup successful", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "400": {"description": "Invalid request or email already exists", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/util.APIResponse"}}
                }
            }
        },
        "/token/validate": {
            "get": {
                "security": [{"SessionToken": []}],
                "description": "Validate if the session token is valid and not expired",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Validate session token",
                "responses": {
                    "200": {"description": "Valid session token", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "401": {"description": "Invalid or expired session token", "schema": {"$ref": "#/definitions/util.APIResponse"}}
                }
            }
        },
        "/verify-password": {
            "post": {
                "security": [{"BearerAuth": []}, {"SessionToken": []}],
                "description": "Validate the provided password for the authenticated user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Verify current user's password",
                "parameters": [
                    {"description": "Password to verify", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/endpoint.VerifyPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "Password verified", "schema": {"$ref": "#/definitions/util.APIResponse"}},
                    "401": {"description": "Invalid password or unauthorized", "schema": {"$ref": "#/definitions/util.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "appointment.CreateInput": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2024-06-01"},
                "department": {"type": "string", "example": "Cardiology"},
                "doctorName": {"type": "string", "example": "Dr. Smith"},
                "patientName": {"type": "string", "example": "Alice"},
                "timeSlot": {"type": "string", "example": "09:00"}
            }
        },
        "endpoint.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "user@example.com"},
                "password": {"type": "string", "example": "password123"}
            }
        },
        "endpoint.SignupRequest": {
            "type": "object",
            "required": ["email", "name", "password", "role"],
            "properties": {
                "email": {"type": "string", "example": "john@example.com"},
                "name": {"type": "string", "example": "John Doe"},
                "password": {"type": "string", "minLength": 8, "example": "password123"},
                "role": {"type": "string", "enum": ["patient", "doctor"], "example": "patient"}
            }
        },
        "endpoint.VerifyPasswordRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {
                "password": {"type": "string"}
            }
        },
        "endpoint.updateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"], "example": "approved"}
            }
        },
        "util.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "msg": {"type": "string"},
                "success": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "SessionToken": {"type": "apiKey", "name": "session-token", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Medibook API",
	Description:      "Hospital appointment booking: patients request appointments, doctors approve or reject them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
