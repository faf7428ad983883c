// Package docs holds the OpenAPI description served under /swagger.
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
        "/register": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a new user",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}}
            }
        },
        "/login": {
            "post": {
                "tags": ["Users"],
                "summary": "Log in and receive a JWT",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}}
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness of the service and its dependencies",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/projects": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "List owned projects", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "Create a project", "responses": {"201": {"description": "Created"}}}
        },
        "/projects/{id}/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "List a project's tasks in sequence order",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tasks/{id}/sequence": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Renumbers the project's tasks to 0..n-1 and returns the refreshed order.",
                "tags": ["Tasks"],
                "summary": "Move a task to a new position in its project",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.SequenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SequenceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.SequenceResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.SequenceResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.SequenceResponse"}}
                }
            }
        },
        "/timesheet": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Time Tracking"],
                "summary": "The caller's time entries between two dates",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "handler.RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "name": {"type": "string"}}}
            }
        },
        "handler.SequenceRequest": {
            "type": "object",
            "required": ["project_id", "sequence"],
            "properties": {"project_id": {"type": "integer"}, "sequence": {"type": "integer"}}
        },
        "handler.SequenceRow": {
            "type": "object",
            "properties": {"task_id": {"type": "integer"}, "sequence": {"type": "integer"}, "title": {"type": "string"}}
        },
        "handler.SequenceResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "updated_collection": {"type": "array", "items": {"$ref": "#/definitions/handler.SequenceRow"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Taskboard API",
	Description:      "Projects, ordered tasks and time tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
