// Package docs registers the swagger specification served at /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/api/tasks": {
            "get": {
                "description": "Returns every task, most recently created first",
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "List tasks",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Task"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Create a task",
                "parameters": [
                    {"description": "Task draft", "name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.Draft"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks/report": {
            "get": {
                "description": "Total, pending, completed, important and overdue counts",
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Task statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/report.Stats"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Get a task",
                "parameters": [{"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Changes only the fields present in the body",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Update a task",
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.Patch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "parameters": [{"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "error": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/model.FieldError"}}
            }
        },
        "handler.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "model.FieldError": {
            "type": "object",
            "properties": {"field": {"type": "string"}, "message": {"type": "string"}}
        },
        "model.Draft": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "importance": {"type": "string", "enum": ["Normal", "Important"]},
                "status": {"type": "string", "enum": ["Pending", "Completed"]},
                "dueDate": {"type": "string", "example": "2025-01-31"}
            }
        },
        "model.Patch": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "importance": {"type": "string", "enum": ["Normal", "Important"]},
                "status": {"type": "string", "enum": ["Pending", "Completed"]},
                "dueDate": {"type": "string", "example": "2025-01-31"}
            }
        },
        "model.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "importance": {"type": "string", "enum": ["Normal", "Important"]},
                "status": {"type": "string", "enum": ["Pending", "Completed"]},
                "dueDate": {"type": "string", "example": "2025-01-31"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "report.Stats": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "pending": {"type": "integer"},
                "completed": {"type": "integer"},
                "important": {"type": "integer"},
                "overdue": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Notes Task API",
	Description:      "Personal task manager: CRUD over tasks plus a derived report.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
