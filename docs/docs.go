// Package docs registers the OpenAPI description of the catalog API with swag.
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
        "/healthcheck": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Report service status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/catalog": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Show the catalog state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.State"}}}
            }
        },
        "/catalog/search": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Set the search term",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SearchRequestBody"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/catalog/draft": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Update the create form draft",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateBookRequestBody"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/catalog/form": {
            "post": {
                "tags": ["catalog"],
                "summary": "Open the create form",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["catalog"],
                "summary": "Close the create form, keeping the draft",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/catalog/refresh": {
            "post": {
                "tags": ["catalog"],
                "summary": "Reload the books table",
                "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/catalog/alert": {
            "delete": {
                "tags": ["catalog"],
                "summary": "Dismiss the current alert",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/books": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List books matching the search term",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Create a book from the body or the stored draft",
                "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/dto.CreateBookRequestBody"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "422": {"description": "Unprocessable Entity"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/books/{bookId}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Delete a book",
                "parameters": [
                    {"type": "integer", "name": "bookId", "in": "path", "required": true},
                    {"type": "boolean", "name": "confirm", "in": "query", "description": "must be true for the deletion to happen"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/books/{bookId}/status": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Toggle the loan status of a book",
                "parameters": [
                    {"type": "integer", "name": "bookId", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ToggleStatusRequestBody"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}, "502": {"description": "Bad Gateway"}}
            }
        }
    },
    "definitions": {
        "data.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "created_at": {"type": "string"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "cover_url": {"type": "string"},
                "status": {"type": "string", "enum": ["available", "borrowed"]}
            }
        },
        "data.Draft": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"}
            }
        },
        "service.State": {
            "type": "object",
            "properties": {
                "books": {"type": "array", "items": {"$ref": "#/definitions/data.Book"}},
                "total": {"type": "integer"},
                "loading": {"type": "boolean"},
                "search_term": {"type": "string"},
                "draft": {"$ref": "#/definitions/data.Draft"},
                "create_form_open": {"type": "boolean"},
                "alert": {"type": "string"}
            }
        },
        "dto.CreateBookRequestBody": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"}
            }
        },
        "dto.ToggleStatusRequestBody": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["available", "borrowed"]}
            }
        },
        "dto.SearchRequestBody": {
            "type": "object",
            "properties": {
                "term": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "ProLibrary catalog API",
	Description:      "Manage a small library catalog stored in a hosted books table.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
