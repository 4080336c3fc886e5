package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "College Registry API",
        "description": "Role-constrained membership and course offering registry",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Persons", "description": "Person records and role flags"},
        {"name": "Roles", "description": "Lecturer, student, graduate and researcher assignment"},
        {"name": "Organisation", "description": "Colleges, departments and courses"},
        {"name": "Degrees", "description": "Degree catalogue"},
        {"name": "Grants", "description": "Research grants and support"},
        {"name": "Sessions", "description": "Course offering sessions, roster and archive"},
        {"name": "Transcripts", "description": "Student transcripts and exports"},
        {"name": "Audit", "description": "Mutation audit trail"}
    ],
    "paths": {
        "/persons": {
            "get": {
                "tags": ["Persons"],
                "summary": "List persons",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Persons"],
                "summary": "Create a person",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate registration number"}
                }
            }
        },
        "/persons/{regNo}": {
            "get": {
                "tags": ["Persons"],
                "summary": "Get a person with role flags",
                "parameters": [
                    {"name": "regNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Persons"],
                "summary": "Update a person",
                "parameters": [
                    {"name": "regNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Stale version or frozen category"}
                }
            },
            "delete": {
                "tags": ["Persons"],
                "summary": "Delete a person and dependent role records",
                "parameters": [
                    {"name": "regNo", "in": "path", "required": true, "type": "string"},
                    {"name": "version", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Stale version"}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions with temporal classification",
                "parameters": [
                    {"name": "courseCode", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "quarter", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Create a session",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Future year or malformed session"}
                }
            }
        },
        "/sessions/{id}/promote": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Promote a session onto the current roster",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Session is not in the current period"}
                }
            }
        },
        "/sessions/{id}/archive": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Archive a historical session with a final grade",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Session is not historical or grade missing"}
                }
            }
        },
        "/students/{id}/transcript/export": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Export a student transcript as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Document"},
                    "404": {"description": "Student not found"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
