package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Scheduling Analytics API",
        "description": "Filtering and aggregation service behind the tutoring-center scheduling dashboard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Operator login"},
        {"name": "Analytics", "description": "Filtered aggregations and KPI summaries"},
        {"name": "Dashboard", "description": "Composed dashboard payloads"},
        {"name": "Datasets", "description": "Dataset lifecycle"},
        {"name": "Exports", "description": "CSV/PDF report rendering"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate operator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/aggregations": {
            "get": {
                "tags": ["Analytics"],
                "summary": "List registered aggregation names",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/aggregations/{name}": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Run a named aggregation over the filtered dataset",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "start_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "end_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "tutor_ids", "in": "query", "type": "string", "description": "Comma separated tutor IDs"},
                    {"name": "course_ids", "in": "query", "type": "string", "description": "Comma separated course IDs"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "booking_type", "in": "query", "type": "string"},
                    {"name": "confirmation_status", "in": "query", "type": "string"},
                    {"name": "duration", "in": "query", "type": "string", "description": "Hours: exact (2), range (1-2) or minimum (4+)"},
                    {"name": "day_type", "in": "query", "type": "string", "enum": ["all", "weekday", "weekend"]},
                    {"name": "shift_start_hour", "in": "query", "type": "integer", "minimum": 0, "maximum": 23},
                    {"name": "shift_end_hour", "in": "query", "type": "integer", "minimum": 0, "maximum": 23}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown aggregation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Dataset unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/summary": {
            "get": {
                "tags": ["Analytics"],
                "summary": "KPI summary over the filtered dataset",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Dataset unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Instrumentation snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/reload": {
            "post": {
                "tags": ["Datasets"],
                "summary": "Reload the dataset and drop derived caches",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/overview": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Composed dashboard payload",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Dataset unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/aggregations/{name}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Render an aggregation to CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered file"},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown aggregation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/archive/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an archived export by token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Archived file"},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LabeledValue": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "value": {"type": "number"}
            }
        },
        "Summary": {
            "type": "object",
            "properties": {
                "total_appointments": {"type": "integer"},
                "total_hours": {"type": "number"},
                "active_tutors": {"type": "integer"},
                "active_courses": {"type": "integer"},
                "average_duration_hours": {"type": "number"}
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
