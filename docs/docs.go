// Package docs registers the OpenAPI document served under /swagger.
// Keep it in sync with the annotations in cmd/main.go and internal/api.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "https://github.com/guttosm/pricechart",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/guttosm/pricechart",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "description": "Renders the full price file as a striped HTML table",
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "Price table",
                "responses": {
                    "200": {"description": "HTML page", "schema": {"type": "string"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Source unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/chart": {
            "get": {
                "description": "Renders monthly average close, open and volume (millions) as an interactive chart",
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "Monthly chart",
                "responses": {
                    "200": {"description": "HTML page", "schema": {"type": "string"}},
                    "422": {"description": "Missing column", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Source unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/monthly": {
            "get": {
                "description": "Returns monthly average close, open and volume plus a report of dropped rows",
                "produces": ["application/json"],
                "tags": ["monthly"],
                "summary": "Monthly aggregates",
                "parameters": [
                    {"type": "integer", "example": 2020, "description": "First year (inclusive)", "name": "start_year", "in": "query"},
                    {"type": "integer", "example": 2025, "description": "Last year (inclusive)", "name": "end_year", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/dto.MonthlyResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Missing column", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Source unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready if the price file is present",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "open ./data/prices.csv: no such file or directory"},
                "message": {"type": "string", "example": "failed to load source"},
                "timestamp": {"type": "string", "example": "2025-09-20T12:00:00Z"}
            }
        },
        "dto.DropReport": {
            "type": "object",
            "properties": {
                "dropped": {"type": "array", "items": {"$ref": "#/definitions/models.DroppedRecord"}},
                "kept": {"type": "integer", "example": 1498},
                "out_of_range": {"type": "integer", "example": 10},
                "total_rows": {"type": "integer", "example": 1510}
            }
        },
        "dto.MonthlyResponse": {
            "type": "object",
            "properties": {
                "buckets": {"type": "array", "items": {"$ref": "#/definitions/models.MonthlyBucket"}},
                "end_year": {"type": "integer", "example": 2025},
                "report": {"$ref": "#/definitions/dto.DropReport"},
                "series": {"$ref": "#/definitions/dto.SeriesResponse"},
                "start_year": {"type": "integer", "example": 2020}
            }
        },
        "dto.SeriesResponse": {
            "type": "object",
            "properties": {
                "close": {"type": "array", "items": {"$ref": "#/definitions/models.Point"}},
                "open": {"type": "array", "items": {"$ref": "#/definitions/models.Point"}},
                "volume": {"type": "array", "items": {"$ref": "#/definitions/models.Point"}}
            }
        },
        "models.DroppedRecord": {
            "type": "object",
            "properties": {
                "column": {"type": "string"},
                "reason": {"type": "string"},
                "row": {"type": "integer"},
                "value": {"type": "string"}
            }
        },
        "models.MonthlyBucket": {
            "type": "object",
            "properties": {
                "close": {"type": "number"},
                "count": {"type": "integer"},
                "month": {"type": "string"},
                "open": {"type": "number"},
                "scaled_volume": {"type": "number"},
                "volume": {"type": "number"}
            }
        },
        "models.Point": {
            "type": "object",
            "properties": {
                "month": {"type": "string"},
                "value": {"type": "number"}
            }
        }
    },
    "tags": [
        {"description": "HTML table and chart pages", "name": "pages"},
        {"description": "Monthly aggregates of the price file", "name": "monthly"},
        {"description": "Liveness and readiness probes", "name": "health"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "pricechart API",
	Description:      "Price file table, monthly chart and aggregates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
