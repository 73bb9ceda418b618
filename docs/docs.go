// Package docs registers the OpenAPI document served under /swagger.
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
        "/check-job-status": {
            "post": {
                "security": [{"FunctionKey": []}],
                "description": "Polls a job until it is terminal or the poll budget is spent",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Jobs"],
                "summary": "Check Job Status",
                "parameters": [
                    {"description": "Job id", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CheckJobStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CheckJobStatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Job not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/content-protection-token": {
            "get": {
                "description": "Issues a short-lived HS256 token for license acquisition",
                "produces": ["application/json"],
                "tags": ["Token"],
                "summary": "Content Protection Token",
                "responses": {
                    "200": {"description": "Signed token", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.InternalErrorResponse"}}
                }
            },
            "post": {
                "description": "Issues a short-lived HS256 token for license acquisition",
                "produces": ["application/json"],
                "tags": ["Token"],
                "summary": "Content Protection Token",
                "responses": {
                    "200": {"description": "Signed token", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.InternalErrorResponse"}}
                }
            }
        },
        "/import-external": {
            "post": {
                "security": [{"FunctionKey": []}],
                "description": "Starts an asynchronous copy of an http(s) or s3 source into the staging container",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Ingest"],
                "summary": "Import External",
                "parameters": [
                    {"description": "Source url and reference id", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ImportExternalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.IngestResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.InternalErrorResponse"}}
                }
            }
        },
        "/ingest/upload": {
            "post": {
                "security": [{"FunctionKey": []}],
                "description": "Stores an uploaded file in the staging container",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Ingest"],
                "summary": "Direct Upload",
                "parameters": [
                    {"type": "file", "description": "Source file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Reference id used in the staging name", "name": "id", "in": "formData"},
                    {"type": "string", "description": "Expected sha256 of the file", "name": "sha256", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.IngestResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.InternalErrorResponse"}}
                }
            }
        },
        "/submit-job": {
            "post": {
                "security": [{"FunctionKey": []}],
                "description": "Submits a single-task encoding job for an existing asset",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Jobs"],
                "summary": "Submit Job",
                "parameters": [
                    {"description": "Asset id and encoder preset", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.EncodeJobRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.EncodeJobResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.InternalErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CheckJobStatusRequest": {
            "type": "object",
            "properties": {
                "ExtendedInfo": {"type": "boolean"},
                "JobId": {"type": "string"}
            }
        },
        "dto.CheckJobStatusResponse": {
            "type": "object",
            "properties": {
                "ExtendedInfo": {"$ref": "#/definitions/dto.ExtendedInfo"},
                "endTime": {"type": "string"},
                "errorText": {"type": "string"},
                "isRunning": {"type": "boolean"},
                "isSuccessful": {"type": "boolean"},
                "jobState": {"type": "string"},
                "runningDuration": {"type": "string"},
                "startTime": {"type": "string"}
            }
        },
        "dto.EncodeJobRequest": {
            "type": "object",
            "properties": {
                "AssetId": {"type": "string"},
                "MesPreset": {"type": "string"}
            }
        },
        "dto.EncodeJobResponse": {
            "type": "object",
            "properties": {
                "FaceDetection": {"$ref": "#/definitions/dto.TaskOutput"},
                "FaceRedaction": {"$ref": "#/definitions/dto.TaskOutput"},
                "Hyperlapse": {"$ref": "#/definitions/dto.TaskOutput"},
                "IndexV1": {"$ref": "#/definitions/dto.TaskOutput"},
                "IndexV2": {"$ref": "#/definitions/dto.TaskOutput"},
                "JobId": {"type": "string"},
                "Mepw": {"$ref": "#/definitions/dto.TaskOutput"},
                "Mes": {"$ref": "#/definitions/dto.TaskOutput"},
                "MotionDetection": {"$ref": "#/definitions/dto.TaskOutput"},
                "Ocr": {"$ref": "#/definitions/dto.TaskOutput"},
                "OtherJobsQueue": {"type": "integer"},
                "Summarization": {"$ref": "#/definitions/dto.TaskOutput"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "dto.ExtendedInfo": {
            "type": "object",
            "properties": {
                "AmsRESTAPIEndpoint": {"type": "string"},
                "MediaUnitNumber": {"type": "integer"},
                "MediaUnitSize": {"type": "string"},
                "OtherJobsProcessing": {"type": "integer"},
                "OtherJobsQueue": {"type": "integer"},
                "OtherJobsScheduled": {"type": "integer"}
            }
        },
        "dto.ImportExternalRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "dto.IngestResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            }
        },
        "dto.InternalErrorResponse": {
            "type": "object",
            "properties": {
                "Error": {"type": "string"}
            }
        },
        "dto.TaskOutput": {
            "type": "object",
            "properties": {
                "AssetId": {"type": "string"},
                "TaskId": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "FunctionKey": {"type": "apiKey", "name": "x-functions-key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Media Pipeline API",
	Description:      "Ingest, encode, protect and publish pipeline over a managed media service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
