package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Resultify API",
        "description": "Cohort result aggregation and approval workflow",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Results", "description": "Cohort term reports and the approval workflow"},
        {"name": "Group Options", "description": "Per-set grading configuration"},
        {"name": "Groups", "description": "Officer group assignments"},
        {"name": "Observability", "description": "Service counters"}
    ],
    "parameters": {
        "groupId": {"name": "groupId", "in": "path", "required": true, "type": "string"},
        "set": {"name": "set", "in": "path", "required": true, "type": "integer"},
        "studentSet": {"name": "student_set", "in": "query", "required": true, "type": "integer"},
        "yearSubmitted": {"name": "year_submitted", "in": "query", "required": true, "type": "integer"},
        "semester": {"name": "semester", "in": "query", "required": true, "type": "integer", "enum": [1, 2]},
        "format": {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
        "transition": {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
    },
    "paths": {
        "/grade-systems": {
            "get": {
                "tags": ["Group Options"],
                "summary": "List recognised grade systems",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/officer/groups": {
            "get": {
                "tags": ["Groups"],
                "summary": "Groups assigned to the current officer",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/officer/groups/{groupId}/results": {
            "get": {
                "tags": ["Results"],
                "summary": "Cohort term results for the group officer",
                "parameters": [
                    {"$ref": "#/parameters/groupId"},
                    {"$ref": "#/parameters/studentSet"},
                    {"$ref": "#/parameters/yearSubmitted"},
                    {"$ref": "#/parameters/semester"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Group wasn't assigned to you.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/officer/groups/{groupId}/results/broadsheet": {
            "get": {
                "tags": ["Results"],
                "summary": "Download the cohort broadsheet",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"$ref": "#/parameters/groupId"},
                    {"$ref": "#/parameters/studentSet"},
                    {"$ref": "#/parameters/yearSubmitted"},
                    {"$ref": "#/parameters/semester"},
                    {"$ref": "#/parameters/format"}
                ],
                "responses": {"200": {"description": "Broadsheet file", "schema": {"type": "file"}}}
            }
        },
        "/officer/groups/{groupId}/results/submit": {
            "post": {
                "tags": ["Results"],
                "summary": "Send a fully submitted cohort term for administrator review",
                "parameters": [{"$ref": "#/parameters/groupId"}, {"$ref": "#/parameters/transition"}],
                "responses": {
                    "200": {"description": "Result sent for review", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "You can't submit with pending results.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/officer/groups/{groupId}/results/reject": {
            "post": {
                "tags": ["Results"],
                "summary": "Return one course's submitted results to its lecturer",
                "parameters": [{"$ref": "#/parameters/groupId"}, {"$ref": "#/parameters/transition"}],
                "responses": {"200": {"description": "Result rejected for reanalysis", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/officer/groups/{groupId}/options/{set}": {
            "get": {
                "tags": ["Group Options"],
                "summary": "Get group set options",
                "parameters": [{"$ref": "#/parameters/groupId"}, {"$ref": "#/parameters/set"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Group Options"],
                "summary": "Update group set options",
                "parameters": [
                    {"$ref": "#/parameters/groupId"},
                    {"$ref": "#/parameters/set"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateGroupOptionsRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/metrics": {
            "get": {
                "tags": ["Observability"],
                "summary": "Service counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/groups/{groupId}/results": {
            "get": {
                "tags": ["Results"],
                "summary": "Officer-approved cohort term results",
                "parameters": [
                    {"$ref": "#/parameters/groupId"},
                    {"$ref": "#/parameters/studentSet"},
                    {"$ref": "#/parameters/yearSubmitted"},
                    {"$ref": "#/parameters/semester"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/groups/{groupId}/results/broadsheet": {
            "get": {
                "tags": ["Results"],
                "summary": "Download the officer-approved cohort broadsheet",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"$ref": "#/parameters/groupId"},
                    {"$ref": "#/parameters/studentSet"},
                    {"$ref": "#/parameters/yearSubmitted"},
                    {"$ref": "#/parameters/semester"},
                    {"$ref": "#/parameters/format"}
                ],
                "responses": {"200": {"description": "Broadsheet file", "schema": {"type": "file"}}}
            }
        },
        "/admin/groups/{groupId}/results/approve": {
            "post": {
                "tags": ["Results"],
                "summary": "Finalise an officer-approved cohort term",
                "parameters": [{"$ref": "#/parameters/groupId"}, {"$ref": "#/parameters/transition"}],
                "responses": {
                    "200": {"description": "Result approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "You can't approve with pending results.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/groups/{groupId}/results/reject": {
            "post": {
                "tags": ["Results"],
                "summary": "Send results back to the group officer",
                "parameters": [{"$ref": "#/parameters/groupId"}, {"$ref": "#/parameters/transition"}],
                "responses": {"200": {"description": "Result rejected for reanalysis", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "TransitionRequest": {
            "type": "object",
            "properties": {
                "student_set": {"type": "integer"},
                "year_submitted": {"type": "integer"},
                "semester": {"type": "integer", "enum": [1, 2]},
                "course_id": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["student_set", "year_submitted", "semester"]
        },
        "UpdateGroupOptionsRequest": {
            "type": "object",
            "properties": {
                "grade_system": {"type": "string", "enum": ["5-point", "4-point", "polytechnic"]},
                "levels": {"type": "integer"},
                "reg_cap": {"type": "integer"},
                "reg_norm": {"type": "integer"},
                "reg_min": {"type": "integer"}
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
