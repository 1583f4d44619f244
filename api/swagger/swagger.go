package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Registration API",
        "description": "Semester registration, enrollment and rollover service",
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
        {"name": "SemesterRegistrations", "description": "Registration window lifecycle and semester rollover"},
        {"name": "StudentRegistration", "description": "Student self-service enrollment"},
        {"name": "OfferedCourseSections", "description": "Sections, class schedules and rosters"}
    ],
    "paths": {
        "/semester-registrations": {
            "get": {
                "tags": ["SemesterRegistrations"],
                "summary": "List semester registration windows",
                "parameters": [
                    {"name": "academicSemesterId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["UPCOMING", "ONGOING", "ENDED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sortBy", "in": "query", "type": "string"},
                    {"name": "sortOrder", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["SemesterRegistrations"],
                "summary": "Open a semester registration window",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSemesterRegistrationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Active window exists or invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/semester-registrations/{id}": {
            "get": {
                "tags": ["SemesterRegistrations"],
                "summary": "Get a semester registration window",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["SemesterRegistrations"],
                "summary": "Update a window or advance its status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSemesterRegistrationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Illegal status transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["SemesterRegistrations"],
                "summary": "Delete a semester registration window",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Window is referenced", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/semester-registrations/{id}/start-new-semester": {
            "post": {
                "tags": ["SemesterRegistrations"],
                "summary": "Start the academic semester of an ended window",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Rollover report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/semester-registrations/{id}/resume-rollover": {
            "post": {
                "tags": ["SemesterRegistrations"],
                "summary": "Retry materialisation for students a previous rollover missed",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Rollover report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/semester-registrations/start-registration": {
            "post": {
                "tags": ["StudentRegistration"],
                "summary": "Join the ongoing registration window",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/semester-registrations/get-my-registration": {
            "get": {
                "tags": ["StudentRegistration"],
                "summary": "Show the caller's registration in the active window",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/semester-registrations/enroll-into-course": {
            "post": {
                "tags": ["StudentRegistration"],
                "summary": "Enroll into a section of an offered course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Capacity exceeded or already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/semester-registrations/withdraw-from-course": {
            "post": {
                "tags": ["StudentRegistration"],
                "summary": "Withdraw from a section of an offered course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollCourseRequest"}}
                ],
                "responses": {"200": {"description": "Withdrawn", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/semester-registrations/confirm-my-registration": {
            "post": {
                "tags": ["StudentRegistration"],
                "summary": "Confirm the caller's course load",
                "responses": {
                    "200": {"description": "Confirmed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Credits outside the window bounds", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/semester-registrations/get-my-semester-courses": {
            "get": {
                "tags": ["StudentRegistration"],
                "summary": "List offered courses the caller can still take",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/offered-course-sections": {
            "post": {
                "tags": ["OfferedCourseSections"],
                "summary": "Create an offered course section with its class schedules",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOfferedCourseSectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Title or schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/offered-course-sections/{id}/roster": {
            "get": {
                "tags": ["OfferedCourseSections"],
                "summary": "Export the students enrolled in a section",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Roster file"}}
            }
        },
        "/offered-course-class-schedules": {
            "post": {
                "tags": ["OfferedCourseSections"],
                "summary": "Add a class schedule to an existing section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Room or faculty conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateSemesterRegistrationRequest": {
            "type": "object",
            "required": ["academicSemesterId", "startDate", "endDate"],
            "properties": {
                "academicSemesterId": {"type": "string"},
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "minCredit": {"type": "integer"},
                "maxCredit": {"type": "integer"}
            }
        },
        "UpdateSemesterRegistrationRequest": {
            "type": "object",
            "properties": {
                "academicSemesterId": {"type": "string"},
                "status": {"type": "string", "enum": ["UPCOMING", "ONGOING", "ENDED"]},
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "minCredit": {"type": "integer"},
                "maxCredit": {"type": "integer"}
            }
        },
        "EnrollCourseRequest": {
            "type": "object",
            "required": ["offeredCourseId", "offeredCourseSectionId"],
            "properties": {
                "offeredCourseId": {"type": "string"},
                "offeredCourseSectionId": {"type": "string"}
            }
        },
        "ClassScheduleInput": {
            "type": "object",
            "required": ["dayOfWeek", "startTime", "endTime", "roomId", "facultyId"],
            "properties": {
                "dayOfWeek": {"type": "string", "enum": ["SATURDAY", "SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"]},
                "startTime": {"type": "string", "example": "10:00"},
                "endTime": {"type": "string", "example": "11:30"},
                "roomId": {"type": "string"},
                "facultyId": {"type": "string"}
            }
        },
        "CreateOfferedCourseSectionRequest": {
            "type": "object",
            "required": ["offeredCourseId", "title", "maxCapacity"],
            "properties": {
                "offeredCourseId": {"type": "string"},
                "title": {"type": "string"},
                "maxCapacity": {"type": "integer"},
                "classSchedules": {"type": "array", "items": {"$ref": "#/definitions/ClassScheduleInput"}}
            }
        },
        "CreateClassScheduleRequest": {
            "allOf": [
                {"$ref": "#/definitions/ClassScheduleInput"},
                {"type": "object", "required": ["offeredCourseSectionId"], "properties": {"offeredCourseSectionId": {"type": "string"}}}
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ErrorMessage": {
            "type": "object",
            "properties": {
                "path": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "errorMessages": {"type": "array", "items": {"$ref": "#/definitions/ErrorMessage"}},
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
