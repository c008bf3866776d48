// Package docs is generated by swaggo/swag from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/process": {
            "post": {
                "description": "Accepts any combination of audio, image and text files plus a prompt. Reuses session_id when it exists, otherwise creates a session.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Generate a learning bundle",
                "parameters": [
                    {"type": "file", "description": "Lecture audio (wav, flac, ogg, webm, mp3)", "name": "audio", "in": "formData"},
                    {"type": "file", "description": "Slide or diagram image", "name": "image", "in": "formData"},
                    {"type": "file", "description": "Plain-text notes", "name": "text", "in": "formData"},
                    {"type": "string", "description": "Free-form prompt", "name": "prompt", "in": "formData"},
                    {"type": "string", "description": "Existing session to attach", "name": "session_id", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProcessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/quiz-complete": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Record a quiz score",
                "parameters": [
                    {"description": "Quiz result", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.QuizCompleteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProgressUpdateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/flashcard-review": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Record a flashcard review",
                "parameters": [
                    {"description": "Review", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.FlashcardReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProgressUpdateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/study-time": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Add study time",
                "parameters": [
                    {"description": "Study time", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.StudyTimeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProgressUpdateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/update-progress": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Apply a progress action",
                "parameters": [
                    {"description": "Action", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateProgressRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProgressUpdateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/progress/{session_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Get the session record",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProgressResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/analytics/{session_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Get session analytics",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Analytics"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/preferences": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Store learner preferences",
                "parameters": [
                    {"description": "Preferences", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PreferencesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/preferences/{session_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Get learner preferences",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PreferencesResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Analytics": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "total_quizzes": {"type": "integer"},
                "average_quiz_score": {"type": "number"},
                "total_flashcard_reviews": {"type": "integer"},
                "cards_reviewed": {"type": "integer"},
                "flashcard_accuracy": {"type": "number"},
                "study_time_seconds": {"type": "integer"},
                "completed_modules": {"type": "integer"},
                "streak_days": {"type": "integer"},
                "last_activity": {"type": "string"}
            }
        },
        "domain.Flashcard": {
            "type": "object",
            "properties": {
                "front": {"type": "string"},
                "back": {"type": "string"},
                "category": {"type": "string"}
            }
        },
        "domain.FlashcardRecord": {
            "type": "object",
            "properties": {
                "correct_count": {"type": "integer"},
                "incorrect_count": {"type": "integer"},
                "last_reviewed": {"type": "string"}
            }
        },
        "domain.LearningBundle": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "summary": {"type": "string"},
                "learning_objectives": {"type": "array", "items": {"type": "string"}},
                "key_concepts": {"type": "array", "items": {"type": "string"}},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/domain.Question"}},
                "flashcards": {"type": "array", "items": {"$ref": "#/definitions/domain.Flashcard"}},
                "difficulty_level": {"type": "string"}
            }
        },
        "domain.Question": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "options": {"type": "array", "items": {"type": "string"}},
                "correct_option": {"type": "integer"},
                "explanation": {"type": "string"},
                "bloom_level": {"type": "string"}
            }
        },
        "domain.Session": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "created_at": {"type": "string"},
                "last_activity": {"type": "string"},
                "quiz_scores": {"type": "object", "additionalProperties": {"type": "number"}},
                "flashcard_progress": {"type": "object", "additionalProperties": {"$ref": "#/definitions/domain.FlashcardRecord"}},
                "completed_modules": {"type": "integer"},
                "study_seconds": {"type": "integer"},
                "streak_days": {"type": "integer"},
                "last_active_day": {"type": "string"},
                "preferences": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.FlashcardReviewRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "card_id": {"type": "string"},
                "correct": {"type": "boolean"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "service": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.PreferencesRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "preferences": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.PreferencesResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "preferences": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.ProcessResponse": {
            "description": "Generated learning bundle and the session it belongs to",
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "bundle": {"$ref": "#/definitions/domain.LearningBundle"},
                "input_audio": {"type": "string"},
                "caption": {"type": "string"},
                "input_text": {"type": "string"},
                "input_prompt": {"type": "string"},
                "cached": {"type": "boolean"},
                "progress": {"$ref": "#/definitions/domain.Session"}
            }
        },
        "dto.ProgressResponse": {
            "type": "object",
            "properties": {
                "progress": {"$ref": "#/definitions/domain.Session"}
            }
        },
        "dto.ProgressUpdateResponse": {
            "description": "Mutation result with the updated session record",
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "progress": {"$ref": "#/definitions/domain.Session"}
            }
        },
        "dto.QuizCompleteRequest": {
            "description": "Quiz completion, score in percent",
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "quiz_id": {"type": "string"},
                "score": {"type": "number"}
            }
        },
        "dto.StudyTimeRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "seconds": {"type": "integer"}
            }
        },
        "dto.UpdateProgressRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "action": {"type": "string"},
                "data": {"type": "string"}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object", "additionalProperties": true}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "2.0.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Microlearn API",
	Description:      "Turns lecture audio, slides and notes into learning bundles and tracks learner progress.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
