package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {
                    "200": {"description": "Server is healthy"}
                }
            }
        },
        "/api/guest-data": {
            "get": {
                "tags": ["Guestbook"],
                "summary": "List guest messages",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "All stored messages",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/GuestMessage"}}
                    },
                    "500": {"description": "Store unreadable", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "post": {
                "tags": ["Guestbook"],
                "summary": "Submit a guest message",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "message",
                        "required": true,
                        "schema": {"$ref": "#/definitions/SubmitMessageRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/GuestMessage"}},
                    "400": {"description": "Missing or invalid field", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Store fault", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "tags": ["Moderation"],
                "summary": "Delete one guest message",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted or already absent"},
                    "400": {"description": "Missing id", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/guest-data/batch": {
            "delete": {
                "tags": ["Moderation"],
                "summary": "Delete several guest messages",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "ids",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {"ids": {"type": "array", "items": {"type": "string"}}}
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "Number of messages removed"},
                    "400": {"description": "ids missing or not an array", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/guest-data/search": {
            "get": {
                "tags": ["Moderation"],
                "summary": "Search guest messages by name or text",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "q", "type": "string"}
                ],
                "responses": {
                    "200": {
                        "description": "Matching messages",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/GuestMessage"}}
                    }
                }
            }
        },
        "/api/guest-data/stats": {
            "get": {
                "tags": ["Moderation"],
                "summary": "Message and attendee totals",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Totals", "schema": {"$ref": "#/definitions/MessageStats"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Admin login",
                "consumes": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {"password": {"type": "string"}}
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "Bearer token issued"},
                    "401": {"description": "Invalid credentials"},
                    "404": {"description": "Admin access not configured"}
                }
            }
        },
        "/api/map": {
            "get": {
                "tags": ["Site"],
                "summary": "Venue map page",
                "produces": ["text/html"],
                "responses": {
                    "200": {"description": "map.html"},
                    "404": {"description": "Map not found"}
                }
            }
        }
    },
    "definitions": {
        "GuestMessage": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "1718000000000"},
                "name": {"type": "string", "example": "Amy"},
                "attendeeCount": {"type": "integer", "example": 2},
                "message": {"type": "string", "example": "Congrats!"},
                "timestamp": {"type": "string", "example": "2024-06-10T06:13:20.000Z"}
            }
        },
        "SubmitMessageRequest": {
            "type": "object",
            "required": ["name", "attendeeCount", "message"],
            "properties": {
                "name": {"type": "string"},
                "attendeeCount": {"type": "integer", "minimum": 1},
                "message": {"type": "string"}
            }
        },
        "MessageStats": {
            "type": "object",
            "properties": {
                "totalMessages": {"type": "integer"},
                "totalGuests": {"type": "integer"},
                "averageGuests": {"type": "number"}
            }
        },
        "Error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and the admin token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Wedding Guestbook API",
	Description:      "RSVP and blessing messages for the wedding invitation site",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
