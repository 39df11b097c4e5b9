// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "profile"},
        {"name": "conferences"},
        {"name": "registration"},
        {"name": "sessions"},
        {"name": "wishlist"},
        {"name": "session-queries"},
        {"name": "announcements"}
    ],
    "paths": {
        "/profile": {
            "get": {"tags": ["profile"], "summary": "Get the caller's profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["profile"], "summary": "Create or update the caller's profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/conferences": {
            "post": {"tags": ["conferences"], "summary": "Create a conference", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/conferences/query": {
            "post": {"tags": ["conferences"], "summary": "Query conferences", "responses": {"200": {"description": "OK"}}}
        },
        "/conferences/attending": {
            "get": {"tags": ["conferences"], "summary": "List conferences the caller is registered for", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/conferences/created": {
            "get": {"tags": ["conferences"], "summary": "List conferences organized by the caller", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/conferences/{conferenceKey}": {
            "get": {"tags": ["conferences"], "summary": "Get a conference", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["conferences"], "summary": "Update a conference", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/conferences/{conferenceKey}/registration": {
            "post": {"tags": ["registration"], "summary": "Register the caller for a conference", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["registration"], "summary": "Cancel the caller's registration", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/conferences/{conferenceKey}/sessions": {
            "get": {"tags": ["sessions"], "summary": "List a conference's sessions", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["sessions"], "summary": "Create a session in a conference", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/conferences/{conferenceKey}/sessions/by-type": {
            "get": {"tags": ["sessions"], "summary": "List a conference's sessions of one type", "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/by-speaker": {
            "get": {"tags": ["sessions"], "summary": "List sessions a speaker presents", "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/{sessionKey}/wishlist": {
            "put": {"tags": ["wishlist"], "summary": "Add a session to the caller's wishlist", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/wishlist": {
            "get": {"tags": ["wishlist"], "summary": "List the caller's wishlist", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/by-dates/{from}/{to}": {
            "get": {"tags": ["session-queries"], "summary": "Sessions starting within a date range", "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/by-date-duration/{date}/{duration}": {
            "get": {"tags": ["session-queries"], "summary": "Sessions on a date no longer than a duration", "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/not-type-time/{type}/{beforeTime}": {
            "get": {"tags": ["session-queries"], "summary": "Sessions not of a type that start before a time", "responses": {"200": {"description": "OK"}}}
        },
        "/announcement": {
            "get": {"tags": ["announcements"], "summary": "Nearly-sold-out announcement", "responses": {"200": {"description": "OK"}}}
        },
        "/featured-speaker": {
            "get": {"tags": ["announcements"], "summary": "Latest featured speaker announcement", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Conference Central API",
	Description:      "Conferences, registrations, sessions, wishlists and announcements.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
