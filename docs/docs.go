// Package docs registers the OpenAPI description served under /swagger.
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
        "/tournaments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"type": "string", "description": "setup, scheduled or completed", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "tournaments"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "responses": {"201": {"description": "tournament"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "409": {"description": "Conflict"}}
            }
        },
        "/tournaments/{tournamentID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Get a tournament with teams, pool, game types and schedule",
                "parameters": [{"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "tournament"}, "404": {"description": "Not Found"}}
            }
        },
        "/tournaments/{tournamentID}/players/bulk": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["players"],
                "summary": "Add several players from one comma-separated list",
                "parameters": [{"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"201": {"description": "players"}, "400": {"description": "Bad Request"}}
            }
        },
        "/tournaments/{tournamentID}/players/search": {
            "get": {
                "tags": ["players"],
                "summary": "Fuzzy search players of a tournament by name",
                "parameters": [
                    {"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "string", "description": "Search text", "name": "q", "in": "query"}
                ],
                "responses": {"200": {"description": "players"}, "404": {"description": "Not Found"}}
            }
        },
        "/tournaments/{tournamentID}/validation": {
            "get": {
                "tags": ["schedule"],
                "summary": "Check whether the tournament setup can be scheduled",
                "parameters": [{"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "validation"}, "404": {"description": "Not Found"}}
            }
        },
        "/tournaments/{tournamentID}/schedule": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["schedule"],
                "summary": "Generate and save the round schedule",
                "parameters": [{"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"201": {"description": "rounds"}, "400": {"description": "error, validation"}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/tournaments/{tournamentID}/schedule/preview": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["schedule"],
                "summary": "Generate a schedule without saving it",
                "parameters": [{"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "rounds"}, "400": {"description": "error, validation"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/tournaments/{tournamentID}/rounds/{round}/games/{gameID}/result": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["schedule"],
                "summary": "Record the result of one game",
                "parameters": [
                    {"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "integer", "description": "Round number", "name": "round", "in": "path", "required": true},
                    {"type": "string", "description": "Game ID", "name": "gameID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "game"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Party Tournament API",
	Description:      "Teams, game types and round schedules for party tournaments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
