// Package docs holds the OpenAPI document served at /swagger/*.
// Regenerate it with: swag init -g cmd/kbti/main.go
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
		"/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Registration data",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.RegisterRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log in",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Credentials",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/auth/logout": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log out",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/definitions": {
			"get": {
				"tags": [
					"definitions"
				],
				"summary": "Find approved definitions",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Term substring",
						"name": "term",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Category ID",
						"name": "category_id",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Sort order: term or empty",
						"name": "sort",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number, default: 1",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size, default: 10, max: 100",
						"name": "per_page",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			},
			"post": {
				"tags": [
					"definitions"
				],
				"summary": "Submit a definition",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Definition",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.DefinitionRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/definitions/{id}": {
			"get": {
				"tags": [
					"definitions"
				],
				"summary": "Get a definition",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			},
			"put": {
				"tags": [
					"definitions"
				],
				"summary": "Edit a definition",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Definition",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.DefinitionRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"definitions"
				],
				"summary": "Delete a definition",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/definitions/{id}/votes": {
			"get": {
				"tags": [
					"votes"
				],
				"summary": "Get the vote tally of a definition",
				"description": "Follows the visibility of GET /definitions/{id}",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			},
			"post": {
				"tags": [
					"votes"
				],
				"summary": "Vote on a definition",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Vote",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.VoteRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/search": {
			"get": {
				"tags": [
					"search"
				],
				"summary": "Search terms",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Query",
						"name": "q",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/terms/new": {
			"get": {
				"tags": [
					"search"
				],
				"summary": "Newest terms",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/terms/random": {
			"get": {
				"tags": [
					"search"
				],
				"summary": "Random definitions",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/categories": {
			"get": {
				"tags": [
					"categories"
				],
				"summary": "List categories",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/dashboard": {
			"get": {
				"tags": [
					"dashboard"
				],
				"summary": "Contributor dashboard",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/definitions": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "List reviewed definitions",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Page number, default: 1",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size, default: 10, max: 100",
						"name": "per_page",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/definitions/review": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "List definitions awaiting review",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Page number, default: 1",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size, default: 10, max: 100",
						"name": "per_page",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/definitions/deleted": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "List soft-deleted definitions",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Page number, default: 1",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size, default: 10, max: 100",
						"name": "per_page",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/definitions/{id}/review": {
			"put": {
				"tags": [
					"admin"
				],
				"summary": "Approve or reject a definition",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Decision",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.ReviewRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/definitions/{id}": {
			"delete": {
				"tags": [
					"admin"
				],
				"summary": "Permanently remove a deleted definition",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/users": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "List active users",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Page number, default: 1",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size, default: 10, max: 100",
						"name": "per_page",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/users/{id}": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "Get an active user",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"admin"
				],
				"summary": "Deactivate a user",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/users/{id}/role": {
			"put": {
				"tags": [
					"admin"
				],
				"summary": "Change the role of a user",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "New role",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.ChangeRoleRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/admin/roles": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "List roles",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		},
		"/maintenance/tokens/expired": {
			"delete": {
				"tags": [
					"maintenance"
				],
				"summary": "Clean expired tokens",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/models.Response"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"models.Response": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"status": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"data": {},
				"meta": {
					"$ref": "#/definitions/models.Meta"
				}
			}
		},
		"models.Meta": {
			"type": "object",
			"properties": {
				"total": {
					"type": "integer"
				},
				"per_page": {
					"type": "integer"
				},
				"current_page": {
					"type": "integer"
				},
				"last_page": {
					"type": "integer"
				}
			}
		},
		"models.FieldError": {
			"type": "object",
			"properties": {
				"field": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"models.RegisterRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"models.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"models.DefinitionRequest": {
			"type": "object",
			"properties": {
				"term": {
					"type": "string"
				},
				"definition": {
					"type": "string"
				},
				"category_id": {
					"type": "integer"
				}
			}
		},
		"models.ReviewRequest": {
			"type": "object",
			"properties": {
				"status_id": {
					"type": "integer"
				}
			}
		},
		"models.VoteRequest": {
			"type": "object",
			"properties": {
				"is_upvote": {
					"type": "boolean"
				}
			}
		},
		"models.ChangeRoleRequest": {
			"type": "object",
			"properties": {
				"role_id": {
					"type": "integer"
				}
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
			"type": "apiKey",
			"name": "X-API-Key",
			"in": "header"
		},
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and the token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "KBTI API",
	Description:      "Community glossary of IT terms with moderation and voting",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
