// Package swagger registers the OpenAPI description served at /swagger/*any.
// It is maintained by hand alongside the handler annotations.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "otpboard",
            "url": "https://github.com/mikepea/otpboard"
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
        "/auth/login": {
            "post": {
                "description": "Exchange the shared secret key for a session token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Secret key", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.AuthResponse"}},
                    "400": {"description": "Validation error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Login not configured", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Clear the session cookie (bearer tokens expire on their own)",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "Logged out successfully", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.SessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List accounts with optional issuer, tag (all must match) and text filters",
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List accounts",
                "parameters": [
                    {"type": "string", "description": "Exact issuer", "name": "issuer", "in": "query"},
                    {"type": "string", "description": "Comma separated tag IDs; accounts must carry all of them", "name": "tags", "in": "query"},
                    {"type": "string", "description": "Case-insensitive search over issuer and account", "name": "q", "in": "query"},
                    {"type": "string", "description": "time (default) or name", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/accounts.AccountResponse"}}},
                    "400": {"description": "Invalid filter", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Store a TOTP secret. Tags can be given by ID or by name; unknown names are created.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Create an account",
                "parameters": [
                    {"description": "Account", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accounts.CreateAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/accounts.AccountResponse"}},
                    "400": {"description": "Validation error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts/stream": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Server-sent \"codes\" events: one per period group every second, with codes whenever a period rolls over",
                "produces": ["text/event-stream"],
                "tags": ["accounts"],
                "summary": "Stream codes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accounts.StreamEvent"}}
                }
            }
        },
        "/accounts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accounts.AccountResponse"}},
                    "404": {"description": "Account not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Update an account",
                "parameters": [
                    {"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"description": "Changes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accounts.UpdateAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accounts.AccountResponse"}},
                    "400": {"description": "Validation error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Account not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Delete an account",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Account deleted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Account not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts/{id}/code": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Current code",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/codes.Result"}},
                    "404": {"description": "Account not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Stored secret is invalid", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts/{id}/qrcode": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "PNG QR code for authenticator apps, or the raw URI with format=uri",
                "produces": ["image/png", "application/json"],
                "tags": ["accounts"],
                "summary": "Account QR code",
                "parameters": [
                    {"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Edge length in pixels", "name": "size", "in": "query"},
                    {"type": "string", "description": "png (default) or uri", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Account not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts/{id}/tags/{tagId}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Tag an account",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}, {"type": "integer", "description": "Tag ID", "name": "tagId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accounts.AccountResponse"}},
                    "404": {"description": "Account or tag not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Untag an account",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}, {"type": "integer", "description": "Tag ID", "name": "tagId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Tag removed", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Tag not on account", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/accounts/{id}/share": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["share"],
                "summary": "Get an account's share link",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sharelinks.ShareLinkResponse"}},
                    "404": {"description": "Share link not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create the public share link of an account; repeated calls return the same link",
                "produces": ["application/json"],
                "tags": ["share"],
                "summary": "Share an account",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sharelinks.ShareLinkResponse"}},
                    "404": {"description": "Account not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Share link generation exhausted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["share"],
                "summary": "Revoke an account's share link",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}}
                }
            }
        },
        "/s/{token}": {
            "get": {
                "description": "Public, read-only view of one account's current code. Served at the site root, outside the /api base path.",
                "produces": ["application/json"],
                "tags": ["share"],
                "summary": "Shared code",
                "parameters": [
                    {"type": "string", "description": "Share token", "name": "token", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sharelinks.SharedCodeResponse"}},
                    "404": {"description": "Link not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tags": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tags"],
                "summary": "List tags",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/tags.TagResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create a tag; the colour defaults to one picked from the tag name",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tags"],
                "summary": "Create a tag",
                "parameters": [
                    {"description": "Tag", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/tags.CreateTagRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/tags.TagResponse"}},
                    "400": {"description": "Validation error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Tag already exists", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tags/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tags"],
                "summary": "Update a tag",
                "parameters": [
                    {"type": "integer", "description": "Tag ID", "name": "id", "in": "path", "required": true},
                    {"description": "Changes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/tags.UpdateTagRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tags.TagResponse"}},
                    "404": {"description": "Tag not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Tag already exists", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tags"],
                "summary": "Delete a tag",
                "parameters": [{"type": "integer", "description": "Tag ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Tag deleted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Tag not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Import accounts from CSV (issuer,account,secret,remark). Accepts a multipart \"file\" field or a raw text/csv body. Bad rows are skipped and reported.",
                "consumes": ["multipart/form-data", "text/csv"],
                "produces": ["application/json"],
                "tags": ["import-export"],
                "summary": "Import accounts",
                "parameters": [
                    {"type": "file", "description": "CSV file", "name": "file", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importexport.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "413": {"description": "Request Entity Too Large", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Download all accounts as CSV, newest first",
                "produces": ["text/csv"],
                "tags": ["import-export"],
                "summary": "Export accounts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/onetime": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Compute the current code of a secret that is not stored",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["codes"],
                "summary": "One-time code",
                "parameters": [
                    {"description": "Secret", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/codes.OneTimeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/codes.Result"}},
                    "400": {"description": "Invalid secret", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/totp": {
            "get": {
                "security": [{"APITokenAuth": []}],
                "description": "Look up an account by issuer (and optionally account name) and return its current code",
                "produces": ["application/json"],
                "tags": ["codes"],
                "summary": "Generate a code",
                "parameters": [
                    {"type": "string", "description": "Issuer", "name": "issuer", "in": "query", "required": true},
                    {"type": "string", "description": "Account name", "name": "account", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/codes.CodeResponse"}},
                    "400": {"description": "Issuer parameter is required", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Account not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cron/keep-alive": {
            "get": {
                "description": "Create and delete throw-away accounts. Requires Bearer CRON_SECRET when one is configured.",
                "produces": ["application/json"],
                "tags": ["cron"],
                "summary": "Database keep-alive",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/keepalive.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/keepalive.Response"}}
                }
            }
        }
    },
    "definitions": {
        "auth.LoginRequest": {
            "type": "object",
            "required": ["secret_key"],
            "properties": {"secret_key": {"type": "string"}}
        },
        "auth.AuthResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "expires_in": {"type": "integer"}}
        },
        "auth.SessionResponse": {
            "type": "object",
            "properties": {"authenticated": {"type": "boolean"}, "subject": {"type": "string"}}
        },
        "accounts.TagResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "color": {"type": "string"}}
        },
        "accounts.AccountResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "issuer": {"type": "string"},
                "account": {"type": "string"},
                "secret": {"type": "string"},
                "remark": {"type": "string"},
                "period": {"type": "integer"},
                "tags": {"type": "array", "items": {"$ref": "#/definitions/accounts.TagResponse"}},
                "short_link": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "accounts.CreateAccountRequest": {
            "type": "object",
            "required": ["issuer"],
            "properties": {
                "issuer": {"type": "string"},
                "account": {"type": "string"},
                "secret": {"type": "string"},
                "remark": {"type": "string"},
                "period": {"type": "integer", "minimum": 1, "maximum": 3600},
                "tag_ids": {"type": "array", "items": {"type": "integer"}},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "accounts.UpdateAccountRequest": {
            "type": "object",
            "properties": {
                "issuer": {"type": "string"},
                "account": {"type": "string"},
                "secret": {"type": "string"},
                "remark": {"type": "string"},
                "period": {"type": "integer", "minimum": 1, "maximum": 3600},
                "tag_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "accounts.AccountCode": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "accounts.StreamEvent": {
            "type": "object",
            "properties": {
                "period": {"type": "integer"},
                "mode": {"$ref": "#/definitions/countdown.Mode"},
                "remaining": {"type": "integer"},
                "progress": {"type": "number"},
                "regenerate": {"type": "boolean"},
                "codes": {"type": "array", "items": {"$ref": "#/definitions/accounts.AccountCode"}}
            }
        },
        "countdown.Mode": {
            "type": "string",
            "enum": ["global", "local"]
        },
        "codes.OneTimeRequest": {
            "type": "object",
            "required": ["secret"],
            "properties": {
                "secret": {"type": "string"},
                "period": {"type": "integer"}
            }
        },
        "codes.Result": {
            "type": "object",
            "properties": {
                "issuer": {"type": "string"},
                "account": {"type": "string"},
                "code": {"type": "string"},
                "remaining": {"type": "integer"},
                "period": {"type": "integer"},
                "progress": {"type": "number"},
                "mode": {"$ref": "#/definitions/countdown.Mode"},
                "counter": {"type": "integer"}
            }
        },
        "codes.CodeResponse": {
            "type": "object",
            "properties": {
                "issuer": {"type": "string"},
                "account": {"type": "string"},
                "code": {"type": "string"},
                "remaining": {"type": "integer"},
                "period": {"type": "integer"}
            }
        },
        "sharelinks.ShareLinkResponse": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "short_link": {"type": "string"},
                "url": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "sharelinks.SharedCodeResponse": {
            "type": "object",
            "properties": {
                "issuer": {"type": "string"},
                "account": {"type": "string"},
                "code": {"type": "string"},
                "remaining": {"type": "integer"},
                "period": {"type": "integer"},
                "progress": {"type": "number"}
            }
        },
        "tags.TagResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "color": {"type": "string"},
                "account_count": {"type": "integer"}
            }
        },
        "tags.CreateTagRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "color": {"type": "string"}
            }
        },
        "tags.UpdateTagRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "color": {"type": "string"}
            }
        },
        "importexport.ImportResponse": {
            "type": "object",
            "properties": {
                "imported": {"type": "integer"},
                "skipped": {"type": "integer"},
                "total": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"}
            }
        },
        "keepalive.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "error": {"type": "string"},
                "created": {"type": "integer"},
                "deleted": {"type": "integer"},
                "timestamp": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Dashboard session token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        },
        "APITokenAuth": {
            "description": "API_AUTH_TOKEN. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "otpboard API",
	Description:      "Multi-account TOTP dashboard with tags, share links and CSV import/export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
