// Package docs holds the Swagger 2.0 document served under /swagger. It is
// rendered from the handler annotations; run go generate ./cmd/api after
// changing them.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "email": "support@straye.io"
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
        "/advisors/{advisorId}/periods/{periodId}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Incentives"
                ],
                "summary": "Get advisor period",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Advisor ID",
                        "name": "advisorId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AdvisorPeriodDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Store the quota, modality and actuals of an advisor period",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Incentives"
                ],
                "summary": "Create or replace advisor period",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Advisor ID",
                        "name": "advisorId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Period data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpsertAdvisorPeriodRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AdvisorPeriodDTO"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/advisors/{advisorId}/periods/{periodId}/bonus": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Score the advisor's period against the tier ladder of its modality and report the earned bonus and the gap to the next tier",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Incentives"
                ],
                "summary": "Evaluate advisor bonus",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Advisor ID",
                        "name": "advisorId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "example": "2026-10",
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.BonusResultDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "422": {
                        "description": "Unknown modality",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Returns the caller that lifecycle changes will be attributed to",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Get current authenticated user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AuthUserDTO"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/incentives/tiers": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Incentives"
                ],
                "summary": "Get incentive tier table",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TierTableDTO"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Validate and store the tier ladders; the new table takes effect immediately",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Incentives"
                ],
                "summary": "Replace incentive tier table",
                "parameters": [
                    {
                        "description": "Tier ladders per modality",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdateTierTableRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TierTableDTO"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "422": {
                        "description": "Misconfigured tier table",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/incentives/tiers/reload": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Incentives"
                ],
                "summary": "Reload tier table from storage",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TierTableDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/incentives/tiers/revisions": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Superseded tier documents, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Incentives"
                ],
                "summary": "List archived tier tables",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.TierRevisionDTO"
                            }
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/lifecycle/stages/{stage}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "The stage chain follows the prefix as-is or URL-encoded, e.g. /lifecycle/stages/sold/shipped",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lifecycle"
                ],
                "summary": "List allowed transitions from a stage",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Stage chain",
                        "name": "stage",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.StageTransitionsDTO"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/lifecycle/transitions": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Get the lifecycle transition table",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.StageTransitionsDTO"
                            }
                        }
                    }
                }
            }
        },
        "/notifications": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Get paginated list of notifications for the current user",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Notifications"
                ],
                "summary": "List notifications",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Items per page (max 200)",
                        "name": "pageSize",
                        "in": "query"
                    },
                    {
                        "type": "boolean",
                        "default": false,
                        "description": "Filter to show only unread notifications",
                        "name": "unreadOnly",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Only notifications about this sale",
                        "name": "saleId",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/domain.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/domain.NotificationDTO"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/notifications/count": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Notifications"
                ],
                "summary": "Get unread notification count",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/service.UnreadCount"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/notifications/read-all": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Notifications"
                ],
                "summary": "Mark all notifications as read",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "integer",
                                "format": "int64"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/notifications/{id}/read": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "tags": [
                    "Notifications"
                ],
                "summary": "Mark notification as read",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Notification ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/periods/{periodId}/advisors": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Every advisor's record for one period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Incentives"
                ],
                "summary": "List advisor periods",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.AdvisorPeriodDTO"
                            }
                        }
                    }
                }
            }
        },
        "/sales": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Get paginated list of sales with optional filters",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Sales"
                ],
                "summary": "List sales",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Items per page (max 200)",
                        "name": "pageSize",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by advisor",
                        "name": "advisorId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "example": "sold/shipped",
                        "description": "Filter by exact lifecycle stage",
                        "name": "stage",
                        "in": "query"
                    },
                    {
                        "enum": [
                            "sold",
                            "exchange",
                            "voided"
                        ],
                        "type": "string",
                        "description": "Filter by stage chain root",
                        "name": "stageRoot",
                        "in": "query"
                    },
                    {
                        "enum": [
                            "invoice",
                            "receipt",
                            "sale_note"
                        ],
                        "type": "string",
                        "description": "Filter by document type",
                        "name": "documentType",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by client reference",
                        "name": "clientRef",
                        "in": "query"
                    },
                    {
                        "enum": [
                            "createdAt",
                            "updatedAt",
                            "code",
                            "finalValue",
                            "stage"
                        ],
                        "type": "string",
                        "default": "createdAt",
                        "description": "Sort field",
                        "name": "sortBy",
                        "in": "query"
                    },
                    {
                        "enum": [
                            "asc",
                            "desc"
                        ],
                        "type": "string",
                        "default": "desc",
                        "description": "Sort direction",
                        "name": "sortOrder",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/domain.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/domain.SaleDTO"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Open a new sale. Totals are computed server side and the sale starts in the sold stage unless exchange is requested.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Sales"
                ],
                "summary": "Create sale",
                "parameters": [
                    {
                        "description": "Sale data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreateSaleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.SaleDTO"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/sales/code/{code}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Sales"
                ],
                "summary": "Get sale by code",
                "parameters": [
                    {
                        "type": "string",
                        "example": "ADV42-000001",
                        "description": "Sale code",
                        "name": "code",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.SaleDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/sales/stage-counts": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Sales"
                ],
                "summary": "Count sales per stage",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Restrict to one advisor",
                        "name": "advisorId",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "integer",
                                "format": "int64"
                            }
                        }
                    }
                }
            }
        },
        "/sales/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Sales"
                ],
                "summary": "Get sale",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.SaleDTO"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/sales/{id}/history": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Stage changes of a sale, oldest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Sales"
                ],
                "summary": "Get sale stage history",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.SaleStageHistoryDTO"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/sales/{id}/side-effects": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Ticket side effects recorded for the sale with their dispatch status",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lifecycle"
                ],
                "summary": "List sale side effects",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.SaleSideEffectDTO"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/sales/{id}/side-effects/retry": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Re-dispatch side effects that are pending or failed, reusing their idempotency keys",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Retry sale side effects",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.SaleSideEffectDTO"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/sales/{id}/tickets": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lifecycle"
                ],
                "summary": "List service tickets of a sale",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.ServiceTicketDTO"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/sales/{id}/transitions": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lifecycle"
                ],
                "summary": "List allowed transitions for a sale",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.StageTransitionsDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Move a sale to a target stage chain. Requesting the current stage is a replay and changes nothing.\nWhen the stage changes but the follow-up ticket cannot be created the response is 200 with a warning; the ticket is retried.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Transition sale stage",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Target stage",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.TransitionSaleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TransitionResultDTO"
                        }
                    },
                    "400": {
                        "description": "Invalid transition; allowed lists the legal targets",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.APIError": {
            "type": "object",
            "properties": {
                "allowed": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "detail": {
                    "type": "string"
                },
                "errors": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "status": {
                    "type": "integer"
                },
                "title": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                }
            }
        },
        "domain.ActivityMetricsDTO": {
            "type": "object",
            "properties": {
                "activeDays": {
                    "type": "integer"
                },
                "callConversionPct": {
                    "type": "number"
                },
                "callsMade": {
                    "type": "integer"
                },
                "messageConversionPct": {
                    "type": "number"
                },
                "messagesSent": {
                    "type": "integer"
                },
                "salesClosed": {
                    "type": "integer"
                }
            }
        },
        "domain.AdvisorPeriodDTO": {
            "type": "object",
            "properties": {
                "achievedAmount": {
                    "type": "number"
                },
                "achievementPct": {
                    "type": "number"
                },
                "activeDays": {
                    "type": "integer"
                },
                "advisorId": {
                    "type": "string"
                },
                "callsMade": {
                    "type": "integer"
                },
                "endsOn": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "lastSyncedAt": {
                    "type": "string"
                },
                "messagesSent": {
                    "type": "integer"
                },
                "modality": {
                    "type": "string",
                    "enum": [
                        "sales_only",
                        "sales_and_activity"
                    ]
                },
                "periodId": {
                    "type": "string"
                },
                "quotaAmount": {
                    "type": "number"
                },
                "salesClosed": {
                    "type": "integer"
                },
                "startsOn": {
                    "type": "string"
                }
            }
        },
        "domain.AllowedTransitionDTO": {
            "type": "object",
            "properties": {
                "kind": {
                    "type": "string",
                    "enum": [
                        "forward",
                        "exchange",
                        "void"
                    ]
                },
                "stage": {
                    "type": "string"
                }
            }
        },
        "domain.AuthUserDTO": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "initials": {
                    "type": "string"
                },
                "isSystem": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string"
                },
                "roles": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "domain.BonusResultDTO": {
            "type": "object",
            "properties": {
                "activity": {
                    "$ref": "#/definitions/domain.ActivityMetricsDTO"
                },
                "activityGateMet": {
                    "type": "boolean"
                },
                "advisorId": {
                    "type": "string"
                },
                "bonoActual": {
                    "type": "number"
                },
                "modality": {
                    "type": "string",
                    "enum": [
                        "sales_only",
                        "sales_and_activity"
                    ]
                },
                "nextTier": {
                    "$ref": "#/definitions/domain.NextTierDTO"
                },
                "periodId": {
                    "type": "string"
                },
                "scorePct": {
                    "type": "number"
                },
                "tierLabel": {
                    "type": "string"
                }
            }
        },
        "domain.CreateSaleRequest": {
            "type": "object",
            "required": [
                "advisorId",
                "clientRef",
                "documentType",
                "lineItems"
            ],
            "properties": {
                "advisorId": {
                    "type": "string",
                    "maxLength": 100
                },
                "clientRef": {
                    "type": "string",
                    "maxLength": 100
                },
                "discountAmount": {
                    "type": "number"
                },
                "discountPercent": {
                    "type": "number"
                },
                "documentType": {
                    "type": "string",
                    "enum": [
                        "invoice",
                        "receipt",
                        "sale_note"
                    ]
                },
                "initialStage": {
                    "type": "string",
                    "enum": [
                        "sold",
                        "exchange"
                    ],
                    "example": "sold"
                },
                "internalNotes": {
                    "type": "string",
                    "maxLength": 2000
                },
                "lineItems": {
                    "type": "array",
                    "minItems": 1,
                    "items": {
                        "$ref": "#/definitions/domain.SaleLineItemRequest"
                    }
                },
                "scheduledDeliveryDate": {
                    "type": "string"
                },
                "taxAmount": {
                    "type": "number"
                }
            }
        },
        "domain.NextTierDTO": {
            "type": "object",
            "properties": {
                "bonusAmount": {
                    "type": "number"
                },
                "faltaUsd": {
                    "type": "number"
                },
                "label": {
                    "type": "string"
                },
                "thresholdPct": {
                    "type": "number"
                }
            }
        },
        "domain.NotificationDTO": {
            "type": "object",
            "properties": {
                "createdAt": {
                    "type": "string"
                },
                "entityId": {
                    "type": "string"
                },
                "entityType": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "read": {
                    "type": "boolean"
                },
                "title": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                }
            }
        },
        "domain.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "page": {
                    "type": "integer"
                },
                "pageSize": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                },
                "totalPages": {
                    "type": "integer"
                }
            }
        },
        "domain.SaleDTO": {
            "type": "object",
            "properties": {
                "advisorId": {
                    "type": "string"
                },
                "clientRef": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "discountAmount": {
                    "type": "number"
                },
                "discountPercent": {
                    "type": "number"
                },
                "documentType": {
                    "type": "string",
                    "enum": [
                        "invoice",
                        "receipt",
                        "sale_note"
                    ]
                },
                "finalValue": {
                    "type": "number"
                },
                "id": {
                    "type": "string"
                },
                "internalNotes": {
                    "type": "string"
                },
                "lifecycleState": {
                    "type": "string",
                    "example": "sold/shipped"
                },
                "lineItems": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.SaleLineItemDTO"
                    }
                },
                "scheduledDeliveryDate": {
                    "type": "string"
                },
                "subtotal": {
                    "type": "number"
                },
                "taxAmount": {
                    "type": "number"
                },
                "updatedAt": {
                    "type": "string"
                },
                "version": {
                    "type": "integer"
                }
            }
        },
        "domain.SaleLineItemDTO": {
            "type": "object",
            "properties": {
                "lineTotal": {
                    "type": "number"
                },
                "position": {
                    "type": "integer"
                },
                "productRef": {
                    "type": "string"
                },
                "quantity": {
                    "type": "number"
                },
                "unitOfMeasure": {
                    "type": "string"
                },
                "unitPrice": {
                    "type": "number"
                }
            }
        },
        "domain.SaleLineItemRequest": {
            "type": "object",
            "required": [
                "productRef",
                "unitOfMeasure"
            ],
            "properties": {
                "productRef": {
                    "type": "string",
                    "maxLength": 100
                },
                "quantity": {
                    "type": "number"
                },
                "unitOfMeasure": {
                    "type": "string",
                    "maxLength": 20
                },
                "unitPrice": {
                    "type": "number"
                }
            }
        },
        "domain.SaleSideEffectDTO": {
            "type": "object",
            "properties": {
                "attempts": {
                    "type": "integer"
                },
                "id": {
                    "type": "string"
                },
                "idempotencyKey": {
                    "type": "string"
                },
                "kind": {
                    "type": "string",
                    "enum": [
                        "training"
                    ]
                },
                "lastError": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "dispatched",
                        "failed"
                    ]
                },
                "targetStage": {
                    "type": "string"
                },
                "ticketId": {
                    "type": "string"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "domain.SaleStageHistoryDTO": {
            "type": "object",
            "properties": {
                "changedAt": {
                    "type": "string"
                },
                "changedById": {
                    "type": "string"
                },
                "changedByName": {
                    "type": "string"
                },
                "fromStage": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "toStage": {
                    "type": "string"
                }
            }
        },
        "domain.ServiceTicketDTO": {
            "type": "object",
            "properties": {
                "clientRef": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "idempotencyKey": {
                    "type": "string"
                },
                "kind": {
                    "type": "string",
                    "enum": [
                        "training"
                    ]
                },
                "saleId": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "open",
                        "closed"
                    ]
                }
            }
        },
        "domain.StageTransitionsDTO": {
            "type": "object",
            "properties": {
                "allowed": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AllowedTransitionDTO"
                    }
                },
                "stage": {
                    "type": "string"
                }
            }
        },
        "domain.TierEntryDTO": {
            "type": "object",
            "properties": {
                "bonusAmount": {
                    "type": "number"
                },
                "label": {
                    "type": "string"
                },
                "thresholdPct": {
                    "type": "number"
                }
            }
        },
        "domain.TierRevisionDTO": {
            "type": "object",
            "properties": {
                "archivedAt": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "path": {
                    "type": "string"
                },
                "size": {
                    "type": "integer"
                }
            }
        },
        "domain.TierTableDTO": {
            "type": "object",
            "properties": {
                "modalities": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {
                            "$ref": "#/definitions/domain.TierEntryDTO"
                        }
                    }
                },
                "updatedAt": {
                    "type": "string"
                },
                "updatedBy": {
                    "type": "string"
                }
            }
        },
        "domain.TransitionResultDTO": {
            "type": "object",
            "properties": {
                "newState": {
                    "type": "string"
                },
                "previousState": {
                    "type": "string"
                },
                "replayed": {
                    "type": "boolean"
                },
                "saleId": {
                    "type": "string"
                },
                "ticketCreated": {
                    "type": "boolean"
                },
                "ticketId": {
                    "type": "string"
                },
                "version": {
                    "type": "integer"
                },
                "warning": {
                    "type": "string"
                }
            }
        },
        "domain.TransitionSaleRequest": {
            "type": "object",
            "required": [
                "stage"
            ],
            "properties": {
                "notes": {
                    "type": "string",
                    "maxLength": 500
                },
                "stage": {
                    "type": "string",
                    "maxLength": 100,
                    "example": "sold/shipped"
                }
            }
        },
        "domain.UpdateTierTableRequest": {
            "type": "object",
            "required": [
                "modalities"
            ],
            "properties": {
                "modalities": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {
                            "$ref": "#/definitions/domain.TierEntryDTO"
                        }
                    }
                }
            }
        },
        "domain.UpsertAdvisorPeriodRequest": {
            "type": "object",
            "required": [
                "endsOn",
                "modality",
                "startsOn"
            ],
            "properties": {
                "achievedAmount": {
                    "type": "number"
                },
                "activeDays": {
                    "type": "integer",
                    "minimum": 0
                },
                "callsMade": {
                    "type": "integer",
                    "minimum": 0
                },
                "endsOn": {
                    "type": "string"
                },
                "messagesSent": {
                    "type": "integer",
                    "minimum": 0
                },
                "modality": {
                    "type": "string",
                    "enum": [
                        "sales_only",
                        "sales_and_activity"
                    ]
                },
                "quotaAmount": {
                    "type": "number"
                },
                "salesClosed": {
                    "type": "integer",
                    "minimum": 0
                },
                "startsOn": {
                    "type": "string"
                }
            }
        },
        "service.UnreadCount": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "API Key for system operations",
            "type": "apiKey",
            "name": "x-api-key",
            "in": "header"
        },
        "BearerAuth": {
            "description": "JWT Bearer token",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Straye Salesflow API",
	Description:      "Sale lifecycle and advisor incentive API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
