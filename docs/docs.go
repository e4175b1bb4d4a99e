// Package docs 由swag init生成，修改handler注解后需要重新生成
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
        "/api/v1/orders/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["订单"],
                "summary": "购物车结账",
                "parameters": [
                    {"type": "string", "description": "幂等令牌(1-64位 [A-Za-z0-9_.:-])", "name": "Idempotency-Key", "in": "header"},
                    {"description": "收货地址", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CheckoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "下单成功或幂等重放", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CheckoutRequest": {
            "type": "object",
            "required": ["address_id"],
            "properties": {
                "address_id": {"type": "integer", "example": 1},
                "token": {"type": "string", "maxLength": 64}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "kind": {"type": "string"},
                "message": {"type": "string"},
                "data": {}
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Mall API",
	Description:      "购物车结账与库存预占服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
