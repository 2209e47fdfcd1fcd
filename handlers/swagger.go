package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the OpenAPI document at /swagger/doc.json and a
// Swagger UI page that renders it at /swagger/index.html.
func RegisterSwagger(r gin.IRoutes) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>user-sync API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({ url: '/swagger/doc.json', dom_id: '#swagger-ui', deepLinking: true })
    }
  </script>
</body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "user-sync", "version": "v0.1.0" },
  "paths": {
    "/api/webhooks/clerk": {
      "post": {
        "summary": "Receive a signed identity-provider webhook (user.created, user.updated, user.deleted)",
        "parameters": [
          { "name": "svix-id", "in": "header", "required": true, "schema": { "type": "string" } },
          { "name": "svix-timestamp", "in": "header", "required": true, "schema": { "type": "string" } },
          { "name": "svix-signature", "in": "header", "required": true, "schema": { "type": "string" } }
        ],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"type":{"type":"string"},"data":{"type":"object"}}}}}},
        "responses": {
          "200": { "description": "event applied, ignored or duplicate" },
          "400": { "description": "missing headers, bad signature, missing fields or unhandled type" },
          "500": { "description": "downstream failure or missing signing secret" }
        }
      }
    },
    "/api/v1/users/{externalId}": {
      "get": {
        "summary": "Look up a synced user by provider subject id",
        "parameters": [ { "name": "externalId", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "user" }, "401": { "description": "missing or invalid bearer token" }, "404": { "description": "not synced" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition" } } } }
  }
}`
