// Package api/openapi provides the OpenAPI 3.0 specification and documentation page.
//
// SYSTEM ARCHITECTURE ROLE:
// This module generates and serves the OpenAPI document for the HTTP API, giving
// clients a machine-readable description and an interactive Swagger UI.
//
// INTEGRATION POINTS:
// - internal/api/server.go: documented paths must match the routes registered in Handler()
// - internal/validation/validator.go: request schemas mirror the validation schemas
// - internal/errors/handlers.go: ErrorResponse matches HTTPErrorHandler.FormatError() output
// - Swagger UI CDN: unpkg.com serves the Swagger UI assets used by handleOpenAPI()
//
// USAGE PATTERNS:
// - Access documentation: visit /api/docs for the interactive interface
// - Machine-readable spec: fetch /api/openapi.json
package api

import (
	"encoding/json"
	"net/http"

	"github.com/dpshade/character-template/internal/models"
)

// handleOpenAPI serves the OpenAPI documentation interface
func (s *APIServer) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Character Template API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui.css" />
    <style>
        html { box-sizing: border-box; overflow: -moz-scrollbars-vertical; overflow-y: scroll; }
        *, *:before, *:after { box-sizing: inherit; }
        body { margin:0; background: #fafafa; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            const ui = SwaggerUIBundle({
                url: '/api/openapi.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.presets.standalone
                ],
                plugins: [
                    SwaggerUIBundle.plugins.DownloadUrl
                ],
                layout: "StandaloneLayout"
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// handleOpenAPISpec serves the OpenAPI JSON specification
func (s *APIServer) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := getOpenAPISpec(s.service.Version(), "http://"+s.cfg.Addr()+"/api/v1")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(spec)
}

func formatCodes() []string {
	codes := make([]string, 0, len(models.Formats()))
	for _, f := range models.Formats() {
		codes = append(codes, string(f))
	}
	return codes
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func queryParam(name, description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      schema,
	}
}

// responses returns a 200 response with the given data schema plus the error responses
func responses(description string, data map[string]interface{}, errorCodes ...string) map[string]interface{} {
	out := map[string]interface{}{
		"200": map[string]interface{}{
			"description": description,
			"content": jsonContent(map[string]interface{}{
				"allOf": []map[string]interface{}{
					ref("APIResponse"),
					{
						"type":       "object",
						"properties": map[string]interface{}{"data": data},
					},
				},
			}),
		},
		"500": map[string]interface{}{
			"description": "Internal server error",
			"content":     jsonContent(ref("ErrorResponse")),
		},
	}
	for _, code := range errorCodes {
		desc := "Bad request"
		if code == "404" {
			desc = "Not found"
		}
		out[code] = map[string]interface{}{
			"description": desc,
			"content":     jsonContent(ref("ErrorResponse")),
		}
	}
	return out
}

// getOpenAPISpec returns the OpenAPI 3.0 specification
func getOpenAPISpec(version, serverURL string) map[string]interface{} {
	str := map[string]interface{}{"type": "string"}
	boolean := map[string]interface{}{"type": "boolean"}
	integer := map[string]interface{}{"type": "integer"}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Character Template API",
			"description": "Render F++/S++/P++ character templates and count their approximate tokens",
			"version":     version,
		},
		"servers": []map[string]interface{}{
			{
				"url":         serverURL,
				"description": "Configured server",
			},
		},
		"paths": map[string]interface{}{
			"/render": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Render a template",
					"description": "Render the template for a format, blank or filled with the example character",
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(ref("RenderRequest")),
					},
					"responses": responses("Rendered template", ref("RenderResult"), "400"),
				},
			},
			"/tokens": map[string]interface{}{
				"post": map[string]interface{}{
					"summary": "Count tokens",
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(ref("CountRequest")),
					},
					"responses": responses("Token count", ref("TokenCount"), "400"),
				},
			},
			"/formats": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "List formats",
					"responses": responses("Formats", map[string]interface{}{"type": "array", "items": ref("FormatInfo")}),
				},
			},
			"/formats/{code}/skeleton": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Field tree of a format",
					"parameters": []map[string]interface{}{
						{
							"name":     "code",
							"in":       "path",
							"required": true,
							"schema":   map[string]interface{}{"type": "string", "enum": formatCodes()},
						},
					},
					"responses": responses("Skeleton", map[string]interface{}{"type": "object"}, "400"),
				},
			},
			"/reference": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Reference material as markdown",
					"parameters": []map[string]interface{}{
						queryParam("section", "Section to return, all when omitted", map[string]interface{}{
							"type": "string",
							"enum": []string{"usage", "traits", "appearance", "guides"},
						}),
					},
					"responses": responses("Reference section", map[string]interface{}{"type": "object"}, "400"),
				},
			},
			"/reference/traits": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List or search trait words",
					"description": "Without q the trait vocabularies are listed; with q the words are fuzzy-searched",
					"parameters": []map[string]interface{}{
						queryParam("q", "Fuzzy search query", str),
						queryParam("category", "Restrict to one category", map[string]interface{}{
							"type": "string",
							"enum": []string{"positive", "neutral", "negative"},
						}),
						queryParam("limit", "Maximum number of matches", integer),
					},
					"responses": responses("Traits", map[string]interface{}{"type": "object"}, "400"),
				},
			},
			"/reference/appearance": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Appearance description prompts",
					"responses": responses("Appearance sections", map[string]interface{}{"type": "array"}),
				},
			},
			"/download": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Download template text",
					"description": "Returns the text as a plain-text attachment named <name>_template.txt",
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(ref("DownloadRequest")),
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Template file",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{"schema": str},
							},
						},
						"400": map[string]interface{}{
							"description": "Bad request",
							"content":     jsonContent(ref("ErrorResponse")),
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Health check",
					"responses": responses("Service status", ref("HealthStatus")),
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"APIResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success":   boolean,
						"data":      map[string]interface{}{"description": "Response data"},
						"message":   str,
						"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
					},
					"required": []string{"success", "timestamp"},
				},
				"RenderRequest": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":           str,
						"format":         map[string]interface{}{"type": "string", "enum": formatCodes()},
						"example":        boolean,
						"character_type": map[string]interface{}{"type": "string", "enum": []string{"adapted", "original"}},
						"output":         map[string]interface{}{"type": "string", "enum": []string{"text", "json", "document"}},
					},
					"required": []string{"format"},
				},
				"RenderResult": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"document": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"request": map[string]interface{}{"type": "object"},
								"text":    str,
							},
						},
						"tokens":   ref("TokenCount"),
						"filename": str,
						"json":     str,
					},
				},
				"CountRequest": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"text":     str,
						"strategy": map[string]interface{}{"type": "string", "enum": []string{"regex", "whitespace"}},
					},
				},
				"TokenCount": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"count":    integer,
						"strategy": str,
					},
				},
				"FormatInfo": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"code":        str,
						"name":        str,
						"description": str,
					},
				},
				"DownloadRequest": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name": str,
						"text": str,
					},
					"required": []string{"text"},
				},
				"HealthStatus": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"status":         str,
						"version":        str,
						"uptime":         str,
						"token_strategy": str,
						"formats":        map[string]interface{}{"type": "array", "items": str},
						"export_dir":     str,
						"clipboard":      boolean,
					},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success": boolean,
						"error": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"code": map[string]interface{}{
									"type":        "string",
									"description": "Error code, e.g. INVALID_FORMAT",
								},
								"message": map[string]interface{}{
									"type":        "string",
									"description": "Error message",
								},
								"details": map[string]interface{}{
									"type":        "string",
									"description": "Additional error details",
								},
								"context": map[string]interface{}{
									"type":        "object",
									"description": "Error context",
								},
								"timestamp": map[string]interface{}{
									"type":        "string",
									"format":      "date-time",
									"description": "Error timestamp",
								},
							},
							"required": []string{"code", "message", "timestamp"},
						},
					},
					"required": []string{"error"},
				},
			},
		},
	}
}
