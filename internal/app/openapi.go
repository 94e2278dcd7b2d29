package app

// OpenAPISpec is the OpenAPI document served at /openapi.json
const OpenAPISpec = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Infra-Metric Analytics API",
    "version": "1.0.0",
    "description": "Analytics over email sending accounts: grouped reports, capacity planning, search, CSV export and sync control."
  },
  "servers": [{"url": "/api/v1"}],
  "paths": {
    "/analytics/summary": {
      "get": {
        "summary": "Snapshot-wide totals",
        "responses": {"200": {"description": "Summary with freshness", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReportResponse"}}}}}
      }
    },
    "/analytics/groups/{dimension}": {
      "get": {
        "summary": "Grouped report",
        "parameters": [
          {"name": "dimension", "in": "path", "required": true, "schema": {"type": "string", "enum": ["provider", "reseller", "client", "accountType"]}},
          {"name": "view", "in": "query", "schema": {"type": "string", "enum": ["total_sent", "accounts_50", "no_replies", "daily_availability"]}},
          {"name": "threshold", "in": "query", "description": "No-reply minimum sends, default 100", "schema": {"type": "integer", "minimum": 0}}
        ],
        "responses": {
          "200": {"description": "Group aggregates", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReportResponse"}}}},
          "400": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/analytics/no-replies": {
      "get": {
        "summary": "Accounts and groups sending without replies",
        "parameters": [
          {"name": "dimension", "in": "query", "schema": {"type": "string", "default": "provider"}},
          {"name": "threshold", "in": "query", "description": "Minimum sends, default 150", "schema": {"type": "integer", "minimum": 0}}
        ],
        "responses": {
          "200": {"description": "No-reply report", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReportResponse"}}}},
          "400": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/capacity": {
      "get": {
        "summary": "Capacity plan against stored daily targets",
        "responses": {"200": {"description": "Capacity plan", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReportResponse"}}}}}
      }
    },
    "/capacity/plan": {
      "post": {
        "summary": "Capacity plan against supplied daily targets",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {
            "type": "object",
            "required": ["targets"],
            "properties": {"targets": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 0}}}
          }}}
        },
        "responses": {
          "200": {"description": "Capacity plan", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReportResponse"}}}},
          "400": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/capacity/targets/{client}": {
      "put": {
        "summary": "Store the daily sending target for a client",
        "parameters": [{"name": "client", "in": "path", "required": true, "schema": {"type": "string"}}],
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {
            "type": "object",
            "required": ["daily_target"],
            "properties": {"daily_target": {"type": "integer", "minimum": 0}}
          }}}
        },
        "responses": {
          "200": {"description": "Stored target"},
          "400": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/accounts/search": {
      "get": {
        "summary": "Free-text account search, at most 50 results",
        "parameters": [{"name": "q", "in": "query", "schema": {"type": "string", "minLength": 2}}],
        "responses": {"200": {"description": "Matching accounts", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReportResponse"}}}}}
      }
    },
    "/accounts/drilldown": {
      "get": {
        "summary": "Accounts behind a report row",
        "parameters": [
          {"name": "dimension", "in": "query", "schema": {"type": "string"}},
          {"name": "key", "in": "query", "schema": {"type": "string"}},
          {"name": "filter", "in": "query", "schema": {"type": "string", "enum": ["zero_replies", "connected", "disconnected", "failed", "not_connected"]}},
          {"name": "min_sent", "in": "query", "schema": {"type": "integer", "minimum": 0, "default": 50}},
          {"name": "q", "in": "query", "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Matching accounts", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReportResponse"}}}},
          "400": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/export/{report}.csv": {
      "get": {
        "summary": "Download a report as CSV",
        "parameters": [{"$ref": "#/components/parameters/Report"}],
        "responses": {
          "200": {"description": "CSV file", "content": {"text/csv": {"schema": {"type": "string"}}}},
          "404": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/export/{report}/archive": {
      "post": {
        "summary": "Render a report and upload it to the export archive",
        "parameters": [{"$ref": "#/components/parameters/Report"}],
        "responses": {
          "201": {"description": "Archived export", "content": {"application/json": {"schema": {
            "type": "object",
            "properties": {"filename": {"type": "string"}, "rows": {"type": "integer"}, "key": {"type": "string"}, "url": {"type": "string"}}
          }}}},
          "404": {"$ref": "#/components/responses/Error"},
          "503": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/sync": {
      "post": {
        "summary": "Trigger a manual sync and wait for it",
        "responses": {
          "200": {"description": "Sync finished"},
          "409": {"$ref": "#/components/responses/Error"},
          "429": {"description": "Cooldown active", "headers": {"Retry-After": {"schema": {"type": "integer"}}}},
          "502": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/sync/status": {
      "get": {
        "summary": "Current sync job, cooldown and data freshness",
        "responses": {"200": {"description": "Sync status"}}
      }
    },
    "/sync/events": {
      "get": {
        "summary": "Server-sent stream of sync status transitions",
        "responses": {"200": {"description": "Event stream", "content": {"text/event-stream": {}}}}
      }
    },
    "/sync/history": {
      "get": {
        "summary": "Recent sync attempts, newest first",
        "parameters": [{"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 0, "maximum": 100, "default": 20}}],
        "responses": {
          "200": {"description": "Sync attempts"},
          "400": {"$ref": "#/components/responses/Error"}
        }
      }
    }
  },
  "components": {
    "parameters": {
      "Report": {"name": "report", "in": "path", "required": true, "schema": {"type": "string", "enum": ["accounts", "groups", "capacity", "no_replies"]}}
    },
    "responses": {
      "Error": {"description": "Error", "content": {"application/json": {"schema": {"type": "object", "properties": {"error": {"type": "string"}}}}}}
    },
    "schemas": {
      "Freshness": {
        "type": "object",
        "properties": {
          "classification": {"type": "string", "enum": ["never", "fresh", "stale", "very_stale"]},
          "last_synced_at": {"type": "string", "format": "date-time"},
          "age_seconds": {"type": "integer"},
          "partial_warning": {
            "type": "object",
            "properties": {
              "workspaces_processed": {"type": "integer"},
              "total_workspaces": {"type": "integer"},
              "workspaces_skipped": {"type": "integer"}
            }
          }
        }
      },
      "ReportResponse": {
        "type": "object",
        "properties": {
          "data": {},
          "freshness": {"$ref": "#/components/schemas/Freshness"}
        }
      }
    }
  }
}`
