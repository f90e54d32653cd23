// Package schemas holds the embedded JSON Schema documents used to
// validate configuration files before they are interpreted.
package schemas

// ConfigSchemaJSON is the JSON Schema for dq checklist configuration
// files. Structural rules live here; semantic rules (check/table
// cross-references, limit bounds ordering) live in internal/config.
const ConfigSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "dq.config.schema.json",
  "title": "DQ checklist configuration",
  "type": "object",
  "required": ["tables", "checks"],
  "additionalProperties": false,
  "properties": {
    "options": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "workers": {
          "type": "integer",
          "minimum": 1
        }
      }
    },
    "tables": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "$ref": "#/definitions/source"
      }
    },
    "checks": {
      "type": "array",
      "minItems": 1,
      "items": {
        "$ref": "#/definitions/check"
      }
    }
  },
  "definitions": {
    "source": {
      "type": "object",
      "required": ["kind"],
      "additionalProperties": false,
      "properties": {
        "kind": {
          "type": "string",
          "enum": ["csv", "sql", "dir", "object"]
        },
        "path": {
          "type": "string",
          "minLength": 1
        },
        "driver": {
          "type": "string",
          "enum": ["mysql", "postgres"]
        },
        "dsn": {
          "type": "string",
          "minLength": 1
        },
        "query": {
          "type": "string",
          "minLength": 1
        },
        "endpoint": {
          "type": "string",
          "minLength": 1
        },
        "bucket": {
          "type": "string",
          "minLength": 1
        },
        "prefix": {
          "type": "string"
        },
        "access_key": {
          "type": "string"
        },
        "secret_key": {
          "type": "string"
        },
        "use_ssl": {
          "type": "boolean"
        }
      },
      "allOf": [
        {
          "if": {
            "properties": {
              "kind": {
                "const": "csv"
              }
            }
          },
          "then": {
            "required": ["path"]
          }
        },
        {
          "if": {
            "properties": {
              "kind": {
                "const": "sql"
              }
            }
          },
          "then": {
            "required": ["driver", "dsn", "query"]
          }
        },
        {
          "if": {
            "properties": {
              "kind": {
                "const": "dir"
              }
            }
          },
          "then": {
            "required": ["path"]
          }
        },
        {
          "if": {
            "properties": {
              "kind": {
                "const": "object"
              }
            }
          },
          "then": {
            "required": ["endpoint", "bucket", "prefix"]
          }
        }
      ]
    },
    "check": {
      "type": "object",
      "required": ["table", "metric"],
      "additionalProperties": false,
      "properties": {
        "table": {
          "type": "string",
          "minLength": 1
        },
        "metric": {
          "type": "string",
          "enum": [
            "row_count",
            "zero_count",
            "null_count",
            "duplicate_count",
            "value_count",
            "below_value",
            "below_column",
            "ratio_below",
            "confidence_bounds",
            "date_lag"
          ]
        },
        "params": {
          "type": "object"
        },
        "limits": {
          "type": "object",
          "additionalProperties": {
            "type": "array",
            "items": {
              "type": "number"
            },
            "minItems": 2,
            "maxItems": 2
          }
        }
      }
    }
  }
}
`
