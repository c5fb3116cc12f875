package config

// definitionSchema is the JSON schema for keyrotate.yaml. The YAML document
// is converted to JSON before validation.
const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "store": {
      "type": "string",
      "enum": ["file", "keyring"]
    },
    "credentials_file": {
      "type": "string"
    },
    "region": {
      "type": "string"
    },
    "verify": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "attempts": {
          "type": "integer",
          "minimum": 1,
          "maximum": 100
        },
        "delay_seconds": {
          "type": "integer",
          "minimum": 0,
          "maximum": 300
        }
      }
    },
    "cron": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "hour": {
          "type": "integer",
          "minimum": 0,
          "maximum": 23
        }
      }
    }
  }
}`
