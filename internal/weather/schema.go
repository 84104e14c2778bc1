package weather

import "github.com/ryosukesatoh/morning-summary/internal/provider"

const currentSchemaJSON = `{
  "type": "object",
  "required": ["name", "weather", "main"],
  "properties": {
    "name": {"type": "string"},
    "weather": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["main", "description"],
        "properties": {
          "main": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "main": {
      "type": "object",
      "required": ["temp"],
      "properties": {
        "temp": {"type": "number"},
        "feels_like": {"type": "number"},
        "humidity": {"type": "number"}
      }
    },
    "wind": {
      "type": "object",
      "properties": {"speed": {"type": "number"}}
    },
    "sys": {
      "type": "object",
      "properties": {"country": {"type": "string"}}
    },
    "timezone": {"type": "integer"},
    "dt": {"type": "integer"}
  }
}`

const forecastSchemaJSON = `{
  "type": "object",
  "required": ["list"],
  "properties": {
    "list": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["dt", "main", "weather"],
        "properties": {
          "dt": {"type": "integer"},
          "main": {
            "type": "object",
            "required": ["temp", "temp_min", "temp_max"],
            "properties": {
              "temp": {"type": "number"},
              "temp_min": {"type": "number"},
              "temp_max": {"type": "number"}
            }
          },
          "weather": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["main"],
              "properties": {"main": {"type": "string"}}
            }
          }
        }
      }
    },
    "city": {
      "type": "object",
      "properties": {
        "timezone": {"type": "integer"}
      }
    }
  }
}`

var (
	currentSchema  = provider.MustCompileSchema("owm-current.json", currentSchemaJSON)
	forecastSchema = provider.MustCompileSchema("owm-forecast.json", forecastSchemaJSON)
)
