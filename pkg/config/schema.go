package config

// configSchema is the JSON Schema applied to config files before they are
// unmarshalled. All fields are optional; present fields must be well-typed.
const configSchema = `{
	"type": "object",
	"properties": {
		"suppliers": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"respect_actual_stock": {"type": "boolean"},
					"fixed_in_stock_inventory": {"type": "integer", "minimum": 0}
				},
				"required": ["name"]
			}
		},
		"stale_threshold_hours": {"type": "integer", "minimum": 1},
		"max_disable_count": {"type": "integer", "minimum": 1},
		"disable_percent_ceiling": {"type": "number", "exclusiveMinimum": 0, "maximum": 100},
		"supplier_wipeout_percent": {"type": "number", "exclusiveMinimum": 0, "maximum": 100},
		"supplier_wipeout_floor": {"type": "integer", "minimum": 0},
		"margin_discount_percent": {"type": "number", "exclusiveMinimum": 0, "maximum": 100},
		"request_delay_millis": {"type": "integer", "minimum": 0},
		"page_size": {"type": "integer", "minimum": 1},
		"snapshot_batch_size": {"type": "integer", "minimum": 1},
		"progress_interval": {"type": "integer", "minimum": 1},
		"error_detail_limit": {"type": "integer", "minimum": 1},
		"preview_limit": {"type": "integer", "minimum": 1}
	},
	"additionalProperties": false
}`
