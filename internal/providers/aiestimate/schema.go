// internal/providers/aiestimate/schema.go
package aiestimate

// responseSchema is the contract the AI estimator must satisfy. Anything
// that fails it is treated as provider-unavailable, never repaired locally.
const responseSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["estimatedCO2e"],
	"properties": {
		"estimatedCO2e": {
			"type": "number",
			"exclusiveMinimum": 0
		},
		"confidence": {
			"type": "number",
			"minimum": 0,
			"maximum": 1
		},
		"reasoning": {
			"type": "string"
		}
	},
	"additionalProperties": true
}`
