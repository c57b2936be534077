package api

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

var scoreMatchSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []interface{}{"demandId", "serviceId"},
	"properties": map[string]interface{}{
		"demandId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"serviceId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"persist": map[string]interface{}{
			"type": "boolean",
		},
	},
}

var scorePairSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []interface{}{"userAId", "userBId"},
	"properties": map[string]interface{}{
		"userAId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"userBId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"urgency": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
			"maximum": 5,
		},
	},
}

var computeTrustSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"metrics": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"transactionCount":         map[string]interface{}{"type": "integer", "minimum": 0},
				"completedCount":           map[string]interface{}{"type": "integer", "minimum": 0},
				"disputeCount":             map[string]interface{}{"type": "integer", "minimum": 0},
				"avgResponseTime":          map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0},
				"onTimeRate":               map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0, "maximum": 1},
				"helpCount":                map[string]interface{}{"type": "integer", "minimum": 0},
				"receiveCount":             map[string]interface{}{"type": "integer", "minimum": 0},
				"specializationCount":      map[string]interface{}{"type": "integer", "minimum": 0},
				"avgSpecializationScarcity": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 10},
				"caseStudyCount":           map[string]interface{}{"type": "integer", "minimum": 0},
			},
		},
	},
}

// validateAgainst checks a decoded request body against one of the
// package schemas and folds all violations into a single error.
func validateAgainst(schema map[string]interface{}, document interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %v", errs)
	}
	return nil
}
