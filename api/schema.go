package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// Intervention payloads are validated against JSON schemas before decoding,
// so malformed requests are rejected with the offending field named and
// never reach the scheduling service.

const createInterventionSchema = `{
	"type": "object",
	"required": ["client_id", "scheduled_at", "description"],
	"properties": {
		"client_id": {"type": "integer", "minimum": 1},
		"technician_id": {"type": ["integer", "null"]},
		"scheduled_at": {"type": "string", "minLength": 10},
		"duration_minutes": {"type": "integer", "minimum": 1},
		"status": {"type": "string"},
		"priority": {"type": "string"},
		"description": {"type": "string", "minLength": 1}
	}
}`

// The PUT contract is a full-field replace: every mutable field must be
// present on every call.
const updateInterventionSchema = `{
	"type": "object",
	"required": ["status", "priority", "description", "scheduled_at"],
	"properties": {
		"status": {"type": "string"},
		"priority": {"type": "string"},
		"description": {"type": "string"},
		"scheduled_at": {"type": "string", "minLength": 10}
	}
}`

var (
	createInterventionRS = mustSchema(createInterventionSchema)
	updateInterventionRS = mustSchema(updateInterventionSchema)
)

func mustSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}

	return rs
}

// validatePayload runs the payload through a schema and reports the first
// violation as a caller-facing message.
func validatePayload(ctx context.Context, rs *jsonschema.Schema, payload []byte) error {
	keyErrs, err := rs.ValidateBytes(ctx, payload)
	if err != nil {
		return fmt.Errorf("invalid json")
	}
	if len(keyErrs) > 0 {
		ke := keyErrs[0]
		return fmt.Errorf("%s: %s", ke.PropertyPath, ke.Message)
	}

	return nil
}
