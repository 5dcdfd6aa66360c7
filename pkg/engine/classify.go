package engine

import (
	"encoding/json"
	"strings"
)

// Data slot names accumulated on a session during a run.
const (
	slotWorkItem      = "workItemData"
	slotSpecification = "specification"
	slotTechnicalPlan = "technicalPlan"
	slotValidations   = "validations"
	slotGeneral       = "general"
)

// classifyOutput files a step's output into the session data bag based on
// substrings of the step id. Weak tagging kept for compatibility with
// existing workflow definitions; anything unmatched lands in the "general"
// bucket rather than being dropped.
func classifyOutput(stepID string, output any, data map[string]any) {
	id := strings.ToLower(stepID)

	switch {
	case strings.Contains(id, "fetch") || strings.Contains(id, "ado"):
		data[slotWorkItem] = parseStructured(output)

	case strings.Contains(id, "spec") || strings.Contains(id, "generate"):
		data[slotSpecification] = stringifyOutput(output)

	case strings.Contains(id, "plan"):
		data[slotTechnicalPlan] = stringifyOutput(output)

	case strings.Contains(id, "review") || strings.Contains(id, "valid"):
		validations, ok := data[slotValidations].(map[string]any)
		if !ok {
			validations = make(map[string]any)
			data[slotValidations] = validations
		}

		validations[validationKey(id)] = validationValue(output)

	default:
		data[slotGeneral] = stringifyOutput(output)
	}
}

func validationKey(stepID string) string {
	switch {
	case strings.Contains(stepID, "rgpd"):
		return "rgpd"
	case strings.Contains(stepID, "security"):
		return "security"
	case strings.Contains(stepID, "arch"):
		return "architecture"
	case strings.Contains(stepID, "design"):
		return "design"
	default:
		return "general"
	}
}

func validationValue(output any) any {
	if raw, ok := output.(string); ok {
		return map[string]any{
			"status": "completed",
			"issues": []string{},
			"raw":    raw,
		}
	}

	return output
}

// parseStructured keeps structured payloads structured: strings that contain
// JSON are decoded, everything else is stored as-is.
func parseStructured(output any) any {
	raw, ok := output.(string)
	if !ok {
		return output
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}

	return decoded
}

// stringifyOutput renders any step output as text for storage in history
// entries and text-valued data slots.
func stringifyOutput(output any) string {
	if output == nil {
		return ""
	}

	if raw, ok := output.(string); ok {
		return raw
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return ""
	}

	return string(data)
}
