package taskflow

import (
	"fmt"
	"time"

	"checklist-service/internal/model"
)

// dateLayouts accepted for date field values coming from JSON clients.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// fieldEmpty reports whether a custom field value counts as unset for the
// purposes of required-field enforcement.
func fieldEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

// missingRequiredFields lists the keys of required fields that are unset in
// values, in definition order.
func missingRequiredFields(cfg *model.TaskConfiguration, values map[string]interface{}) []string {
	var missing []string
	for _, def := range cfg.Fields {
		if !def.Required {
			continue
		}
		if fieldEmpty(values[def.Key]) {
			missing = append(missing, def.Key)
		}
	}
	return missing
}

// validateFieldValues checks every provided value against the configuration's
// field definitions. Values for undefined keys are rejected so stale client
// payloads cannot smuggle data past a configuration change.
func validateFieldValues(cfg *model.TaskConfiguration, values map[string]interface{}) error {
	for key, value := range values {
		def, ok := fieldByKey(cfg, key)
		if !ok {
			return newValidationError("unknown custom field", key)
		}
		if fieldEmpty(value) {
			continue
		}
		if err := validateFieldValue(def, value); err != nil {
			return err
		}
	}
	return nil
}

func fieldByKey(cfg *model.TaskConfiguration, key string) (model.FieldDef, bool) {
	for _, def := range cfg.Fields {
		if def.Key == key {
			return def, true
		}
	}
	return model.FieldDef{}, false
}

// validateFieldValue dispatches to the checker for the field's type.
func validateFieldValue(def model.FieldDef, value interface{}) error {
	switch def.Type {
	case model.FieldText, model.FieldTextarea:
		return validateTextValue(def, value)
	case model.FieldNumber:
		return validateNumberValue(def, value)
	case model.FieldDate:
		return validateDateValue(def, value)
	case model.FieldCheckbox:
		return validateCheckboxValue(def, value)
	case model.FieldSelect:
		return validateSelectValue(def, value)
	case model.FieldMultiSelect:
		return validateMultiSelectValue(def, value)
	case model.FieldFile:
		return validateFileValue(def, value)
	default:
		return newValidationError(fmt.Sprintf("field %s has unsupported type %s", def.Key, def.Type), def.Key)
	}
}

func validateTextValue(def model.FieldDef, value interface{}) error {
	if _, ok := value.(string); !ok {
		return newValidationError(fmt.Sprintf("field %s expects text", def.Key), def.Key)
	}
	return nil
}

func validateNumberValue(def model.FieldDef, value interface{}) error {
	// JSON numbers decode as float64; accept native ints from internal callers.
	switch value.(type) {
	case float64, float32, int, int32, int64:
		return nil
	}
	return newValidationError(fmt.Sprintf("field %s expects a number", def.Key), def.Key)
}

func validateDateValue(def model.FieldDef, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return newValidationError(fmt.Sprintf("field %s expects a date string", def.Key), def.Key)
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}
	return newValidationError(fmt.Sprintf("field %s has an unparseable date %q", def.Key, s), def.Key)
}

func validateCheckboxValue(def model.FieldDef, value interface{}) error {
	if _, ok := value.(bool); !ok {
		return newValidationError(fmt.Sprintf("field %s expects a boolean", def.Key), def.Key)
	}
	return nil
}

func validateSelectValue(def model.FieldDef, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return newValidationError(fmt.Sprintf("field %s expects one of its options", def.Key), def.Key)
	}
	for _, opt := range def.Options {
		if opt == s {
			return nil
		}
	}
	return newValidationError(fmt.Sprintf("field %s does not allow option %q", def.Key, s), def.Key)
}

func validateMultiSelectValue(def model.FieldDef, value interface{}) error {
	var selected []string
	switch v := value.(type) {
	case []string:
		selected = v
	case []interface{}:
		for _, raw := range v {
			s, ok := raw.(string)
			if !ok {
				return newValidationError(fmt.Sprintf("field %s expects a list of options", def.Key), def.Key)
			}
			selected = append(selected, s)
		}
	default:
		return newValidationError(fmt.Sprintf("field %s expects a list of options", def.Key), def.Key)
	}

	for _, s := range selected {
		allowed := false
		for _, opt := range def.Options {
			if opt == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return newValidationError(fmt.Sprintf("field %s does not allow option %q", def.Key, s), def.Key)
		}
	}
	return nil
}

func validateFileValue(def model.FieldDef, value interface{}) error {
	// Files are stored by reference; the value is the uploaded object's path.
	if _, ok := value.(string); !ok {
		return newValidationError(fmt.Sprintf("field %s expects a file reference", def.Key), def.Key)
	}
	return nil
}
