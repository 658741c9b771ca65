// Package fields maps Jira field schemas to terminal input widgets and
// provides helpers for reading and diffing editable field values.
package fields

import (
	"encoding/json"
	"strings"

	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
)

// InputKind classifies a field for form rendering: which widget edits
// it and how its value is parsed back.
type InputKind int

const (
	KindText InputKind = iota
	KindTextArea
	KindNumeric
	KindDate
	KindDateTime
	KindSelect
	KindMultiSelect
	KindCheckboxes
	KindLabels
	KindURL
	KindUserPicker
)

func (k InputKind) String() string {
	switch k {
	case KindTextArea:
		return "textarea"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindSelect:
		return "select"
	case KindMultiSelect:
		return "multiselect"
	case KindCheckboxes:
		return "checkboxes"
	case KindLabels:
		return "labels"
	case KindURL:
		return "url"
	case KindUserPicker:
		return "userpicker"
	default:
		return "text"
	}
}

const customFieldPrefix = "com.atlassian.jira.plugin.system.customfieldtypes:"

// customKinds maps Jira custom-field plugin identifiers to input kinds.
var customKinds = map[string]InputKind{
	customFieldPrefix + "float":           KindNumeric,
	customFieldPrefix + "select":          KindSelect,
	customFieldPrefix + "radiobuttons":    KindSelect,
	customFieldPrefix + "datepicker":      KindDate,
	customFieldPrefix + "datetime":        KindDateTime,
	customFieldPrefix + "textfield":       KindText,
	customFieldPrefix + "textarea":        KindTextArea,
	customFieldPrefix + "labels":          KindLabels,
	customFieldPrefix + "url":             KindURL,
	customFieldPrefix + "multicheckboxes": KindCheckboxes,
	customFieldPrefix + "multiselect":     KindMultiSelect,
	customFieldPrefix + "userpicker":      KindUserPicker,

	"com.atlassian.servicedesk:sd-request-language": KindSelect,
}

// Kind resolves the input kind for a field from its schema. Custom
// plugin identifiers take precedence; otherwise the base schema type
// decides. Anything unrecognized falls back to a free-text input.
func Kind(meta jira.FieldMeta) InputKind {
	if meta.Schema.Custom != "" {
		if kind, ok := customKinds[meta.Schema.Custom]; ok {
			return kind
		}
		return KindText
	}
	switch meta.Schema.Type {
	case "number":
		return KindNumeric
	case "date":
		return KindDate
	case "datetime":
		return KindDateTime
	case "array":
		if len(meta.AllowedValues) > 0 {
			return KindMultiSelect
		}
		return KindLabels
	case "user":
		return KindUserPicker
	case "option", "priority", "resolution":
		return KindSelect
	default:
		if len(meta.AllowedValues) > 0 {
			return KindSelect
		}
		return KindText
	}
}

// IsCustomField reports whether key names a custom field
// (customfield_NNNNN).
func IsCustomField(key string) bool {
	return strings.HasPrefix(key, "customfield_")
}

// KeyByName finds the field key whose display name matches name
// (case-insensitive). Returns "" when no field matches.
func KeyByName(meta *jira.EditMeta, name string) string {
	if meta == nil {
		return ""
	}
	for key, field := range meta.Fields {
		if strings.EqualFold(field.Name, name) {
			return key
		}
	}
	return ""
}

// EditableCustomFields returns the custom-field entries of an issue's
// editmeta, keyed by field key, for form construction.
func EditableCustomFields(meta *jira.EditMeta) map[string]jira.FieldMeta {
	editable := map[string]jira.FieldMeta{}
	if meta == nil {
		return editable
	}
	for key, field := range meta.Fields {
		if IsCustomField(key) && field.SupportsSet() {
			editable[key] = field
		}
	}
	return editable
}

// RawValueText renders a raw field value for display: strings as-is,
// numbers verbatim, option objects by their value/name, arrays joined
// with commas. Unrenderable values come back empty.
func RawValueText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	var option struct {
		Value       string `json:"value"`
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(raw, &option); err == nil {
		switch {
		case option.Value != "":
			return option.Value
		case option.Name != "":
			return option.Name
		case option.DisplayName != "":
			return option.DisplayName
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if text := RawValueText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, ", ")
	}

	return ""
}

// CustomFieldValues extracts the display text of every editable custom
// field that currently has a value on the issue, keyed by the field's
// display name.
func CustomFieldValues(issue *jira.Issue) map[string]string {
	values := map[string]string{}
	if issue == nil {
		return values
	}
	for key, meta := range EditableCustomFields(issue.EditMeta) {
		text := RawValueText(issue.RawFields[key])
		if text == "" {
			continue
		}
		name := meta.Name
		if name == "" {
			name = key
		}
		values[name] = text
	}
	return values
}
