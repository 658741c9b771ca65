package fields

import (
	"encoding/json"
	"testing"

	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
)

func metaWithCustom(custom string) jira.FieldMeta {
	return jira.FieldMeta{Schema: jira.FieldSchema{Custom: custom}}
}

func TestKindCustomFieldTable(t *testing.T) {
	cases := []struct {
		custom string
		want   InputKind
	}{
		{"com.atlassian.jira.plugin.system.customfieldtypes:float", KindNumeric},
		{"com.atlassian.jira.plugin.system.customfieldtypes:select", KindSelect},
		{"com.atlassian.jira.plugin.system.customfieldtypes:datepicker", KindDate},
		{"com.atlassian.jira.plugin.system.customfieldtypes:datetime", KindDateTime},
		{"com.atlassian.jira.plugin.system.customfieldtypes:textfield", KindText},
		{"com.atlassian.jira.plugin.system.customfieldtypes:textarea", KindTextArea},
		{"com.atlassian.jira.plugin.system.customfieldtypes:labels", KindLabels},
		{"com.atlassian.jira.plugin.system.customfieldtypes:url", KindURL},
		{"com.atlassian.jira.plugin.system.customfieldtypes:multicheckboxes", KindCheckboxes},
		{"com.atlassian.jira.plugin.system.customfieldtypes:multiselect", KindMultiSelect},
		{"com.atlassian.jira.plugin.system.customfieldtypes:userpicker", KindUserPicker},
		{"com.atlassian.servicedesk:sd-request-language", KindSelect},
		{"com.example.unknown:widget", KindText},
	}
	for _, tc := range cases {
		if got := Kind(metaWithCustom(tc.custom)); got != tc.want {
			t.Errorf("Kind(%s) = %v, want %v", tc.custom, got, tc.want)
		}
	}
}

func TestKindSchemaTypeFallbacks(t *testing.T) {
	if got := Kind(jira.FieldMeta{Schema: jira.FieldSchema{Type: "number"}}); got != KindNumeric {
		t.Errorf("number = %v", got)
	}
	if got := Kind(jira.FieldMeta{Schema: jira.FieldSchema{Type: "date"}}); got != KindDate {
		t.Errorf("date = %v", got)
	}

	arrayConstrained := jira.FieldMeta{
		Schema:        jira.FieldSchema{Type: "array", Items: "option"},
		AllowedValues: []jira.AllowedValue{{ID: "1", Value: "a"}},
	}
	if got := Kind(arrayConstrained); got != KindMultiSelect {
		t.Errorf("constrained array = %v", got)
	}
	if got := Kind(jira.FieldMeta{Schema: jira.FieldSchema{Type: "array"}}); got != KindLabels {
		t.Errorf("unconstrained array = %v", got)
	}
	if got := Kind(jira.FieldMeta{Schema: jira.FieldSchema{Type: "string"}}); got != KindText {
		t.Errorf("string = %v", got)
	}
}

func TestKeyByName(t *testing.T) {
	meta := &jira.EditMeta{Fields: map[string]jira.FieldMeta{
		"customfield_10020": {Name: "Sprint"},
		"summary":           {Name: "Summary"},
	}}
	if got := KeyByName(meta, "sprint"); got != "customfield_10020" {
		t.Errorf("KeyByName = %q", got)
	}
	if got := KeyByName(meta, "Story Points"); got != "" {
		t.Errorf("KeyByName for missing field = %q", got)
	}
	if got := KeyByName(nil, "Sprint"); got != "" {
		t.Errorf("KeyByName(nil) = %q", got)
	}
}

func TestEditableCustomFields(t *testing.T) {
	meta := &jira.EditMeta{Fields: map[string]jira.FieldMeta{
		"summary":           {Name: "Summary", Operations: []string{"set"}},
		"customfield_10001": {Name: "Team", Operations: []string{"set"}},
		"customfield_10002": {Name: "Rank", Operations: []string{}},
	}}
	editable := EditableCustomFields(meta)
	if len(editable) != 1 {
		t.Fatalf("editable = %v", editable)
	}
	if _, ok := editable["customfield_10001"]; !ok {
		t.Error("customfield_10001 missing")
	}
}

func TestRawValueText(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"plain"`, "plain"},
		{`42.5`, "42.5"},
		{`{"value":"High"}`, "High"},
		{`{"name":"Backend"}`, "Backend"},
		{`{"displayName":"Ada Lovelace"}`, "Ada Lovelace"},
		{`["red","green"]`, "red, green"},
		{`[{"value":"a"},{"value":"b"}]`, "a, b"},
		{`null`, ""},
		{`true`, ""},
	}
	for _, tc := range cases {
		if got := RawValueText(json.RawMessage(tc.raw)); got != tc.want {
			t.Errorf("RawValueText(%s) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestChangesDetectsOnlyDifferences(t *testing.T) {
	issue := &jira.Issue{
		Key: "ABC-1",
		Fields: jira.IssueFields{
			Summary:  "old title",
			Priority: &jira.Priority{ID: "3", Name: "Medium"},
			Assignee: &jira.User{AccountID: "acct-1"},
			DueDate:  "2025-07-01",
			Labels:   []string{"backend"},
		},
	}
	plain := func(s string) interface{} { return s }

	edit := Edit{
		Summary:    "old title",
		PriorityID: "2",
		DueDate:    "2025-07-01",
		Labels:     []string{"backend"},
	}
	changed := Changes(issue, edit, plain)
	if len(changed) != 1 {
		t.Fatalf("changed = %v, want only priority", changed)
	}
	priority, _ := changed["priority"].(map[string]string)
	if priority["id"] != "2" {
		t.Errorf("priority = %v", changed["priority"])
	}
}

func TestChangesClearAssignee(t *testing.T) {
	issue := &jira.Issue{Fields: jira.IssueFields{
		Assignee: &jira.User{AccountID: "acct-1"},
	}}
	changed := Changes(issue, Edit{ClearAssignee: true}, func(s string) interface{} { return s })
	value, ok := changed["assignee"]
	if !ok || value != nil {
		t.Errorf("assignee = %v (present=%v), want explicit nil", value, ok)
	}
}

func TestChangesDescriptionUsesRichText(t *testing.T) {
	issue := &jira.Issue{Fields: jira.IssueFields{
		Description: json.RawMessage(`"old text"`),
	}}
	called := false
	richText := func(s string) interface{} {
		called = true
		return map[string]interface{}{"type": "doc", "text": s}
	}
	changed := Changes(issue, Edit{Description: "new text"}, richText)
	if !called {
		t.Fatal("rich text converter not invoked")
	}
	if _, ok := changed["description"]; !ok {
		t.Error("description change missing")
	}

	// Unchanged description must not be converted or included.
	called = false
	changed = Changes(issue, Edit{Description: "old text"}, richText)
	if called || len(changed) != 0 {
		t.Errorf("unchanged description produced %v", changed)
	}
}
