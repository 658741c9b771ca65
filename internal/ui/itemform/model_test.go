package itemform

import (
	"reflect"
	"testing"

	"github.com/whyisdifficult/jiratui-sub000/internal/fields"
)

func TestCustomValuesShapesByKind(t *testing.T) {
	bindings := map[string]*customBinding{
		"customfield_10001": {kind: fields.KindSelect, pick: "42"},
		"customfield_10002": {kind: fields.KindMultiSelect, multi: []string{"1", "2"}},
		"customfield_10003": {kind: fields.KindNumeric, text: " 3.5 "},
		"customfield_10004": {kind: fields.KindText, text: "hello"},
		"customfield_10005": {kind: fields.KindLabels, text: "a, b"},
	}

	got := customValues(bindings)

	if !reflect.DeepEqual(got["customfield_10001"], map[string]string{"id": "42"}) {
		t.Errorf("select = %v", got["customfield_10001"])
	}
	wantMulti := []map[string]string{{"id": "1"}, {"id": "2"}}
	if !reflect.DeepEqual(got["customfield_10002"], wantMulti) {
		t.Errorf("multiselect = %v", got["customfield_10002"])
	}
	if got["customfield_10003"] != 3.5 {
		t.Errorf("numeric = %v", got["customfield_10003"])
	}
	if got["customfield_10004"] != "hello" {
		t.Errorf("text = %v", got["customfield_10004"])
	}
	if !reflect.DeepEqual(got["customfield_10005"], []string{"a", "b"}) {
		t.Errorf("labels = %v", got["customfield_10005"])
	}
}

func TestCustomValuesOmitsUntouchedFields(t *testing.T) {
	bindings := map[string]*customBinding{
		"customfield_10001": {kind: fields.KindSelect},
		"customfield_10002": {kind: fields.KindMultiSelect},
		"customfield_10003": {kind: fields.KindNumeric, text: "  "},
		"customfield_10004": {kind: fields.KindText, text: ""},
	}

	if got := customValues(bindings); got != nil {
		t.Errorf("customValues = %v, want nil", got)
	}
}

func TestSplitLabels(t *testing.T) {
	if got := splitLabels("a, b ,,c "); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("splitLabels = %v", got)
	}
	if got := splitLabels("  "); got != nil {
		t.Errorf("splitLabels(blank) = %v, want nil", got)
	}
}

func TestValidateOptionalDate(t *testing.T) {
	if err := validateOptionalDate(""); err != nil {
		t.Errorf("blank date rejected: %v", err)
	}
	if err := validateOptionalDate("2026-08-26"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	if err := validateOptionalDate("26/08/2026"); err == nil {
		t.Error("malformed date accepted")
	}
}
