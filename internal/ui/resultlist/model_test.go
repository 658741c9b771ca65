package resultlist

import (
	"testing"
	"time"

	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/keys"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
)

func jiraCriteria() jira.SearchCriteria {
	return jira.SearchCriteria{ProjectKey: "ABC", OrderBy: "created desc"}
}

func TestPageLoadedAccumulatesTokens(t *testing.T) {
	m := New(nil, nil, keys.DefaultKeyMap(), false, 80, 24)
	m.SetCriteria(jiraCriteria())

	last := false
	m, _ = m.Update(PageLoadedMsg{
		Page: model.SearchPage{
			Items:         []model.WorkItem{{Key: "ABC-1"}},
			NextPageToken: "tok-2",
			IsLast:        &last,
		},
		PageNumber: 1,
	})

	if m.isLast {
		t.Error("isLast = true on a page with a continuation token")
	}
	if len(m.tokens) != 2 || m.tokens[1] != "tok-2" {
		t.Errorf("tokens = %v", m.tokens)
	}
}

func TestPageLoadedFinalPage(t *testing.T) {
	m := New(nil, nil, keys.DefaultKeyMap(), false, 80, 24)

	last := true
	m, _ = m.Update(PageLoadedMsg{
		Page: model.SearchPage{
			Items:  []model.WorkItem{{Key: "ABC-1"}},
			IsLast: &last,
		},
	})

	if !m.isLast {
		t.Error("isLast = false on the final page")
	}
	if len(m.tokens) != 1 {
		t.Errorf("tokens = %v, want only the initial empty token", m.tokens)
	}
}

func TestPageLoadedMissingIsLastMeansDone(t *testing.T) {
	m := New(nil, nil, keys.DefaultKeyMap(), false, 80, 24)

	m, _ = m.Update(PageLoadedMsg{Page: model.SearchPage{}})
	if !m.isLast {
		t.Error("a page without pagination state should be treated as final")
	}
}

func TestCountLoadedKeepsLargerSignal(t *testing.T) {
	m := New(nil, nil, keys.DefaultKeyMap(), false, 80, 24)

	m, _ = m.Update(CountLoadedMsg{Count: 120})
	if m.count != 120 {
		t.Errorf("count = %d", m.count)
	}

	// A zero count (endpoint unsupported) must not wipe a known total.
	m, _ = m.Update(CountLoadedMsg{Count: 0})
	if m.count != 120 {
		t.Errorf("count = %d after zero update", m.count)
	}
}

func TestSetCriteriaResetsPagination(t *testing.T) {
	m := New(nil, nil, keys.DefaultKeyMap(), false, 80, 24)
	m.tokens = []string{"", "tok-2", "tok-3"}
	m.pageIndex = 2
	m.isLast = true

	m.SetCriteria(jiraCriteria())

	if m.pageIndex != 0 || m.isLast || len(m.tokens) != 1 {
		t.Errorf("pagination not reset: idx=%d last=%v tokens=%v",
			m.pageIndex, m.isLast, m.tokens)
	}
}

func TestShortLabel(t *testing.T) {
	cases := map[string]string{
		"":      "---",
		"Bug":   "BUG",
		"Story": "STO",
		"Ta":    "TA",
	}
	for in, want := range cases {
		if got := shortLabel(in); got != want {
			t.Errorf("shortLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	cases := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, ""},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
		{now.Add(-15 * 24 * time.Hour), "2w ago"},
	}
	for _, tc := range cases {
		if got := relativeTime(tc.t); got != tc.want {
			t.Errorf("relativeTime(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}
