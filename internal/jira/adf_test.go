package jira

import (
	"encoding/json"
	"testing"
)

func TestBuildADFSingleParagraph(t *testing.T) {
	doc := BuildADF("hello world")

	if doc.Type != "doc" || doc.Version != 1 {
		t.Fatalf("envelope = %+v", doc)
	}
	if len(doc.Content) != 1 || doc.Content[0].Type != "paragraph" {
		t.Fatalf("content = %+v", doc.Content)
	}
	text := doc.Content[0].Content[0]
	if text.Type != "text" || text.Text != "hello world" {
		t.Errorf("text node = %+v", text)
	}
}

func TestBuildADFSkipsBlankLines(t *testing.T) {
	doc := BuildADF("first\n\n  \nsecond")
	if len(doc.Content) != 2 {
		t.Fatalf("paragraphs = %d, want 2", len(doc.Content))
	}
	if doc.Content[1].Content[0].Text != "second" {
		t.Errorf("second paragraph = %+v", doc.Content[1])
	}
}

func TestRenderADFBlocks(t *testing.T) {
	raw := `{
	  "type":"doc","version":1,"content":[
	    {"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Steps"}]},
	    {"type":"paragraph","content":[
	      {"type":"text","text":"See "},
	      {"type":"text","text":"the docs","marks":[{"type":"link","attrs":{"href":"https://example.com"}}]}
	    ]},
	    {"type":"bulletList","content":[
	      {"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"one"}]}]},
	      {"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"two"}]}]}
	    ]},
	    {"type":"orderedList","content":[
	      {"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"first"}]}]}
	    ]},
	    {"type":"codeBlock","content":[{"type":"text","text":"x := 1"}]}
	  ]}`

	var doc ADFNode
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := "Steps\n" +
		"See the docs (https://example.com)\n" +
		"- one\n" +
		"- two\n" +
		"1. first\n" +
		"    x := 1"
	if got := RenderADF(doc); got != want {
		t.Errorf("RenderADF =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderRichTextPlainString(t *testing.T) {
	got := RenderRichText(json.RawMessage(`"just text"`))
	if got != "just text" {
		t.Errorf("RenderRichText = %q", got)
	}
}

func TestRenderRichTextADFObject(t *testing.T) {
	raw := json.RawMessage(`{"type":"doc","version":1,"content":[
	  {"type":"paragraph","content":[{"type":"text","text":"from adf"}]}]}`)
	if got := RenderRichText(raw); got != "from adf" {
		t.Errorf("RenderRichText = %q", got)
	}
}

func TestRenderRichTextEmpty(t *testing.T) {
	if got := RenderRichText(nil); got != "" {
		t.Errorf("RenderRichText(nil) = %q", got)
	}
}

func TestBuildRenderRoundTrip(t *testing.T) {
	doc := BuildADF("line one\nline two")
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := RenderRichText(data); got != "line one\nline two" {
		t.Errorf("round trip = %q", got)
	}
}
