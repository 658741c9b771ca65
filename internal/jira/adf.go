package jira

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ADFNode is one node of an Atlassian Document Format tree. The root is
// always {"type":"doc","version":1,"content":[...]}.
type ADFNode struct {
	Type    string                 `json:"type"`
	Version int                    `json:"version,omitempty"`
	Text    string                 `json:"text,omitempty"`
	Content []ADFNode              `json:"content,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Marks   []ADFMark              `json:"marks,omitempty"`
}

// ADFMark annotates a text node (links, emphasis).
type ADFMark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// BuildADF wraps plain text in a minimal ADF document: one paragraph
// per line. Cloud v3 rejects empty paragraphs, so blank lines are
// skipped and empty input produces a doc with no content.
func BuildADF(text string) ADFNode {
	doc := ADFNode{Type: "doc", Version: 1, Content: []ADFNode{}}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		doc.Content = append(doc.Content, ADFNode{
			Type:    "paragraph",
			Content: []ADFNode{{Type: "text", Text: line}},
		})
	}
	return doc
}

// RenderRichText converts a raw rich-text value to display text. It
// accepts either a JSON string (v2, Data Center) or an ADF document
// object (v3).
func RenderRichText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var doc ADFNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	return RenderADF(doc)
}

// RenderADF flattens an ADF document to plain text for terminal
// display. It understands the node types Jira commonly emits:
// paragraphs, headings, lists, code blocks, blockquotes, hard breaks
// and link marks. Unknown container nodes render their children.
func RenderADF(doc ADFNode) string {
	var b strings.Builder
	renderBlocks(&b, doc.Content, "")
	return strings.TrimRight(b.String(), "\n")
}

func renderBlocks(b *strings.Builder, nodes []ADFNode, indent string) {
	for _, node := range nodes {
		switch node.Type {
		case "paragraph", "heading":
			b.WriteString(indent)
			renderInline(b, node.Content)
			b.WriteString("\n")
		case "codeBlock":
			for _, line := range strings.Split(inlineText(node.Content), "\n") {
				b.WriteString(indent + "    " + line + "\n")
			}
		case "blockquote":
			renderBlocks(b, node.Content, indent+"> ")
		case "bulletList":
			for _, item := range node.Content {
				b.WriteString(indent + "- ")
				renderInline(b, flattenListItem(item))
				b.WriteString("\n")
			}
		case "orderedList":
			for n, item := range node.Content {
				b.WriteString(indent + strconv.Itoa(n+1) + ". ")
				renderInline(b, flattenListItem(item))
				b.WriteString("\n")
			}
		case "rule":
			b.WriteString(indent + "---\n")
		default:
			renderBlocks(b, node.Content, indent)
		}
	}
}

// flattenListItem collapses a listItem's paragraph wrappers so items
// render on one line.
func flattenListItem(item ADFNode) []ADFNode {
	var inline []ADFNode
	for _, child := range item.Content {
		if child.Type == "paragraph" {
			inline = append(inline, child.Content...)
			continue
		}
		inline = append(inline, child)
	}
	return inline
}

func renderInline(b *strings.Builder, nodes []ADFNode) {
	for _, node := range nodes {
		switch node.Type {
		case "text":
			b.WriteString(node.Text)
			if href := linkHref(node.Marks); href != "" && href != node.Text {
				b.WriteString(" (" + href + ")")
			}
		case "hardBreak":
			b.WriteString("\n")
		case "mention":
			if name, ok := node.Attrs["text"].(string); ok {
				b.WriteString(name)
			}
		case "emoji":
			if short, ok := node.Attrs["shortName"].(string); ok {
				b.WriteString(short)
			}
		case "inlineCard":
			if href, ok := node.Attrs["url"].(string); ok {
				b.WriteString(href)
			}
		default:
			renderInline(b, node.Content)
		}
	}
}

func inlineText(nodes []ADFNode) string {
	var b strings.Builder
	renderInline(&b, nodes)
	return b.String()
}

func linkHref(marks []ADFMark) string {
	for _, mark := range marks {
		if mark.Type != "link" {
			continue
		}
		if href, ok := mark.Attrs["href"].(string); ok {
			return href
		}
	}
	return ""
}
