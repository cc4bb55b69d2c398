package diffcodec

import (
	"strings"
)

type section int

const (
	sectionNone section = iota
	sectionViewContext
	sectionNodes
	sectionEdges
)

// Parse reads a compact-diff document — either a full-graph dump or
// an `<operations>`-wrapped diff — and returns the operations it
// describes. Malformed lines are counted in Document.Malformed rather
// than aborting parsing (§4.4 parser contract); a non-empty section
// that yields zero operations produces a Document.Warnings entry.
func Parse(text string) *Document {
	doc := &Document{}

	lines := strings.Split(text, "\n")
	cur := sectionNone
	inViewContextTag := false
	nodesSeen, edgesSeen := false, false

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			continue
		}

		if inViewContextTag {
			if closed, before := splitClosingTag(trimmed, "</view_context>"); closed {
				if before != "" {
					applyViewContextLine(doc, before)
				}
				inViewContextTag = false
				continue
			}
			applyViewContextLine(doc, trimmed)
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "<operations>"):
			doc.IsDiff = true
			continue
		case strings.HasPrefix(trimmed, "</operations>"):
			continue
		case strings.HasPrefix(trimmed, "<base_snapshot>"):
			snap, err := parseBaseSnapshotLine(trimmed)
			if err != nil {
				doc.Malformed = append(doc.Malformed, MalformedLine{LineNumber: lineNo, Text: raw, Reason: err.Error()})
				continue
			}
			doc.BaseSnapshot = snap
			continue
		case strings.HasPrefix(trimmed, "<view_context>"):
			if closed, inline := splitClosingTag(strings.TrimPrefix(trimmed, "<view_context>"), "</view_context>"); closed {
				if doc.ViewContext == nil {
					doc.ViewContext = &ViewContext{}
				}
				if inline != "" {
					applyViewContextLine(doc, inline)
				}
				continue
			}
			doc.ViewContext = &ViewContext{}
			inViewContextTag = true
			continue
		}

		if isHeaderCommentLine(trimmed) {
			applyHeaderComment(doc, trimmed)
			continue
		}

		if heading, ok := sectionHeading(trimmed); ok {
			switch heading {
			case "nodes":
				cur = sectionNodes
				nodesSeen = true
			case "edges":
				cur = sectionEdges
				edgesSeen = true
			case "view-context":
				cur = sectionViewContext
				if doc.ViewContext == nil {
					doc.ViewContext = &ViewContext{}
				}
			default:
				cur = sectionNone
			}
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			// An ordinary comment once we're past the preamble, or any
			// comment line that isn't a recognized header — ignored.
			continue
		}

		switch cur {
		case sectionViewContext:
			applyViewContextLine(doc, trimmed)
		case sectionNodes:
			parseNodeLine(doc, trimmed, lineNo, raw)
		case sectionEdges:
			parseEdgeLine(doc, trimmed, lineNo, raw)
		default:
			doc.Malformed = append(doc.Malformed, MalformedLine{
				LineNumber: lineNo, Text: raw, Reason: "line outside any recognized section",
			})
		}
	}

	if nodesSeen && len(doc.Nodes) == 0 {
		doc.Warnings = append(doc.Warnings, "## Nodes section produced zero operations")
	}
	if edgesSeen && len(doc.Edges) == 0 {
		doc.Warnings = append(doc.Warnings, "## Edges section produced zero operations")
	}

	return doc
}

// sectionHeading recognizes "## Nodes", "[Nodes]", and the Edges /
// View-Context equivalents, case-insensitively.
func sectionHeading(line string) (string, bool) {
	s := line
	s = strings.TrimPrefix(s, "##")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	} else if s == line {
		// Neither "##" nor "[...]" form.
		return "", false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "nodes", "edges", "view-context":
		return s, true
	}
	return "", false
}

func isHeaderCommentLine(line string) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}
	body := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "#")))
	return strings.HasPrefix(body, "system id") || strings.HasPrefix(body, "workspace id")
}

func applyHeaderComment(doc *Document, line string) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	idx := strings.IndexByte(body, ':')
	if idx < 0 {
		return
	}
	key := strings.ToLower(strings.TrimSpace(body[:idx]))
	val := strings.TrimSpace(body[idx+1:])
	switch key {
	case "system id":
		doc.SystemID = val
	case "workspace id":
		doc.WorkspaceID = val
	}
}

func applyViewContextLine(doc *Document, line string) {
	if doc.ViewContext == nil {
		doc.ViewContext = &ViewContext{}
	}
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return
	}
	key := strings.ToLower(strings.TrimSpace(line[:idx]))
	val := strings.TrimSpace(line[idx+1:])
	if key == "type" {
		doc.ViewContext.Type = val
	}
}

// splitClosingTag reports whether s contains tag, returning the text
// preceding it (trimmed).
func splitClosingTag(s, tag string) (bool, string) {
	idx := strings.Index(s, tag)
	if idx < 0 {
		return false, ""
	}
	return true, strings.TrimSpace(s[:idx])
}

func parseBaseSnapshotLine(line string) (*BaseSnapshot, error) {
	inner := strings.TrimPrefix(line, "<base_snapshot>")
	closed, body := splitClosingTag(inner, "</base_snapshot>")
	if !closed {
		return nil, ErrInvalidBaseSnapshot
	}
	at := strings.LastIndexByte(body, '@')
	if at < 0 {
		return nil, ErrInvalidBaseSnapshot
	}
	sysID := strings.TrimSpace(body[:at])
	verStr := strings.TrimSpace(body[at+1:])
	version, ok := parseUint(verStr)
	if sysID == "" || !ok {
		return nil, ErrInvalidBaseSnapshot
	}
	return &BaseSnapshot{SystemID: sysID, Version: version}, nil
}

func parseUint(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	var out uint64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		out = out*10 + uint64(r-'0')
	}
	return out, true
}

// actionPrefix strips a leading "+"/"-" diff-operation prefix. ok is
// false when the line starts with neither a prefix nor a character
// legal at the start of a semantic ID (letters/digits) — e.g. an
// invented marker like "~" or "*" — which the line must be rejected
// for (§4.4: inventing name prefixes is forbidden).
func actionPrefix(line string) (action OpKind, rest string, ok bool) {
	if line == "" {
		return OpAdd, "", false
	}
	switch line[0] {
	case '+':
		return OpAdd, strings.TrimSpace(line[1:]), true
	case '-':
		return OpRemove, strings.TrimSpace(line[1:]), true
	}
	c := line[0]
	isAlnum := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
	if !isAlnum {
		return OpAdd, "", false
	}
	return OpAdd, line, true
}

func parseNodeLine(doc *Document, line string, lineNo int, raw string) {
	action, rest, ok := actionPrefix(line)
	if !ok {
		doc.Malformed = append(doc.Malformed, MalformedLine{
			LineNumber: lineNo, Text: raw, Reason: "line does not start with '+', '-', or a legal semantic-id character",
		})
		return
	}
	if rest == "" {
		doc.Malformed = append(doc.Malformed, MalformedLine{LineNumber: lineNo, Text: raw, Reason: "empty node line"})
		return
	}

	id := rest
	description := ""
	var attrs map[string]any

	if pipe := strings.IndexByte(rest, '|'); pipe >= 0 {
		id = strings.TrimSpace(rest[:pipe])
		description, attrs = splitDescriptionAndAttrs(rest[pipe+1:])
	} else if br := strings.IndexByte(rest, '['); br >= 0 {
		id = strings.TrimSpace(rest[:br])
		_, attrs = splitDescriptionAndAttrs(rest[br:])
	}

	if id == "" {
		doc.Malformed = append(doc.Malformed, MalformedLine{LineNumber: lineNo, Text: raw, Reason: "node line has no semantic id"})
		return
	}

	doc.Nodes = append(doc.Nodes, NodeOp{Action: action, ID: id, Description: description, Attrs: attrs})
}

// splitDescriptionAndAttrs parses "description [k:v,k:v]" (the
// brackets are optional).
func splitDescriptionAndAttrs(s string) (string, map[string]any) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return s, nil
	}
	closeIdx := strings.LastIndexByte(s, ']')
	if closeIdx < open {
		return strings.TrimSpace(s[:open]), nil
	}
	desc := strings.TrimSpace(s[:open])
	attrs := parseAttrs(s[open+1 : closeIdx])
	return desc, attrs
}

func parseEdgeLine(doc *Document, line string, lineNo int, raw string) {
	action, rest, ok := actionPrefix(line)
	if !ok {
		doc.Malformed = append(doc.Malformed, MalformedLine{
			LineNumber: lineNo, Text: raw, Reason: "line does not start with '+', '-', or a legal semantic-id character",
		})
		return
	}

	fields := strings.Fields(rest)
	if len(fields) < 3 {
		doc.Malformed = append(doc.Malformed, MalformedLine{LineNumber: lineNo, Text: raw, Reason: "edge line has fewer than 3 fields"})
		return
	}

	src := fields[0]
	arrow := fields[1]
	kind, known := arrowToKind[arrow]
	if !known {
		doc.Malformed = append(doc.Malformed, MalformedLine{LineNumber: lineNo, Text: raw, Reason: "unrecognized arrow " + arrow})
		return
	}

	rem := strings.TrimSpace(strings.Join(fields[2:], " "))
	var targets []string
	for _, t := range strings.Split(rem, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		doc.Malformed = append(doc.Malformed, MalformedLine{LineNumber: lineNo, Text: raw, Reason: "edge line has no targets"})
		return
	}

	doc.Edges = append(doc.Edges, EdgeOp{Action: action, Source: src, Kind: string(kind), Targets: targets})
}
