package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headerRegex  = regexp.MustCompile(`^>(SA|AA)(?:[ \t]+(Global\+|GlobalLast\+|GlobalEnemy\+|[0-9]+))?[ \t]*(.*)$`)
	codeRegex    = regexp.MustCompile(`\[code=([A-Za-z_][A-Za-z0-9_]*)\][ \t]*(.*?)[ \t]*\[/code\]`)
	commentRegex = regexp.MustCompile(`~~[ \t]*(.*?)[ \t]*~~`)
)

// ParseFeatures parses an ability-features file into a Document. It
// never fails: a line starting with '>' opens a new block, everything
// up to the next header (blank lines and # comments included) belongs
// to that block, and headers that do not match a recognized entry
// shape produce blocks of KindUnknown so no text is ever dropped.
func ParseFeatures(text string) *Document {
	doc := &Document{Format: FormatFeatures}
	lines := splitLines(text)

	var preamble strings.Builder
	var cur *Block
	flush := func(end int) {
		if cur != nil {
			cur.End = end
			cur.Kind, cur.Fields = classifyEntry(cur.Raw)
			doc.Blocks = append(doc.Blocks, *cur)
			cur = nil
		}
	}

	for i, line := range lines {
		if strings.HasPrefix(line, ">") {
			flush(i)
			cur = &Block{Raw: line, Start: i}
			continue
		}
		if cur != nil {
			cur.Raw += line
		} else {
			preamble.WriteString(line)
		}
	}
	flush(len(lines))

	doc.Preamble = preamble.String()
	return doc
}

// ParseEntry parses text that must contain exactly one entry, for use
// by replace and append operations. Text before the first header or a
// second header are rejected before any document mutation happens.
func ParseEntry(text string) (Block, error) {
	doc := ParseFeatures(text)
	if strings.TrimSpace(doc.Preamble) != "" {
		return Block{}, fmt.Errorf("entry text must start with a '>' header, got %q", doc.Preamble)
	}
	switch len(doc.Blocks) {
	case 0:
		return Block{}, fmt.Errorf("entry text contains no '>' header")
	case 1:
		return doc.Blocks[0], nil
	default:
		return Block{}, fmt.Errorf("entry text contains %d entries, expected exactly one", len(doc.Blocks))
	}
}

// classifyEntry determines the kind of an entry from its header line
// and extracts the recognized fields from the whole raw text: the
// entry ID or global marker, the ~~ comment ~~, and every
// [code=Key] expression [/code] pair in source order.
func classifyEntry(raw string) (Kind, []Field) {
	header := raw
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	header = strings.TrimRight(header, "\r")

	m := headerRegex.FindStringSubmatch(header)
	if m == nil {
		return KindUnknown, nil
	}

	kind := KindUnknown
	var fields []Field
	tag, marker, rest := m[1], m[2], m[3]

	switch {
	case marker == "Global+":
		if tag == "SA" {
			kind = KindSAGlobal
		} else {
			kind = KindAAGlobal
		}
	case marker == "GlobalLast+" && tag == "SA":
		kind = KindSAGlobalLast
	case marker == "GlobalEnemy+" && tag == "SA":
		kind = KindSAGlobalEnemy
	case marker != "" && marker[0] >= '0' && marker[0] <= '9':
		if tag == "SA" {
			kind = KindSA
		} else {
			kind = KindAA
		}
		fields = append(fields, Field{Key: "ID", Value: marker})
	default:
		// Header token combination the game does not define, e.g.
		// ">AA GlobalLast+". Kept as an unknown block.
		return KindUnknown, nil
	}

	if c := commentRegex.FindStringSubmatch(rest); c != nil {
		fields = append(fields, Field{Key: "Comment", Value: c[1]})
	} else if rest = strings.TrimSpace(rest); rest != "" {
		fields = append(fields, Field{Key: "Comment", Value: rest})
	}

	for _, cm := range codeRegex.FindAllStringSubmatch(raw, -1) {
		fields = append(fields, Field{Key: cm[1], Value: cm[2]})
	}

	return kind, fields
}

// ReparseBlock re-derives a block's kind and fields from raw text
// after a free-form edit. It never fails: text that no longer matches
// the format degrades to KindUnknown, keeping every byte.
func ReparseBlock(f Format, raw string) Block {
	if f == FormatSequence {
		return parseSequenceLine(raw)
	}
	kind, fields := classifyEntry(raw)
	if !strings.HasPrefix(raw, ">") {
		kind, fields = KindUnknown, nil
	}
	return Block{Kind: kind, Raw: raw, Fields: fields}
}

// EntryID returns the numeric ID field of an entry block, or the
// global marker implied by its kind.
func EntryID(b *Block) string {
	if id, ok := b.Field("ID"); ok {
		return id
	}
	switch b.Kind {
	case KindSAGlobal, KindAAGlobal:
		return "Global+"
	case KindSAGlobalLast:
		return "GlobalLast+"
	case KindSAGlobalEnemy:
		return "GlobalEnemy+"
	default:
		return ""
	}
}

// FilterByHeaderPrefix returns the indices of blocks whose header line
// starts with prefix, e.g. ">SA" or ">AA 11".
func (d *Document) FilterByHeaderPrefix(prefix string) []int {
	var out []int
	for i := range d.Blocks {
		if strings.HasPrefix(d.Blocks[i].Header(), prefix) {
			out = append(out, i)
		}
	}
	return out
}
