package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// SeqExtension is the file extension of sequence files.
const SeqExtension = ".seq"

var (
	instructionRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)[ \t]*(?::[ \t]*(.*))?$`)
	folderRegex      = regexp.MustCompile(`^(ef)([0-9]+)$`)
)

// ParseSequence parses a line-oriented sequence file. Every line
// becomes exactly one block; indentation (thread nesting tabs),
// comments and blank lines are preserved verbatim in the raw text.
// There is no preamble: the first line already is a block.
func ParseSequence(text string) *Document {
	doc := &Document{Format: FormatSequence}
	for i, line := range splitLines(text) {
		b := parseSequenceLine(line)
		b.Start = i
		b.End = i + 1
		doc.Blocks = append(doc.Blocks, b)
	}
	return doc
}

// ParseSequenceLine parses replacement text for a single sequence
// block. The text must be exactly one line.
func ParseSequenceLine(text string) (Block, error) {
	trimmed := strings.TrimSuffix(text, "\n")
	trimmed = strings.TrimSuffix(trimmed, "\r")
	if strings.ContainsAny(trimmed, "\r\n") {
		return Block{}, fmt.Errorf("sequence block must be a single line")
	}
	return parseSequenceLine(text), nil
}

func parseSequenceLine(line string) Block {
	b := Block{Raw: line}

	content := strings.TrimRight(line, "\r\n")
	content = strings.TrimLeft(content, " \t")

	switch {
	case content == "":
		b.Kind = KindBlank
		return b
	case strings.HasPrefix(content, "//"):
		b.Kind = KindComment
		b.Fields = []Field{{Key: "Text", Value: strings.TrimSpace(content[2:])}}
		return b
	}

	m := instructionRegex.FindStringSubmatch(content)
	if m == nil {
		b.Kind = KindUnknown
		return b
	}

	b.Kind = KindInstruction
	b.Fields = []Field{{Key: "Op", Value: m[1]}}
	if m[2] != "" {
		for _, arg := range strings.Split(m[2], ";") {
			arg = strings.TrimSpace(arg)
			if arg == "" {
				continue
			}
			if k, v, ok := strings.Cut(arg, "="); ok {
				b.Fields = append(b.Fields, Field{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
			} else {
				b.Fields = append(b.Fields, Field{Key: arg, Value: ""})
			}
		}
	}
	return b
}

// EffectFolder is one ef#### directory holding sequence files.
type EffectFolder struct {
	Name  string
	Path  string
	Files []string // sequence file names, sorted
}

// SuggestFolderName proposes the next effect-folder name for a root
// that already contains the given folder names: one past the highest
// existing number, zero-padded to the widest existing width (at least
// four, at most six digits).
func SuggestFolderName(existing []string) string {
	best := -1
	width := 4
	for _, name := range existing {
		m := folderRegex.FindStringSubmatch(strings.ToLower(name))
		if m == nil {
			continue
		}
		var n int
		fmt.Sscanf(m[2], "%d", &n)
		if n > best {
			best = n
		}
		if len(m[2]) > width {
			width = len(m[2])
		}
	}
	next := best + 1
	if w := len(fmt.Sprintf("%d", next)); w > width {
		width = w
	}
	if width > 6 {
		width = 6
	}
	return fmt.Sprintf("ef%0*d", width, next)
}

// IsEffectFolderName reports whether name looks like an ef#### folder.
func IsEffectFolderName(name string) bool {
	return folderRegex.MatchString(strings.ToLower(name))
}
