package domain

import "strings"

// Kind identifies the type of a parsed block
type Kind int

const (
	KindUnknown        Kind = iota
	KindSA                  // >SA <id>
	KindSAGlobal            // >SA Global+
	KindSAGlobalLast        // >SA GlobalLast+
	KindSAGlobalEnemy       // >SA GlobalEnemy+
	KindAA                  // >AA <id>
	KindAAGlobal            // >AA Global+
	KindInstruction         // sequence instruction line
	KindComment             // sequence // comment line
	KindBlank               // sequence blank line
)

func (k Kind) String() string {
	switch k {
	case KindSA:
		return "SA"
	case KindSAGlobal:
		return "SA Global+"
	case KindSAGlobalLast:
		return "SA GlobalLast+"
	case KindSAGlobalEnemy:
		return "SA GlobalEnemy+"
	case KindAA:
		return "AA"
	case KindAAGlobal:
		return "AA Global+"
	case KindInstruction:
		return "Instruction"
	case KindComment:
		return "Comment"
	case KindBlank:
		return "Blank"
	default:
		return "Unknown"
	}
}

// ParseKind maps a kind label back to its Kind. Unrecognized labels
// return KindUnknown.
func ParseKind(s string) Kind {
	switch strings.TrimSpace(s) {
	case "SA":
		return KindSA
	case "SA Global+":
		return KindSAGlobal
	case "SA GlobalLast+":
		return KindSAGlobalLast
	case "SA GlobalEnemy+":
		return KindSAGlobalEnemy
	case "AA":
		return KindAA
	case "AA Global+":
		return KindAAGlobal
	case "Instruction":
		return KindInstruction
	case "Comment":
		return KindComment
	case "Blank":
		return KindBlank
	default:
		return KindUnknown
	}
}

// Field is one recognized key/value pair parsed out of a block's raw
// text. Fields keep source order, so a slice rather than a map.
type Field struct {
	Key   string
	Value string
}

// Block is one addressable unit of a source file: an ability-feature
// entry or a single sequence line. Raw holds the verbatim source text,
// line terminators included, so serialization can reproduce the input
// byte for byte.
type Block struct {
	Kind   Kind
	Raw    string
	Fields []Field
	Start  int // index of the block's first line in the parent document
	End    int // index one past the block's last line
}

// Field returns the first field with the given key, and whether it exists.
func (b *Block) Field(key string) (string, bool) {
	for _, f := range b.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Header returns the first line of the block without its terminator.
func (b *Block) Header() string {
	raw := b.Raw
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimRight(raw, "\r")
}

// Format distinguishes the two on-disk syntaxes a Document can hold.
type Format int

const (
	FormatFeatures Format = iota // ability-features entry file
	FormatSequence               // line-oriented sequence file
)

func (f Format) String() string {
	if f == FormatSequence {
		return "sequence"
	}
	return "features"
}

// Document is an ordered list of blocks plus any leading text that
// precedes the first recognized block. Serialization is a pure
// function of Preamble and the blocks' raw text.
type Document struct {
	Format   Format
	Preamble string
	Blocks   []Block
}

// Serialize reassembles the document. For an untouched document the
// result is byte-identical to the parsed input.
func (d *Document) Serialize() string {
	var sb strings.Builder
	sb.WriteString(d.Preamble)
	for i := range d.Blocks {
		sb.WriteString(d.Blocks[i].Raw)
	}
	return sb.String()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{Format: d.Format, Preamble: d.Preamble}
	out.Blocks = make([]Block, len(d.Blocks))
	copy(out.Blocks, d.Blocks)
	for i := range out.Blocks {
		if d.Blocks[i].Fields != nil {
			out.Blocks[i].Fields = make([]Field, len(d.Blocks[i].Fields))
			copy(out.Blocks[i].Fields, d.Blocks[i].Fields)
		}
	}
	return out
}

// Renumber recomputes every block's Start/End line range after the
// block sequence has been mutated.
func (d *Document) Renumber() {
	line := len(splitLines(d.Preamble))
	for i := range d.Blocks {
		n := len(splitLines(d.Blocks[i].Raw))
		d.Blocks[i].Start = line
		d.Blocks[i].End = line + n
		line += n
	}
}

// Anomalies returns the indices of blocks that failed to parse as a
// recognized kind. Callers log these; they never block editing.
func (d *Document) Anomalies() []int {
	var out []int
	for i := range d.Blocks {
		if d.Blocks[i].Kind == KindUnknown {
			out = append(out, i)
		}
	}
	return out
}

// splitLines splits text into lines keeping each line's terminator
// attached, so joining the result reproduces the input exactly. A
// final line without a newline is returned as-is.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
	}
	return lines
}
