package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSequence = `// Slow, single target
SetupReflect: Delay=SFXLoaded
StartThread: Condition=IsSingleTarget ; Sync=True
	LoadSFX: SFX=Slow ; Reflect=True ; UseCamera=False
	WaitSFXLoaded: SFX=Slow ; Reflect=True
	PlaySFX: SFX=Slow ; Reflect=True
	WaitSFXDone: SFX=Slow ; Reflect=True
EndThread
ActivateReflect
WaitReflect
`

func TestParseSequenceRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"sample file", sampleSequence},
		{"empty file", ""},
		{"no trailing newline", "Wait: Time=10"},
		{"crlf line endings", "Wait: Time=10\r\nEndThread\r\n"},
		{"blank and garbage lines", "\n\t\n???not an op\nWait: Time=1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseSequence(tt.text)
			require.Equal(t, tt.text, doc.Serialize())
		})
	}
}

func TestParseSequenceBlocks(t *testing.T) {
	doc := ParseSequence(sampleSequence)
	require.Len(t, doc.Blocks, 10)

	assert.Equal(t, KindComment, doc.Blocks[0].Kind)
	text, _ := doc.Blocks[0].Field("Text")
	assert.Equal(t, "Slow, single target", text)

	load := doc.Blocks[3]
	assert.Equal(t, KindInstruction, load.Kind)
	op, _ := load.Field("Op")
	assert.Equal(t, "LoadSFX", op)
	sfx, _ := load.Field("SFX")
	assert.Equal(t, "Slow", sfx)
	refl, _ := load.Field("Reflect")
	assert.Equal(t, "True", refl)
	// Indentation survives in the raw text.
	assert.Equal(t, "\tLoadSFX: SFX=Slow ; Reflect=True ; UseCamera=False\n", load.Raw)

	bare := doc.Blocks[7]
	assert.Equal(t, KindInstruction, bare.Kind)
	op, _ = bare.Field("Op")
	assert.Equal(t, "EndThread", op)
	assert.Len(t, bare.Fields, 1)
}

func TestParseSequenceLineIndices(t *testing.T) {
	doc := ParseSequence("Wait: Time=1\nEndThread\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, 0, doc.Blocks[0].Start)
	assert.Equal(t, 1, doc.Blocks[1].Start)
	assert.Equal(t, 2, doc.Blocks[1].End)
}

func TestParseSequenceUnknownLine(t *testing.T) {
	doc := ParseSequence("???not an op\n")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, KindUnknown, doc.Blocks[0].Kind)
	assert.Equal(t, []int{0}, doc.Anomalies())
}

func TestParseSequenceLine(t *testing.T) {
	b, err := ParseSequenceLine("\tWait: Time=10\n")
	require.NoError(t, err)
	assert.Equal(t, KindInstruction, b.Kind)

	_, err = ParseSequenceLine("Wait: Time=10\nEndThread\n")
	assert.Error(t, err)
}

func TestSuggestFolderName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"empty root", nil, "ef0000"},
		{"sequential", []string{"ef0000", "ef0088", "ef0089"}, "ef0090"},
		{"ignores other dirs", []string{"ef0001", "textures", "README"}, "ef0002"},
		{"keeps wider padding", []string{"ef00123"}, "ef00124"},
		{"grows past padding", []string{"ef9999"}, "ef10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestFolderName(tt.existing))
		})
	}
}

func TestIsEffectFolderName(t *testing.T) {
	assert.True(t, IsEffectFolderName("ef0089"))
	assert.True(t, IsEffectFolderName("EF0089"))
	assert.False(t, IsEffectFolderName("effects"))
	assert.False(t, IsEffectFolderName("ef"))
}
