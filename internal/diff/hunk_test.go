package diff

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHunk(t *testing.T) {
	tests := []struct {
		name string
		hunk DiffHunk
		want []DiffLine
	}{
		{
			name: "empty content",
			hunk: DiffHunk{OldStart: 1, NewStart: 1},
			want: []DiffLine{},
		},
		{
			name: "additions only",
			hunk: DiffHunk{OldStart: 1, OldLines: 0, NewStart: 1, NewLines: 2, Content: "+a\n+b"},
			want: []DiffLine{
				{Type: LineAddition, Content: "a", NewLineNumber: intPtr(1)},
				{Type: LineAddition, Content: "b", NewLineNumber: intPtr(2)},
			},
		},
		{
			name: "context only",
			hunk: DiffHunk{OldStart: 1, OldLines: 2, NewStart: 1, NewLines: 2, Content: " x\n y"},
			want: []DiffLine{
				{Type: LineContext, Content: "x", OldLineNumber: intPtr(1), NewLineNumber: intPtr(1)},
				{Type: LineContext, Content: "y", OldLineNumber: intPtr(2), NewLineNumber: intPtr(2)},
			},
		},
		{
			name: "mixed",
			hunk: DiffHunk{OldStart: 5, OldLines: 2, NewStart: 7, NewLines: 2, Content: " ctx\n-old\n+new"},
			want: []DiffLine{
				{Type: LineContext, Content: "ctx", OldLineNumber: intPtr(5), NewLineNumber: intPtr(7)},
				{Type: LineDeletion, Content: "old", OldLineNumber: intPtr(6)},
				{Type: LineAddition, Content: "new", NewLineNumber: intPtr(8)},
			},
		},
		{
			name: "header echo kept verbatim",
			hunk: DiffHunk{OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1, Content: "@@ -1,1 +1,1 @@\n content"},
			want: []DiffLine{
				{Type: LineHeader, Content: "@@ -1,1 +1,1 @@"},
				{Type: LineContext, Content: "content", OldLineNumber: intPtr(1), NewLineNumber: intPtr(1)},
			},
		},
		{
			name: "header does not advance counters",
			hunk: DiffHunk{OldStart: 10, NewStart: 20, Content: "@@ -10,1 +20,1 @@\n-a\n@@ -11,0 +20,1 @@\n+b"},
			want: []DiffLine{
				{Type: LineHeader, Content: "@@ -10,1 +20,1 @@"},
				{Type: LineDeletion, Content: "a", OldLineNumber: intPtr(10)},
				{Type: LineHeader, Content: "@@ -11,0 +20,1 @@"},
				{Type: LineAddition, Content: "b", NewLineNumber: intPtr(20)},
			},
		},
		{
			name: "unknown marker treated as context",
			hunk: DiffHunk{OldStart: 3, NewStart: 4, Content: `\ No newline at end of file` + "\n+z"},
			want: []DiffLine{
				{Type: LineContext, Content: " No newline at end of file", OldLineNumber: intPtr(3), NewLineNumber: intPtr(4)},
				{Type: LineAddition, Content: "z", NewLineNumber: intPtr(5)},
			},
		},
		{
			name: "trailing newline yields empty context line",
			hunk: DiffHunk{OldStart: 1, NewStart: 1, Content: "-gone\n"},
			want: []DiffLine{
				{Type: LineDeletion, Content: "gone", OldLineNumber: intPtr(1)},
				{Type: LineContext, Content: "", OldLineNumber: intPtr(2), NewLineNumber: intPtr(1)},
			},
		},
		{
			name: "multibyte unknown marker stripped as one character",
			hunk: DiffHunk{OldStart: 1, NewStart: 1, Content: "·dot"},
			want: []DiffLine{
				{Type: LineContext, Content: "dot", OldLineNumber: intPtr(1), NewLineNumber: intPtr(1)},
			},
		},
		{
			name: "declared counts are not validated",
			hunk: DiffHunk{OldStart: 1, OldLines: 99, NewStart: 1, NewLines: 0, Content: "+only"},
			want: []DiffLine{
				{Type: LineAddition, Content: "only", NewLineNumber: intPtr(1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHunk(tt.hunk)
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("ParseHunk() mismatch (-want +got):\n%s", d)
			}
		})
	}
}

var propertyHunks = []DiffHunk{
	{OldStart: 1, NewStart: 1, Content: "+a\n+b"},
	{OldStart: 12, NewStart: 14, Content: " a\n-b\n-c\n+d\n d\n+e\n f"},
	{OldStart: 0, NewStart: 1, Content: "@@ -0,0 +1,3 @@\n+x\n+y\n+z"},
	{OldStart: 100, NewStart: 90, Content: "-1\n-2\n 3\n@@ -104,1 +91,1 @@\n 4\n+5"},
}

func TestParseHunk_Deterministic(t *testing.T) {
	for _, h := range propertyHunks {
		assert.Equal(t, ParseHunk(h), ParseHunk(h))
	}
}

func TestParseHunk_LengthMatchesRawLines(t *testing.T) {
	for _, h := range propertyHunks {
		assert.Len(t, ParseHunk(h), strings.Count(h.Content, "\n")+1, h.Content)
	}
}

func TestParseHunk_CountersStrictlyIncrease(t *testing.T) {
	for _, h := range propertyHunks {
		lastOld, lastNew := h.OldStart-1, h.NewStart-1
		for _, l := range ParseHunk(h) {
			if l.OldLineNumber != nil {
				require.Equal(t, lastOld+1, *l.OldLineNumber, "old side of %q", h.Content)
				lastOld = *l.OldLineNumber
			}
			if l.NewLineNumber != nil {
				require.Equal(t, lastNew+1, *l.NewLineNumber, "new side of %q", h.Content)
				lastNew = *l.NewLineNumber
			}
		}
	}
}

func TestParseHunk_MarkerRoundTrip(t *testing.T) {
	for _, h := range propertyHunks {
		raw := strings.Split(h.Content, "\n")
		for i, l := range ParseHunk(h) {
			if l.Type == LineHeader {
				assert.Equal(t, raw[i], l.Content)
				continue
			}
			assert.Equal(t, raw[i], l.Type.Marker()+l.Content)
		}
	}
}

func TestParseHunk_NumberPresence(t *testing.T) {
	h := DiffHunk{OldStart: 1, NewStart: 1, Content: "@@ -1,2 +1,2 @@\n a\n-b\n+c"}
	for _, l := range ParseHunk(h) {
		switch l.Type {
		case LineHeader:
			assert.Nil(t, l.OldLineNumber)
			assert.Nil(t, l.NewLineNumber)
		case LineAddition:
			assert.Nil(t, l.OldLineNumber)
			assert.NotNil(t, l.NewLineNumber)
		case LineDeletion:
			assert.NotNil(t, l.OldLineNumber)
			assert.Nil(t, l.NewLineNumber)
		case LineContext:
			assert.NotNil(t, l.OldLineNumber)
			assert.NotNil(t, l.NewLineNumber)
		}
	}
}
