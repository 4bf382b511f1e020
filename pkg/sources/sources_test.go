package sources

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestExtractKBID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"underscore separator", "KB_000123456.pdf", "000123456", true},
		{"too few digits", "kb-42.txt", "", false},
		{"no id", "no id here", "", false},
		{"all zeros kept", "KB0000000", "000000000", true},
		{"empty", "", "", false},
		{"lower case dash", "kb-123.pdf", "000000123", true},
		{"mixed case no separator", "Kb98765 Release Notes", "000098765", true},
		{"embedded mid-string", "Chromeleon_KB_000567890_fix.pdf", "000567890", true},
		{"first match wins", "KB_111 and KB_222222", "000000111", true},
		{"longer than nine digits not truncated", "KB_01234567890123", "1234567890123", true},
		{"exactly nine digits", "KB_123456789", "123456789", true},
		{"double separator does not match", "KB__123", "", false},
		{"short run then valid run", "KB_12 KB-345", "000000345", true},
		{"three zeros", "KB_000", "000000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractKBID(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"source first", Record{"source": "a", "title": "b"}, "a"},
		{"title when no source", Record{"title": "b", "file": "c"}, "b"},
		{"file", Record{"file": "c", "filename": "d"}, "c"},
		{"filename", Record{"filename": "d"}, "d"},
		{"null skipped", Record{"source": nil, "title": "b"}, "b"},
		{"empty string skipped", Record{"source": "", "title": "b"}, "b"},
		{"all empty", Record{"source": "", "title": ""}, ""},
		{"none", Record{"snippet": "text"}, ""},
		{"nil record", nil, ""},
		{"non-string value", Record{"source": 42.0}, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.rec))
		})
	}
}

func TestAnnotate_DedupesFirstWins(t *testing.T) {
	got := Annotate([]Record{
		{"source": "A"},
		{"title": "A"},
		{"file": "B"},
	})

	want := []Annotated{
		{DisplayName: "A"},
		{DisplayName: "B"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Annotate mismatch (-want +got):\n%s", diff)
	}
}

func TestAnnotate_Links(t *testing.T) {
	got := Annotate([]Record{
		{"source": "KB_000123456.pdf", "snippet": "first"},
		{"source": "KB_000123456.pdf", "snippet": "second chunk"},
		{"title": "manual.pdf"},
		{"snippet": "orphan"},
		{"snippet": "another orphan"},
	})

	want := []Annotated{
		{
			DisplayName: "KB_000123456.pdf",
			KBID:        "000123456",
			ViewURL:     "https://resource.digital.thermofisher.com/kb/article.aspx?n=000123456",
			DownloadURL: "/download_kb?kb=000123456",
		},
		{DisplayName: "manual.pdf"},
		{DisplayName: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Annotate mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got[0].HasKB())
	assert.False(t, got[1].HasKB())
}

func TestAnnotate_EmptyNameFallsThrough(t *testing.T) {
	got := Annotate([]Record{
		{"source": "", "title": "KB_123 manual"},
		{"title": "other"},
	})

	want := []Annotated{
		{
			DisplayName: "KB_123 manual",
			KBID:        "000000123",
			ViewURL:     "https://resource.digital.thermofisher.com/kb/article.aspx?n=000000123",
			DownloadURL: "/download_kb?kb=000000123",
		},
		{DisplayName: "other"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Annotate mismatch (-want +got):\n%s", diff)
	}
}

func TestAnnotate_Empty(t *testing.T) {
	assert.Empty(t, Annotate(nil))
	assert.Empty(t, Annotate([]Record{}))
}

func TestAnnotate_Properties(t *testing.T) {
	input := []Record{
		{"source": "KB-1001 Install"},
		{"filename": "KB_0042000"},
		{"title": "KB-1001 Install"},
		{"file": "kb999.pdf"},
		{"source": "notes.txt"},
		{"source": "KB_0042000"},
	}

	first := Annotate(input)
	second := Annotate(input)
	assert.Equal(t, first, second, "annotate must be deterministic")
	assert.LessOrEqual(t, len(first), len(input))

	names := map[string]bool{}
	for _, a := range first {
		assert.False(t, names[a.DisplayName], "duplicate display name %q", a.DisplayName)
		names[a.DisplayName] = true

		if a.HasKB() {
			assert.Len(t, a.KBID, 9)
			assert.True(t, strings.HasSuffix(a.ViewURL, a.KBID))
			assert.True(t, strings.HasSuffix(a.DownloadURL, a.KBID))
		} else {
			assert.Empty(t, a.ViewURL)
			assert.Empty(t, a.DownloadURL)
		}
	}
}

func TestAnnotator_CustomBases(t *testing.T) {
	a := NewAnnotator("https://kb.internal/view?id=", "https://backend/download_kb?kb=")
	got := a.AnnotateName("KB_555")

	assert.Equal(t, "https://kb.internal/view?id=000000555", got.ViewURL)
	assert.Equal(t, "https://backend/download_kb?kb=000000555", got.DownloadURL)
}

func TestAnnotate_ConcurrentUse(t *testing.T) {
	input := []Record{{"source": "KB_123"}, {"source": "KB_123"}, {"title": "x"}}
	want := Annotate(input)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Annotate(input))
		}()
	}
	wg.Wait()
}

func TestNormalizeKBID(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"123456", "000123456", true},
		{" 000123456 ", "000123456", true},
		{"KB_77777", "000077777", true},
		{"12", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeKBID(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
