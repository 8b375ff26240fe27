package bsmi

import "testing"

// TestExtractTag tests labeled field extraction from row blobs.
func TestExtractTag(t *testing.T) {
	t.Parallel()

	t.Run("extracts trimmed tag content", func(t *testing.T) {
		t.Parallel()

		blob := "<row><授權證號> CI450078790054 </授權證號></row>"
		if got := ExtractTag(blob, "授權證號"); got != "CI450078790054" {
			t.Errorf("got %q, expected %q", got, "CI450078790054")
		}
	})

	t.Run("returns empty string for missing tag", func(t *testing.T) {
		t.Parallel()

		blob := "<row><證書編號>CI450068790054</證書編號></row>"
		if got := ExtractTag(blob, "授權證號"); got != "" {
			t.Errorf("got %q, expected empty string", got)
		}
	})

	t.Run("returns empty string for empty blob", func(t *testing.T) {
		t.Parallel()

		if got := ExtractTag("", "授權證號"); got != "" {
			t.Errorf("got %q, expected empty string", got)
		}
	})

	t.Run("does not match a tag that merely contains the name", func(t *testing.T) {
		t.Parallel()

		blob := "<row><被授權主型式>B</被授權主型式><主型式>A</主型式></row>"
		if got := ExtractTag(blob, "主型式"); got != "A" {
			t.Errorf("got %q, expected %q", got, "A")
		}
		if got := ExtractTag(blob, "被授權主型式"); got != "B" {
			t.Errorf("got %q, expected %q", got, "B")
		}
	})

	t.Run("returns first match when tag repeats", func(t *testing.T) {
		t.Parallel()

		blob := "<主型式>first</主型式><主型式>second</主型式>"
		if got := ExtractTag(blob, "主型式"); got != "first" {
			t.Errorf("got %q, expected %q", got, "first")
		}
	})

	t.Run("matches content spanning lines", func(t *testing.T) {
		t.Parallel()

		blob := "<被授權人地址>台北市\n中正區</被授權人地址>"
		if got := ExtractTag(blob, "被授權人地址"); got != "台北市\n中正區" {
			t.Errorf("got %q, expected multi-line content", got)
		}
	})
}

// TestSplitLineBreaks tests <br> marker splitting.
func TestSplitLineBreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "plain br", input: "a<br>b<br>c", expected: 3},
		{name: "self-closing br", input: "a<br/>b<br />c", expected: 3},
		{name: "uppercase br", input: "a<BR>b", expected: 2},
		{name: "no br", input: "abc", expected: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parts := splitLineBreaks(tt.input)
			if len(parts) != tt.expected {
				t.Errorf("got %d parts, expected %d: %v", len(parts), tt.expected, parts)
			}
		})
	}
}

// TestStripTags tests markup removal.
func TestStripTags(t *testing.T) {
	t.Parallel()

	t.Run("removes nested markup", func(t *testing.T) {
		t.Parallel()

		got := stripTags(`<span class="name"><b>20W快充充電器</b>(電源供應器)</span>`)
		if got != "20W快充充電器(電源供應器)" {
			t.Errorf("got %q, expected text content only", got)
		}
	})

	t.Run("decodes entities", func(t *testing.T) {
		t.Parallel()

		if got := stripTags("A &amp; B"); got != "A & B" {
			t.Errorf("got %q, expected %q", got, "A & B")
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		if got := stripTags("  <i>x</i>  "); got != "x" {
			t.Errorf("got %q, expected %q", got, "x")
		}
	})

	t.Run("empty fragment yields empty string", func(t *testing.T) {
		t.Parallel()

		if got := stripTags(""); got != "" {
			t.Errorf("got %q, expected empty string", got)
		}
	})
}
