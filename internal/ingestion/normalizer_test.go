package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CollapsesInteriorWhitespace(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer()
	result := n.Normalize("The   covered\tperson  shall comply.")

	assert.Equal(t, "The covered person shall comply.", result.Normalized)
}

func TestNormalize_StandardizesLineEndings(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer()
	result := n.Normalize("first line\r\nsecond line\rthird line")

	assert.NotContains(t, result.Normalized, "\r")
	assert.Equal(t, "first line\nsecond line\nthird line", result.Normalized)
}

func TestNormalize_PreservesParagraphBreaks(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer()
	result := n.Normalize("paragraph one\n\n\n\n\nparagraph two")

	assert.Equal(t, "paragraph one\n\nparagraph two", result.Normalized)
}

func TestNormalize_UnicodeCompatibilityFolding(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer()
	// U+FB01 is the "fi" ligature; NFKC expands it to two code points.
	result := n.Normalize("the ﬁrm shall ﬁle reports")

	assert.Contains(t, result.Normalized, "firm")
	assert.Contains(t, result.Normalized, "file")
}

func TestNormalize_RewritesCitationAbbreviations(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer()
	result := n.Normalize("See 15 U.S.C. 78a and 17 C.F.R. 240.10b-5 and 88 Fed. Reg. 1234.")

	assert.Contains(t, result.Normalized, "15 USC 78a")
	assert.Contains(t, result.Normalized, "17 CFR 240.10b-5")
	assert.Contains(t, result.Normalized, "88 FedReg 1234")
}

func TestNormalize_CitationRemovalOption(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer(WithCitationRemoval())
	result := n.Normalize("Firms must register. [12] The rule was adopted (2019) last year.")

	assert.NotContains(t, result.Normalized, "[12]")
	assert.NotContains(t, result.Normalized, "(2019)")
}

func TestNormalize_LowercaseOption(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer(WithLowercase())
	result := n.Normalize("The Covered Person SHALL comply.")

	assert.Equal(t, strings.ToLower(result.Normalized), result.Normalized)
}

func TestNormalize_OriginalIsPreserved(t *testing.T) {
	t.Parallel()

	raw := "Raw    text\r\nwith   mess"
	n := NewTextNormalizer()
	result := n.Normalize(raw)

	assert.Equal(t, raw, result.Original)
	assert.NotEqual(t, raw, result.Normalized)
}

func TestNormalize_WordAndSentenceCounts(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer()
	result := n.Normalize("One two three. Four five! Six seven?")

	assert.Equal(t, 7, result.WordCount)
	assert.Equal(t, 3, result.SentenceCount)
}

func TestNormalize_ExtractsLabelledSections(t *testing.T) {
	t.Parallel()

	text := "Section 1\nAll persons must register with the commission.\n" +
		"Section 2\nRegistered persons shall file annual reports."

	n := NewTextNormalizer()
	result := n.Normalize(text)

	require.Len(t, result.Sections, 2)
	assert.Equal(t, "1", result.Sections[0].ID)
	assert.Equal(t, "2", result.Sections[1].ID)
	assert.Contains(t, result.Sections[0].FullContent, "must register")
	assert.Contains(t, result.Sections[1].FullContent, "annual reports")
}

func TestNormalize_ExtractsArticleHeaders(t *testing.T) {
	t.Parallel()

	text := "Article 12\nData controllers shall provide transparent information."

	n := NewTextNormalizer()
	result := n.Normalize(text)

	require.Len(t, result.Sections, 1)
	assert.Equal(t, "12", result.Sections[0].ID)
}

func TestNormalize_DottedSectionIDs(t *testing.T) {
	t.Parallel()

	text := "Section 3.2.1\nNo covered person shall misrepresent holdings."

	n := NewTextNormalizer()
	result := n.Normalize(text)

	require.Len(t, result.Sections, 1)
	assert.Equal(t, "3.2.1", result.Sections[0].ID)
}

func TestNormalize_SectionPreviewTruncated(t *testing.T) {
	t.Parallel()

	long := "Section 1\n" + strings.Repeat("compliance obligations apply broadly ", 40)

	n := NewTextNormalizer()
	result := n.Normalize(long)

	require.Len(t, result.Sections, 1)
	s := result.Sections[0]
	assert.True(t, strings.HasSuffix(s.Content, "..."))
	assert.Greater(t, len(s.FullContent), len(s.Content))
}

func TestNormalize_NoSections(t *testing.T) {
	t.Parallel()

	n := NewTextNormalizer()
	result := n.Normalize("Plain prose with no structural markers at all")

	assert.Empty(t, result.Sections)
}

func TestDeduplicateSections_KeepsMoreSpecificID(t *testing.T) {
	t.Parallel()

	sections := []Section{
		{ID: "1", Start: 0, End: 100},
		{ID: "1.2", Start: 10, End: 100},
	}
	out := deduplicateSections(sections)

	require.Len(t, out, 1)
	assert.Equal(t, "1.2", out[0].ID)
}

func TestDeduplicateSections_KeepsNonOverlapping(t *testing.T) {
	t.Parallel()

	sections := []Section{
		{ID: "1", Start: 0, End: 50},
		{ID: "2", Start: 50, End: 100},
	}
	out := deduplicateSections(sections)

	assert.Len(t, out, 2)
}
