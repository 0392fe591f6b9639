// Package chunker splits judgment text into retrievable chunks. Splitting is
// pure and deterministic: identical input and configuration always produce
// byte-identical chunk boundaries and metadata.
package chunker

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/caseline-ai/caseline/internal/domain"
)

// Config controls chunk sizing. All sizes are in whitespace-delimited tokens.
type Config struct {
	ChunkSize    int // max tokens per chunk
	Overlap      int // tokens shared with the preceding chunk of the same section
	MinChunkSize int // trailing fragments below this merge into their predecessor
}

// DefaultConfig provides sane defaults for legal judgment text.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    500,
		Overlap:      50,
		MinChunkSize: 80,
	}
}

// Chunk is one bounded span of the input text with its metadata.
type Chunk struct {
	Index      int
	Section    domain.SectionType
	Content    string
	Citations  []string
	TokenCount int
	HasOverlap bool
}

// Splitter cuts text into chunks that respect section boundaries and never
// split inside a recognized citation expression.
type Splitter struct {
	cfg Config
}

// New creates a Splitter, normalizing out-of-range configuration.
func New(cfg Config) *Splitter {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 10
	}
	if cfg.MinChunkSize < 0 {
		cfg.MinChunkSize = 0
	}
	return &Splitter{cfg: cfg}
}

type sectionPattern struct {
	section domain.SectionType
	re      *regexp.Regexp
}

// Section headers common in judgments, matched in fixed order so that ties
// at the same offset resolve deterministically.
var sectionPatterns = []sectionPattern{
	{domain.SectionFacts, regexp.MustCompile(`(?i)\b(brief\s+facts|statement\s+of\s+facts|factual\s+background)\b`)},
	{domain.SectionIssues, regexp.MustCompile(`(?i)\b(issues?\s+involved|questions?\s+of\s+law|issues\s+for\s+determination)\b`)},
	{domain.SectionArguments, regexp.MustCompile(`(?i)\b(arguments\s+advanced|submissions\s+of\s+counsel|contentions\s+of\s+the\s+parties)\b`)},
	{domain.SectionAnalysis, regexp.MustCompile(`(?i)\b(analysis|discussion\s+and\s+reasoning|reasoning\s+of\s+the\s+court)\b`)},
	{domain.SectionHolding, regexp.MustCompile(`(?i)\b(holding|conclusion|final\s+order|judgment\s+of\s+the\s+court|decree)\b`)},
	{domain.SectionHeadnotes, regexp.MustCompile(`(?i)\b(head\s?notes?|syllabus|synopsis)\b`)},
}

// Citation expressions: reporter references and party-name styles. A chunk
// boundary is never placed inside any of these.
var citationPatterns = []*regexp.Regexp{
	// "2019 SCMR 1234", "410 U.S. 113", "123 F.3d 456"
	regexp.MustCompile(`\b\d{1,4}\s+[A-Z][A-Za-z0-9.]*\s+\d{1,5}\b`),
	// "[2015] AC 61", "[2008] UKHL 13"
	regexp.MustCompile(`\[\d{4}\]\s+[A-Z][A-Za-z0-9.]*\s+\d{1,5}\b`),
	// "Donoghue v. Stevenson", "State vs. Dosso"
	regexp.MustCompile(`\b[A-Z][A-Za-z']+(?:\s+[A-Z][A-Za-z']+)*\s+vs?\.?\s+[A-Z][A-Za-z']+(?:\s+[A-Z][A-Za-z']+)*`),
}

type span struct {
	start int
	end   int
}

// Split cuts the text into section-aware chunks. Text before the first
// recognized section header, or text with no headers at all, is tagged
// unclassified. Empty or whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cites := citationSpans(text)
	var chunks []Chunk
	for _, seg := range sectionSegments(text) {
		chunks = append(chunks, s.chunkSegment(text, seg.span, seg.section, cites, len(chunks))...)
	}
	return chunks
}

// SplitCitationBlocks chunks the whole text without section segmentation,
// attaching the citations each chunk contains. This mirrors Split's sizing
// rules and citation-boundary guarantees.
func (s *Splitter) SplitCitationBlocks(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	cites := citationSpans(text)
	return s.chunkSegment(text, span{0, len(text)}, domain.SectionUnclassified, cites, 0)
}

type segment struct {
	span    span
	section domain.SectionType
}

// sectionSegments locates section headers and carves the text into
// consecutive segments, each tagged with the section its header names.
func sectionSegments(text string) []segment {
	type marker struct {
		start   int
		order   int
		section domain.SectionType
	}

	var markers []marker
	for order, sp := range sectionPatterns {
		for _, loc := range sp.re.FindAllStringIndex(text, -1) {
			markers = append(markers, marker{start: loc[0], order: order, section: sp.section})
		}
	}
	if len(markers) == 0 {
		return []segment{{span: span{0, len(text)}, section: domain.SectionUnclassified}}
	}

	sort.Slice(markers, func(i, j int) bool {
		if markers[i].start != markers[j].start {
			return markers[i].start < markers[j].start
		}
		return markers[i].order < markers[j].order
	})

	// Drop duplicate markers at the same offset, keeping the first.
	dedup := markers[:1]
	for _, m := range markers[1:] {
		if m.start != dedup[len(dedup)-1].start {
			dedup = append(dedup, m)
		}
	}
	markers = dedup

	var segments []segment
	if markers[0].start > 0 {
		segments = append(segments, segment{span: span{0, markers[0].start}, section: domain.SectionUnclassified})
	}
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		segments = append(segments, segment{span: span{m.start, end}, section: m.section})
	}
	return segments
}

// citationSpans returns merged byte ranges of every citation expression.
func citationSpans(text string) []span {
	var spans []span
	for _, re := range citationPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

// tokenize returns byte offsets of whitespace-delimited tokens within seg.
func tokenize(text string, seg span) []span {
	var toks []span
	start := -1
	for i, r := range text[seg.start:seg.end] {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, span{seg.start + start, seg.start + i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, span{seg.start + start, seg.end})
	}
	return toks
}

type chunkRange struct {
	first      int // index of first token
	afterLast  int // index one past last token
	hasOverlap bool
}

func (s *Splitter) chunkSegment(text string, seg span, section domain.SectionType, cites []span, indexOffset int) []Chunk {
	toks := tokenize(text, seg)
	if len(toks) == 0 {
		return nil
	}

	var ranges []chunkRange
	i := 0
	for i < len(toks) {
		j := i + s.cfg.ChunkSize
		if j > len(toks) {
			j = len(toks)
		}
		if j < len(toks) {
			j = extendPastCitation(toks, cites, j)
		}
		ranges = append(ranges, chunkRange{first: i, afterLast: j, hasOverlap: i > 0 && len(ranges) > 0 && i < ranges[len(ranges)-1].afterLast})
		if j >= len(toks) {
			break
		}
		next := j - s.cfg.Overlap
		if next <= i {
			next = j
		}
		next = retreatToCitationStart(toks, cites, next)
		if next <= i {
			next = j
		}
		i = next
	}

	// A trailing fragment smaller than the floor folds into its predecessor
	// instead of being emitted alone.
	if len(ranges) >= 2 {
		last := ranges[len(ranges)-1]
		if last.afterLast-last.first < s.cfg.MinChunkSize {
			ranges[len(ranges)-2].afterLast = last.afterLast
			ranges = ranges[:len(ranges)-1]
		}
	}

	chunks := make([]Chunk, 0, len(ranges))
	for n, r := range ranges {
		contentStart := toks[r.first].start
		contentEnd := toks[r.afterLast-1].end
		chunks = append(chunks, Chunk{
			Index:      indexOffset + n,
			Section:    section,
			Content:    text[contentStart:contentEnd],
			Citations:  citationsWithin(text, cites, contentStart, contentEnd),
			TokenCount: r.afterLast - r.first,
			HasOverlap: r.hasOverlap,
		})
	}
	return chunks
}

// extendPastCitation advances a proposed boundary (before token j) until it no
// longer falls inside a citation span, landing on the next token boundary
// outside the expression.
func extendPastCitation(toks []span, cites []span, j int) int {
	for j < len(toks) {
		sp, ok := citationCovering(cites, toks[j-1].end, toks[j].start)
		if !ok {
			return j
		}
		for j < len(toks) && toks[j].start < sp.end {
			j++
		}
	}
	return j
}

// retreatToCitationStart moves an overlap start that lands mid-citation back
// to the citation's first token so the expression stays whole.
func retreatToCitationStart(toks []span, cites []span, next int) int {
	if next <= 0 || next >= len(toks) {
		return next
	}
	for _, sp := range cites {
		if toks[next].start > sp.start && toks[next].start < sp.end {
			k := next
			for k > 0 && toks[k-1].end > sp.start {
				k--
			}
			return k
		}
	}
	return next
}

// citationCovering reports whether a citation span straddles the gap between
// byte positions prevEnd and nextStart.
func citationCovering(cites []span, prevEnd, nextStart int) (span, bool) {
	for _, sp := range cites {
		if sp.start < prevEnd && sp.end > nextStart {
			return sp, true
		}
		if sp.start >= nextStart {
			break
		}
	}
	return span{}, false
}

// citationsWithin lists the citation expressions intersecting [start, end).
func citationsWithin(text string, cites []span, start, end int) []string {
	var out []string
	for _, sp := range cites {
		if sp.end <= start {
			continue
		}
		if sp.start >= end {
			break
		}
		out = append(out, text[sp.start:sp.end])
	}
	return out
}
