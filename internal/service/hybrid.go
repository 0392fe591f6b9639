package service

import "sort"

// fuseMatches merges vector and lexical hits into one ranking. Each side's
// scores are min-max normalized to [0, 1] first, then combined per chunk as a
// weighted sum; a chunk absent from one side contributes 0 for it. The result
// is deduplicated by chunk and ordered by blended score descending, with case
// ID then chunk ID breaking ties so the ranking is a total order.
func fuseMatches(vectorHits, lexicalHits []*ChunkMatch, vectorWeight, lexicalWeight float64) []SearchResult {
	vectorNorm := minMaxNormalize(vectorHits)
	lexicalNorm := minMaxNormalize(lexicalHits)

	byChunk := make(map[string]*ChunkMatch, len(vectorHits)+len(lexicalHits))
	blended := make(map[string]float64, len(vectorHits)+len(lexicalHits))

	for _, m := range vectorHits {
		byChunk[m.ChunkID] = m
		blended[m.ChunkID] += vectorWeight * vectorNorm[m.ChunkID]
	}
	for _, m := range lexicalHits {
		if _, seen := byChunk[m.ChunkID]; !seen {
			byChunk[m.ChunkID] = m
		}
		blended[m.ChunkID] += lexicalWeight * lexicalNorm[m.ChunkID]
	}

	results := make([]SearchResult, 0, len(byChunk))
	for chunkID, m := range byChunk {
		results = append(results, matchToResult(m, blended[chunkID]))
	}
	sortResults(results)
	return results
}

// minMaxNormalize maps each hit's score into [0, 1] within its own result
// set. A constant set (including a single hit) normalizes to 1.
func minMaxNormalize(hits []*ChunkMatch) map[string]float64 {
	norm := make(map[string]float64, len(hits))
	if len(hits) == 0 {
		return norm
	}

	min, max := hits[0].Score, hits[0].Score
	for _, h := range hits[1:] {
		if h.Score < min {
			min = h.Score
		}
		if h.Score > max {
			max = h.Score
		}
	}

	for _, h := range hits {
		if max > min {
			norm[h.ChunkID] = (h.Score - min) / (max - min)
		} else {
			norm[h.ChunkID] = 1
		}
	}
	return norm
}

func sortResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].CaseID != results[j].CaseID {
			return results[i].CaseID < results[j].CaseID
		}
		return results[i].ChunkID < results[j].ChunkID
	})
}
