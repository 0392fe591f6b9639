package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode,omitempty"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResult represents a search result.
type SearchResult struct {
	ChunkID    string   `json:"chunk_id"`
	CaseID     string   `json:"case_id"`
	CaseNumber string   `json:"case_number"`
	CaseTitle  string   `json:"case_title"`
	Court      Court    `json:"court"`
	Section    string   `json:"section"`
	Content    string   `json:"content"`
	Citations  []string `json:"citations,omitempty"`
	Score      float64  `json:"score"`
}

// Degraded reports which hybrid sub-queries failed.
type Degraded struct {
	Vector  bool `json:"vector"`
	Lexical bool `json:"lexical"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results  []SearchResult `json:"results"`
	Mode     string         `json:"mode"`
	Degraded Degraded       `json:"degraded"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		mode string
		topK int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search case chunks",
		Long:  "Searches ingested judgments with hybrid (vector plus full-text) retrieval.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], mode, topK, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Search mode: vector or hybrid (default hybrid)")
	cmd.Flags().IntVarP(&topK, "top-k", "n", 0, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, query, mode string, topK int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	req := SearchRequest{
		Query: query,
		Mode:  mode,
		TopK:  topK,
	}

	resp, err := api.Post("/search", req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if searchResp.Degraded.Vector {
		fmt.Println("Warning: vector search degraded; results are lexical only.")
	}
	if searchResp.Degraded.Lexical {
		fmt.Println("Warning: lexical search degraded; results are vector only.")
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results (%s):\n\n", len(searchResp.Results), searchResp.Mode)
	for i, result := range searchResp.Results {
		fmt.Printf("%d. %s [%s] (%.3f)\n", i+1, result.CaseTitle, result.Section, result.Score)
		fmt.Printf("   Case: %s\n", result.CaseNumber)
		if result.Court.Name != "" {
			fmt.Printf("   Court: %s\n", result.Court.Name)
		}

		snippet := strings.ReplaceAll(result.Content, "\n", " ")
		if len(snippet) > 160 {
			snippet = snippet[:157] + "..."
		}
		fmt.Printf("   %s\n", snippet)

		if len(result.Citations) > 0 {
			fmt.Printf("   Citations: %s\n", strings.Join(result.Citations, "; "))
		}
		fmt.Printf("   Chunk: %s\n", result.ChunkID)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
