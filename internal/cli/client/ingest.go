package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// Court represents the court block of an ingestion request.
type Court struct {
	Name         string `json:"name,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	BenchType    string `json:"bench_type,omitempty"`
}

// IngestRequest represents a single-case ingestion request.
type IngestRequest struct {
	CaseNumber string            `json:"case_number"`
	Title      string            `json:"title"`
	DecidedAt  string            `json:"decided_at,omitempty"`
	Court      Court             `json:"court"`
	FullText   string            `json:"full_text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// BatchIngestRequest represents a batch ingestion request.
type BatchIngestRequest struct {
	Cases []IngestRequest `json:"cases"`
}

// BatchItem represents one result of a batch ingestion response.
type BatchItem struct {
	CaseNumber string `json:"case_number"`
	CaseID     string `json:"case_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchIngestResponse represents the batch ingestion API response.
type BatchIngestResponse struct {
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		caseNumber   string
		title        string
		decidedAt    string
		courtName    string
		jurisdiction string
		benchType    string
		metadata     []string
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest judgment documents",
		Long: `Ingests one or more judgment text files. With a single file the case
number and title flags apply to it; with multiple files each file's name
(without extension) is used as the case number and title.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			meta, err := parseMetadata(metadata)
			if err != nil {
				return err
			}

			court := Court{Name: courtName, Jurisdiction: jurisdiction, BenchType: benchType}

			if len(args) == 1 {
				return runIngestOne(cmd, args[0], caseNumber, title, decidedAt, court, meta, outputJSON)
			}
			if caseNumber != "" || title != "" {
				return fmt.Errorf("--case-number and --title only apply to a single file")
			}
			return runIngestBatch(cmd, args, decidedAt, court, meta, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&caseNumber, "case-number", "c", "", "Case number (defaults to the file name)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Case title (defaults to the file name)")
	cmd.Flags().StringVarP(&decidedAt, "decided-at", "d", "", "Decision date (e.g. 2019-05-26)")
	cmd.Flags().StringVar(&courtName, "court", "", "Court name")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "Court jurisdiction")
	cmd.Flags().StringVar(&benchType, "bench", "", "Bench type")
	cmd.Flags().StringArrayVarP(&metadata, "metadata", "m", nil, "Metadata entry as key=value (repeatable)")

	return cmd
}

func parseMetadata(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q (expected key=value)", entry)
		}
		meta[key] = value
	}
	return meta, nil
}

func readIngestRequest(path, caseNumber, title, decidedAt string, court Court, meta map[string]string) (IngestRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return IngestRequest{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if caseNumber == "" {
		caseNumber = stem
	}
	if title == "" {
		title = stem
	}

	return IngestRequest{
		CaseNumber: caseNumber,
		Title:      title,
		DecidedAt:  decidedAt,
		Court:      court,
		FullText:   string(content),
		Metadata:   meta,
	}, nil
}

func runIngestOne(cmd *cobra.Command, path, caseNumber, title, decidedAt string, court Court, meta map[string]string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	req, err := readIngestRequest(path, caseNumber, title, decidedAt, court, meta)
	if err != nil {
		return err
	}

	resp, err := api.Post("/cases", req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var created Case
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(created, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Ingested %s\n", created.CaseNumber)
		fmt.Printf("ID: %s\n", created.ID)
	}

	return nil
}

func runIngestBatch(cmd *cobra.Command, paths []string, decidedAt string, court Court, meta map[string]string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	batch := BatchIngestRequest{Cases: make([]IngestRequest, 0, len(paths))}
	for _, path := range paths {
		req, err := readIngestRequest(path, "", "", decidedAt, court, meta)
		if err != nil {
			return err
		}
		batch.Cases = append(batch.Cases, req)
	}

	resp, err := api.Post("/cases/batch", batch)
	if err != nil {
		return fmt.Errorf("batch ingest failed: %w", err)
	}

	var result BatchIngestResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Ingested %d of %d cases\n", result.Succeeded, len(result.Results))
	for _, item := range result.Results {
		if item.Error != "" {
			fmt.Printf("  %s: FAILED (%s)\n", item.CaseNumber, item.Error)
		} else {
			fmt.Printf("  %s: %s\n", item.CaseNumber, item.CaseID)
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d case(s) failed to ingest", result.Failed)
	}
	return nil
}
