package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// CaseListResponse represents the list API response.
type CaseListResponse struct {
	Items   []Case `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingested cases",
		Long:  "Lists ingested cases newest first, paged with a cursor.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of cases per page")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runList(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get("/cases?" + query.Encode())
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}

	var listResp CaseListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No cases found.")
		return nil
	}

	for _, c := range listResp.Items {
		line := fmt.Sprintf("%s  %s", c.CaseNumber, c.Title)
		if c.DecidedAt != "" {
			line += fmt.Sprintf("  (%s)", c.DecidedAt)
		}
		fmt.Println(line)
		fmt.Printf("  ID: %s\n", c.ID)
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\nMore cases available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}
