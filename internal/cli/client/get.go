package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// Case represents a case from the API.
type Case struct {
	ID         string            `json:"id"`
	CaseNumber string            `json:"case_number"`
	Title      string            `json:"title"`
	DecidedAt  string            `json:"decided_at,omitempty"`
	Court      Court             `json:"court"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  string            `json:"created_at"`
	FullText   string            `json:"full_text,omitempty"`
}

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	var fullText bool

	cmd := &cobra.Command{
		Use:     "get <case_id>",
		Short:   "Get a case by ID",
		Long:    "Retrieves a case by its ID and displays its details.",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(cmd, args[0], fullText, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&fullText, "full-text", false, "Print the full judgment text")

	return cmd
}

func runGet(cmd *cobra.Command, caseID string, fullText, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/cases/%s", caseID))
	if err != nil {
		return fmt.Errorf("failed to get case: %w", err)
	}

	var c Case
	if err := json.Unmarshal(resp.Data, &c); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(c, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Case:     %s\n", c.CaseNumber)
	fmt.Printf("Title:    %s\n", c.Title)
	if c.DecidedAt != "" {
		fmt.Printf("Decided:  %s\n", c.DecidedAt)
	}
	if c.Court.Name != "" {
		fmt.Printf("Court:    %s", c.Court.Name)
		if c.Court.Jurisdiction != "" {
			fmt.Printf(" (%s)", c.Court.Jurisdiction)
		}
		fmt.Println()
	}
	fmt.Printf("ID:       %s\n", c.ID)
	if len(c.Metadata) > 0 {
		fmt.Println("Metadata:")
		for k, v := range c.Metadata {
			fmt.Printf("  %s: %s\n", k, v)
		}
	}
	if fullText {
		fmt.Printf("\n%s\n", c.FullText)
	}

	return nil
}
