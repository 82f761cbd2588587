package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyToken string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history [room]",
	Short: "Fetch recent message history for a room",
	Long: `Fetches the most recent messages for a room from a running parley
server and prints them oldest-first. Defaults to the "general" room.
A bearer token from /api/auth/login is required.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room := "general"
		if len(args) > 0 {
			room = args[0]
		}

		endpoint := fmt.Sprintf("%s/api/messages/%s?limit=%s",
			serverURL, url.PathEscape(room), strconv.Itoa(historyLimit))

		req, err := http.NewRequest(http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+historyToken)

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned %s: %s", resp.Status, body)
		}

		var messages []struct {
			SenderName string    `json:"senderName"`
			Content    string    `json:"content"`
			CreatedAt  time.Time `json:"createdAt"`
		}
		if err := json.Unmarshal(body, &messages); err != nil {
			return fmt.Errorf("failed to decode messages: %w", err)
		}

		for _, msg := range messages {
			fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format("15:04:05"), msg.SenderName, msg.Content)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyToken, "token", "", "Bearer token for the API")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum number of messages to fetch")
	_ = historyCmd.MarkFlagRequired("token")
	rootCmd.AddCommand(historyCmd)
}
