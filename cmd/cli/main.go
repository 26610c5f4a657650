package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "banksync-cli",
		Short: "Banksync CLI tool",
		Long:  `A command line interface for driving the banksync API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the banksync API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("BANKSYNC_TOKEN"), "Bearer token (defaults to BANKSYNC_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current sync run status",
		Run: func(cmd *cobra.Command, args []string) {
			showStatus(false)
		},
	}

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the current run's log tail",
		Run: func(cmd *cobra.Command, args []string) {
			showStatus(true)
		},
	}

	var fromDate, toDate string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a sync run",
		Run: func(cmd *cobra.Command, args []string) {
			startSync(fromDate, toDate)
		},
	}
	startCmd.Flags().StringVar(&fromDate, "from", "", "Fetch window start (YYYY-MM-DD)")
	startCmd.Flags().StringVar(&toDate, "to", "", "Fetch window end (YYYY-MM-DD)")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running sync",
		Run: func(cmd *cobra.Command, args []string) {
			stopSync()
		},
	}

	rootCmd.AddCommand(statusCmd, logsCmd, startCmd, stopCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type statusResponse struct {
	RunID     string   `json:"run_id"`
	Status    string   `json:"status"`
	LastError string   `json:"last_error"`
	Logs      []string `json:"logs"`
}

func request(method, path string, body any) []byte {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(payload))
		os.Exit(1)
	}
	return payload
}

func showStatus(withLogs bool) {
	payload := request(http.MethodGet, "/api/status", nil)

	var status statusResponse
	if err := json.Unmarshal(payload, &status); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Status: %s\n", status.Status)
	if status.RunID != "" {
		fmt.Printf("Run: %s\n", status.RunID)
	}
	if status.LastError != "" {
		fmt.Printf("Last error: %s\n", status.LastError)
	}
	if withLogs {
		for _, line := range status.Logs {
			fmt.Println(line)
		}
	}
}

func startSync(fromDate, toDate string) {
	body := map[string]string{}
	if fromDate != "" {
		body["from_date"] = fromDate
	}
	if toDate != "" {
		body["to_date"] = toDate
	}

	payload := request(http.MethodPost, "/api/sync/start", body)

	var status statusResponse
	if err := json.Unmarshal(payload, &status); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sync started (run %s)\n", status.RunID)
}

func stopSync() {
	request(http.MethodPost, "/api/sync/stop", nil)
	fmt.Println("Sync stopped")
}
