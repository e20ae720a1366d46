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
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bancoledger-cli",
		Short: "BancoLedger CLI tool",
		Long:  `A command line interface for interacting with the BancoLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BancoLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token from a previous login")

	rootCmd.AddCommand(
		createAccountCmd(),
		loginCmd(),
		balanceCmd(),
		movementCmd(),
		transferCmd(),
		healthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createAccountCmd() *cobra.Command {
	var holderName, cpf, password string

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Open a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts", map[string]any{
				"holder_name": holderName,
				"cpf":         cpf,
				"password":    password,
			})
		},
	}

	cmd.Flags().StringVar(&holderName, "name", "", "Account holder name")
	cmd.Flags().StringVar(&cpf, "cpf", "", "Holder CPF")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("cpf")
	cmd.MarkFlagRequired("password")

	return cmd
}

func loginCmd() *cobra.Command {
	var number int64
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/login", map[string]any{
				"number":   number,
				"password": password,
			})
		},
	}

	cmd.Flags().Int64Var(&number, "number", 0, "Account number")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.MarkFlagRequired("number")
	cmd.MarkFlagRequired("password")

	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the authenticated account's balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/balance")
		},
	}
}

func movementCmd() *cobra.Command {
	var requestID, movementType, amount string
	var accountNumber int64

	cmd := &cobra.Command{
		Use:   "movement",
		Short: "Record a credit or debit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/movements", map[string]any{
				"request_id":     requestID,
				"account_number": accountNumber,
				"type":           movementType,
				"amount":         json.Number(amount),
			})
		},
	}

	cmd.Flags().StringVar(&requestID, "request-id", "", "Idempotency request ID")
	cmd.Flags().Int64Var(&accountNumber, "account", 0, "Account number")
	cmd.Flags().StringVar(&movementType, "type", "", "Movement type: C or D")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount")
	cmd.MarkFlagRequired("request-id")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func transferCmd() *cobra.Command {
	var requestID, amount string
	var origin, destination int64

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer funds between accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/transfers", map[string]any{
				"request_id":  requestID,
				"origin":      origin,
				"destination": destination,
				"amount":      json.Number(amount),
			})
		},
	}

	cmd.Flags().StringVar(&requestID, "request-id", "", "Idempotency request ID")
	cmd.Flags().Int64Var(&origin, "origin", 0, "Origin account number")
	cmd.Flags().Int64Var(&destination, "destination", 0, "Destination account number")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount")
	cmd.MarkFlagRequired("request-id")
	cmd.MarkFlagRequired("origin")
	cmd.MarkFlagRequired("destination")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check service readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/ready")
		},
	}
}

func postJSON(path string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return doRequest(req)
}

func getJSON(path string) error {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return err
	}

	return doRequest(req)
}

func doRequest(req *http.Request) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNoContent {
		fmt.Printf("OK (Status: %d)\n", resp.StatusCode)
		return nil
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		fmt.Printf("Status: %d\n%s\n", resp.StatusCode, string(body))
		return nil
	}

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\n", resp.StatusCode)
	}
	printJSON(parsed)

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
