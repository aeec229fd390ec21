// Package main provides the entry point for the company analyst CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Company evaluation report generator",
	Long:  "Analyst turns collected company evidence (postings, reviews, salaries, interviews, benefits, news) into structured go/no-go evaluation reports for job seekers.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
