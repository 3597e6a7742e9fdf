// Command screener runs the resume screening pipeline from the terminal without a database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Screen resumes against a job description with an LLM pipeline",
	Long:  "screener deconstructs a job description, scores PDF resumes against it and prints the results as JSON. The score subcommand runs the deterministic scorer over a saved fixture.",
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
