// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"minidb"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "minidb",
		Short: "Embedded relational database engine",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(replCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <dir> <file.sql>",
		Short: "Execute a SQL script file against a database directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runScript(args[0], args[1])
		},
	}
}

func runScript(dir, path string) error {
	db, err := minidb.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	res, err := db.Execute(string(content))
	if err != nil {
		return fmt.Errorf("execute failed: %w", err)
	}
	printResult(res)
	return nil
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl <dir>",
		Short: "Open an interactive SQL prompt against a database directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepl(args[0])
		},
	}
}

func runRepl(dir string) error {
	db, err := minidb.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("minidb> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("minidb> ")
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		res, err := db.Execute(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			printResult(res)
		}
		fmt.Print("minidb> ")
	}
	return scanner.Err()
}

func printResult(res minidb.Result) {
	switch r := res.(type) {
	case minidb.RowSet:
		fmt.Println(strings.Join(r.Columns, " | "))
		for _, row := range r.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = v.String()
			}
			fmt.Println(strings.Join(cells, " | "))
		}
		fmt.Printf("(%d rows)\n", len(r.Rows))
	case minidb.Ack:
		fmt.Printf("%s (%d affected)\n", r.Kind, r.Affected)
	}
}
