// Package main - scenario_runner.go
// Executable to run the sorting stack's stress scenarios.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lootkeep/stacksort/test"
)

func main() {
	fmt.Println("STACKSORT - SCENARIO TEST SUITE")
	fmt.Println("===============================")

	fmt.Println("\nStarting scenario: The Chaotic Chest...")
	chestTest, err := test.NewChaoticChestTest()
	if err != nil {
		fmt.Printf("Failed to build scenario harness: %v\n", err)
		os.Exit(1)
	}
	chestTest.RunAll()

	// Summary
	results := chestTest.GetResults()
	passed := 0
	failed := 0

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SCENARIO RESULTS")
	fmt.Println(strings.Repeat("=", 60))
	for _, r := range results {
		status := "PASS"
		if r.Passed {
			passed++
		} else {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s\n", status, r.ScenarioName)
		fmt.Printf("      input:    %s\n", r.Input)
		fmt.Printf("      expected: %s\n", r.Expected)
		fmt.Printf("      actual:   %s\n", r.Actual)
		fmt.Printf("      %s\n", r.Reason)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("   Passed: %d\n", passed)
	fmt.Printf("   Failed: %d\n", failed)

	if failed > 0 {
		fmt.Println("\nThe sorting stack requires recalibration")
		os.Exit(1)
	}
	fmt.Println("\nThe sorting stack is ready for deployment")
}
