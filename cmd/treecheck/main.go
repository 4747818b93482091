// Package main implements treecheck, a CLI for inspecting and validating
// hierarchy definition files without running the server.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
	"github.com/lootkeep/stacksort/internal/infra/treeload"
	"github.com/lootkeep/stacksort/internal/platform/logger"
)

var treePath string

var rootCmd = &cobra.Command{
	Use:   "treecheck",
	Short: "Inspect and validate stacksort hierarchy definitions",
	Long: `treecheck loads a hierarchy definition file the same way the server
does and answers questions about it: does it parse, how deep is a keyword,
what order does it resolve to.`,
	SilenceUsage: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the definition and report what it registered",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tree, stats, err := loadTree()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d categories, %d items, %d aliases (root %q)\n",
			stats.Categories, stats.Items, stats.Aliases, tree.RootCategory().Name())
		return nil
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the loaded hierarchy as an indented tree",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tree, _, err := loadTree()
		if err != nil {
			return err
		}
		dumpCategory(cmd, tree.RootCategory(), 0)
		return nil
	},
}

var orderCmd = &cobra.Command{
	Use:   "order <keyword>",
	Short: "Resolve a keyword to its sort order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, err := loadTree()
		if err != nil {
			return err
		}
		keyword := args[0]
		if !tree.IsKeywordValid(keyword) {
			return fmt.Errorf("keyword %q names neither an item nor a category", keyword)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tree.KeywordOrder(keyword))
		return nil
	},
}

var depthCmd = &cobra.Command{
	Use:   "depth <keyword>",
	Short: "Resolve a keyword to its depth in the hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, err := loadTree()
		if err != nil {
			return err
		}
		keyword := args[0]
		d := tree.KeywordDepth(keyword)
		if d == itemtree.DepthNotFound {
			return fmt.Errorf("keyword %q not found in the hierarchy", keyword)
		}
		fmt.Fprintln(cmd.OutOrStdout(), d)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <type> [variant]",
	Short: "Resolve a (type, variant) identity to its tree entries",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, err := loadTree()
		if err != nil {
			return err
		}
		typeID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid type id %q: %w", args[0], err)
		}
		variant := itemtree.VariantWildcard
		if len(args) == 2 {
			variant, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid variant %q: %w", args[1], err)
			}
		}
		if tree.IsItemUnknown(typeID, variant) {
			fmt.Fprintln(cmd.OutOrStdout(), "identity not registered; entries would be synthesized:")
		}
		for _, it := range tree.ResolveItems(typeID, variant) {
			fmt.Fprintln(cmd.OutOrStdout(), it.String())
		}
		return nil
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print a randomly picked registered item",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tree, _, err := loadTree()
		if err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		fmt.Fprintln(cmd.OutOrStdout(), tree.RandomItem(rng).String())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&treePath, "tree", "t", "tree.yaml", "hierarchy definition file")
	rootCmd.AddCommand(validateCmd, dumpCmd, orderCmd, depthCmd, resolveCmd, randomCmd)
}

func loadTree() (*itemtree.Tree, treeload.Stats, error) {
	tree := itemtree.NewTree(logger.NewLogger())
	stats, err := treeload.LoadFile(treePath, tree)
	if err != nil {
		return nil, treeload.Stats{}, err
	}
	return tree, stats, nil
}

func dumpCategory(cmd *cobra.Command, c *itemtree.Category, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s (order %d)\n", indent, c.Name(), c.Order())
	for _, group := range c.ItemGroups() {
		for _, it := range group {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  - %s\n", indent, it.String())
		}
	}
	for _, sub := range c.Subcategories() {
		dumpCategory(cmd, sub, depth+1)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
