package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/GTDGit/gtd_catalog/internal/catalog"
	"github.com/GTDGit/gtd_catalog/internal/config"
	"github.com/GTDGit/gtd_catalog/internal/database"
	"github.com/GTDGit/gtd_catalog/internal/repository"
	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/pkg/catalogapi"
)

var (
	flagUser    string
	flagEmail   string
	flagTTL     time.Duration
	flagPayload string
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Operator tooling for the GTD catalog service",
	Long: `catalogctl mints admin tokens, signs webhook payloads, and prints the
category tree the service would build from the configured product source.

Settings are read from the environment (and .env when present), the same
way the API server reads them.`,
	SilenceUsage: true,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin JWT signed with JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		token, err := utils.GenerateJWT(secret, flagUser, flagEmail, flagTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Print the X-Signature header for a webhook payload",
	Long: `Sign a webhook payload with CATALOG_WEBHOOK_SECRET. The payload is taken
from --payload, or read from stdin when the flag is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := os.Getenv("CATALOG_WEBHOOK_SECRET")
		if secret == "" {
			return errors.New("CATALOG_WEBHOOK_SECRET is not set")
		}
		payload := []byte(flagPayload)
		if flagPayload == "" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}
			payload = b
		}
		fmt.Fprintln(cmd.OutOrStdout(), utils.GenerateSignature(payload, secret))
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Fetch products from the configured source and print the category tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		source, closeFn, err := openSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		products, err := source.FetchProducts(ctx)
		if err != nil {
			return fmt.Errorf("fetch from %s: %w", source.Name(), err)
		}
		snap := catalog.NewSnapshot(products, 1)
		printTree(cmd.OutOrStdout(), snap)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&flagUser, "user", "u", "", "User id stored in the token")
	tokenCmd.Flags().StringVarP(&flagEmail, "email", "e", "", "Email stored in the token")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	signCmd.Flags().StringVarP(&flagPayload, "payload", "p", "", "Payload to sign (stdin when empty)")

	rootCmd.AddCommand(tokenCmd, signCmd, treeCmd)
}

// openSource returns the product source named by CATALOG_SOURCE.
func openSource(ctx context.Context, cfg *config.Config) (service.ProductSource, func(), error) {
	if cfg.Catalog.Source != config.SourcePostgres {
		client := catalogapi.NewClient(catalogapi.Config{
			BaseURL:  cfg.Catalog.BaseURL,
			APIKey:   cfg.Catalog.APIKey,
			Timeout:  cfg.Catalog.Timeout,
			PageSize: cfg.Catalog.PageSize,
		})
		return client, func() {}, nil
	}
	db, err := database.Connect(ctx, &cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewProductRepository(db), func() { db.Close() }, nil
}

// printTree writes one line per node, indented by level, with the number of
// products under it.
func printTree(w io.Writer, snap *catalog.Snapshot) {
	sum := catalog.Summarize(snap)
	fmt.Fprintf(w, "%d products, %d in stock, price %.0f-%.0f\n",
		len(snap.Products), sum.InStock, sum.PriceRange.Min, sum.PriceRange.Max)

	var walk func(nodes []*catalog.CategoryNode)
	walk = func(nodes []*catalog.CategoryNode) {
		for _, n := range nodes {
			fmt.Fprintf(w, "%s%s (%d) %s\n", strings.Repeat("  ", n.Level), n.Name, sum.NodeCounts[n.ID], n.ID)
			walk(n.Children)
		}
	}
	walk(snap.Tree)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
