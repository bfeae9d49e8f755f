package cmd

import (
	"fmt"

	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/database"
	"github.com/spf13/cobra"
)

var (
	dropFirst      bool
	clearNamespace bool
)

var setupCmd = &cobra.Command{
	Use:   "setup-db",
	Short: "Create the MySQL schema for durable storage",
	Long: `Creates the storefront_kv table used when storage.driver is "mysql".

Every client keeps its user, authentication flag and cart rows under its
own namespace (storage.namespace), so several clients can share a database.`,
	RunE: setupDatabase,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop the existing table before creating")
	setupCmd.Flags().BoolVar(&clearNamespace, "clear", false, "Delete the stored state of the configured namespace")
}

func setupDatabase(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fmt.Println("🔧 Setting up storage database...")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("db.dsn is not set")
	}

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if dropFirst {
		fmt.Println("🗑️  Dropping existing table...")
		if err := db.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Println("📋 Creating schema...")
	if err := db.SetupSchema(ctx); err != nil {
		return fmt.Errorf("failed to setup schema: %w", err)
	}

	if clearNamespace && !dropFirst {
		fmt.Printf("🧹 Clearing namespace %q...\n", cfg.Storage.Namespace)
		if err := db.ClearNamespace(ctx, cfg.Storage.Namespace); err != nil {
			return fmt.Errorf("failed to clear namespace: %w", err)
		}
	}

	fmt.Println("✅ Storage database setup complete!")
	return nil
}
