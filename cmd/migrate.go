package cmd

import (
	"fmt"
	"log"

	"rhythmfm/config"
	"rhythmfm/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Connects to MySQL and migrates the full schema to the current model definitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Database config: %s:%s/%s\n", cfg.DBHost, cfg.DBPort, cfg.DBName)

		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer db.CloseDB()

		if err := db.AutoMigrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migration completed.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
