package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"rhythmfm/config"
	"rhythmfm/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Test the Redis connection",
	Long:  `Connects to Redis with the configured credentials and performs a write/read round trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Redis config: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Unable to connect to Redis: %v", err)
		}
		fmt.Println("Redis connection established.")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		key := "rhythmfm:healthcheck"
		if err := db.RedisClient.Set(ctx, key, "ok", time.Minute).Err(); err != nil {
			log.Fatalf("Redis write failed: %v", err)
		}
		value, err := db.RedisClient.Get(ctx, key).Result()
		if err != nil {
			log.Fatalf("Redis read failed: %v", err)
		}
		fmt.Printf("Round trip succeeded, value: %s\n", value)

		if err := db.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
