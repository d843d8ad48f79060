package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"chatup/backend/internal/config"
	"chatup/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  active              list rooms the archive still marks active
  close <room_id>     mark an archived room as ended now
  history <room_id>   print a room's message log (needs REDIS_ADDR)`

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	cfg := config.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	command := os.Args[1]
	switch command {
	case "active":
		archive := openArchive(cfg)
		ids, err := archive.GetActiveRoomIDs(ctx)
		if err != nil {
			log.Fatalf("Error listing active rooms: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		fmt.Printf("%d active room(s)\n", len(ids))
	case "close":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close <room_id>")
			os.Exit(1)
		}
		roomID := os.Args[2]
		if err := openArchive(cfg).CloseRoom(ctx, roomID, time.Now()); err != nil {
			log.Fatalf("Error closing room: %v", err)
		}
		fmt.Printf("Room %s has been closed.\n", roomID)
	case "history":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin history <room_id>")
			os.Exit(1)
		}
		if err := printHistory(ctx, cfg, os.Args[2]); err != nil {
			log.Fatalf("Error reading history: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openArchive(cfg config.Config) *storage.GormArchive {
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	return storage.NewGormArchive(db)
}

func printHistory(ctx context.Context, cfg config.Config, roomID string) error {
	if cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is not set")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	msgs, err := storage.NewRedisLog(rdb).List(ctx, roomID)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		line := fmt.Sprintf("%s  %-36s  %s", m.SentAt.Format(time.RFC3339), m.AuthorID, m.Content)
		if m.Reaction != "" {
			line += "  [" + m.Reaction + "]"
		}
		if m.VisibleOnlyTo != "" {
			line += "  (only " + m.VisibleOnlyTo + ")"
		}
		fmt.Println(line)
	}
	return nil
}
