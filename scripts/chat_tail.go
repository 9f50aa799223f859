package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ricabook/lovestayteste/messaging"
	"github.com/ricabook/lovestayteste/realtime"
	"github.com/ricabook/lovestayteste/storage"

	"github.com/joho/godotenv"
)

// Interactive chat client for a conversation: tails live messages and sends
// whatever you type. Usage: go run scripts/chat_tail.go <userID> <conversationID>
func main() {
	if len(os.Args) < 3 {
		log.Fatal("usage: chat_tail <userID> <conversationID>")
	}
	userID, err := strconv.ParseUint(os.Args[1], 10, 32)
	if err != nil {
		log.Fatalf("bad userID: %v", err)
	}
	conversationID, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		log.Fatalf("bad conversationID: %v", err)
	}

	godotenv.Load()
	db := storage.InitializeDB()
	redisClient := storage.InitializeRedis()

	feed := realtime.NewRedisFeed(redisClient)
	store := messaging.NewGormStore(db, feed)
	channel := messaging.NewChannel(store, feed, uint(userID))
	defer channel.Close()

	ctx := context.Background()
	if err := channel.Load(ctx, uint(conversationID)); err != nil {
		log.Fatalf("load conversation: %v", err)
	}

	for _, entry := range channel.Messages() {
		fmt.Printf("[%s] %d: %s\n", entry.CreatedAt.Format(time.Kitchen), entry.SenderID, entry.Body)
	}

	// Poll for new entries in the background; new input lines become sends
	go func() {
		seen := len(channel.Messages())
		for {
			time.Sleep(500 * time.Millisecond)
			entries := channel.Messages()
			if seen > len(entries) {
				seen = len(entries)
			}
			for _, entry := range entries[seen:] {
				marker := ""
				if entry.Provisional() {
					marker = " (sending...)"
				}
				fmt.Printf("[%s] %d: %s%s\n", entry.CreatedAt.Format(time.Kitchen), entry.SenderID, entry.Body, marker)
			}
			seen = len(entries)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := channel.SendMessage(ctx, scanner.Text()); err != nil {
			fmt.Printf("send failed: %v\n", err)
		}
	}
}
