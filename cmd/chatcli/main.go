package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"chat-relay/internal/client"
	"chat-relay/internal/model/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	apiURL := strings.TrimSpace(os.Getenv("CHAT_API_URL"))
	if apiURL == "" {
		apiURL = "http://localhost:8787"
	}

	stateDir := strings.TrimSpace(os.Getenv("CHAT_STATE_DIR"))
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("cannot resolve home directory: %v", err)
		}
		stateDir = filepath.Join(home, ".chatcli")
	}

	controller, err := client.NewController(client.Options{
		APIURL:   apiURL,
		StateDir: stateDir,
	})
	if err != nil {
		log.Fatalf("failed to initialize chat client: %v", err)
	}

	fmt.Println("chatcli — type a message and press enter. /clear resets the conversation, /quit exits.")
	fmt.Printf("relay: %s  status: %s\n\n", apiURL, controller.Status())

	for _, message := range controller.Messages() {
		printMessage(message)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return
		case line == "/clear":
			controller.Clear(ctx)
			fmt.Println("conversation cleared")
			continue
		}

		botMessage, err := controller.Send(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("send failed: %v", err)
			continue
		}

		printMessage(botMessage)
		fmt.Printf("[%s]\n", controller.Status())
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin error: %v", err)
	}
}

func printMessage(message chat.Message) {
	label := "bot"
	if message.Sender == chat.SenderUser {
		label = "you"
	}
	fmt.Printf("%s • %s\n%s\n\n", label, message.Timestamp.Local().Format("15:04"), message.Text)
}
