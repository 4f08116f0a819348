package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"careops/cmd"
	"careops/config"
	"careops/database"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error:", err)
		}
		return
	}

	// Check for organization bootstrap
	if len(os.Args) > 1 && os.Args[1] == "bootstrap-org" {
		if err := handleBootstrapCommand(); err != nil {
			log.Fatal("Bootstrap error:", err)
		}
		return
	}

	// Normal service operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

// handleBootstrapCommand provisions an organization and prints its API
// token. The token cannot be recovered later, only its digest is stored.
func handleBootstrapCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: careops bootstrap-org <name> [contact-email]")
	}
	name := os.Args[2]
	contactEmail := ""
	if len(os.Args) > 3 {
		contactEmail = os.Args[3]
	}

	ctx := context.Background()
	db, err := database.NewConnection(ctx, config.Get().GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	org, token, err := cmd.BootstrapOrganization(ctx, db, name, contactEmail)
	if err != nil {
		return err
	}

	fmt.Printf("Created organization %d (%s)\n", org.ID, org.Name)
	fmt.Printf("API token: %s\n", token)
	return nil
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: careops migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
