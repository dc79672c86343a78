package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/weddinginvite/core/cmd/api/commands"
)

// @title Wedding Guestbook API
// @version 1.0
// @description RSVP and blessing messages for the wedding invitation site

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "guestbook",
		Short: "Wedding guestbook API server",
		Long:  `Backend for the wedding invitation site: stores guest RSVP/blessing messages and lets the couple review and moderate them.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMessagesCommand())
	rootCmd.AddCommand(commands.NewAdminCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
