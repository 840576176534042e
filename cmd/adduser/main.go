package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"regexp"

	"stellarcade-backend-go/internal/common"
	"stellarcade-backend-go/internal/config"
	"stellarcade-backend-go/internal/database"
	"stellarcade-backend-go/internal/stellar"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	nameFlag := flag.String("name", "", "User's full name (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	addressFlag := flag.String("address", "", "User's Stellar account id, G... (required)")
	flag.Parse()

	if err := validateName(*nameFlag); err != nil {
		logger.Fatal("Invalid name", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		logger.Fatal("Invalid email", zap.Error(err))
	}
	if err := stellar.ValidateAccountAddress(*addressFlag); err != nil {
		logger.Fatal("Invalid Stellar address", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	user, err := dbService.CreateUser(ctx, uuid.New().String(), *nameFlag, *emailFlag, *addressFlag)
	if err != nil {
		if errors.Is(err, database.ErrUserExists) {
			logger.Fatal("User already exists with this email", zap.String("email", *emailFlag))
		}
		logger.Fatal("Failed to create user", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:      %s\n", user.Id)
	fmt.Printf("Name:    %s\n", user.Name)
	fmt.Printf("Email:   %s\n", user.Email)
	fmt.Printf("Address: %s\n", user.StellarAddress)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}
