// Command admin creates merchant accounts. Merchants cannot self-register;
// an operator runs this against the database and hands the printed
// credentials to the merchant. The api_secret is shown exactly once.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"paygate/config"
	pgStorage "paygate/internal/adapter/storage/postgres"
	"paygate/internal/core/domain"
	"paygate/internal/service"
	"paygate/pkg/ident"
)

func main() {
	var (
		name       = flag.String("name", "", "merchant display name (required)")
		email      = flag.String("email", "", "merchant contact email (required)")
		webhookURL = flag.String("webhook-url", "", "optional webhook endpoint")
	)
	flag.Parse()

	if *name == "" || *email == "" {
		fmt.Fprintln(os.Stderr, "usage: admin -name <name> -email <email> [-webhook-url <url>]")
		os.Exit(2)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgStorage.NewPool(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	apiKey := ident.NewAPIKey()
	apiSecret := ident.NewAPISecret()

	hash, err := service.NewHashService().Hash(apiSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash api secret: %v\n", err)
		os.Exit(1)
	}

	merchant := &domain.Merchant{
		ID:            uuid.New(),
		Name:          *name,
		Email:         *email,
		APIKey:        apiKey,
		APISecretHash: hash,
		WebhookSecret: ident.NewWebhookSecret(),
	}
	if *webhookURL != "" {
		merchant.WebhookURL = webhookURL
	}

	if err := pgStorage.NewMerchantRepository(pool).Create(ctx, merchant); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create merchant: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("merchant created\n")
	fmt.Printf("  id:             %s\n", merchant.ID)
	fmt.Printf("  name:           %s\n", merchant.Name)
	fmt.Printf("  email:          %s\n", merchant.Email)
	fmt.Printf("  api_key:        %s\n", apiKey)
	fmt.Printf("  api_secret:     %s  (store this now; it is not recoverable)\n", apiSecret)
	fmt.Printf("  webhook_secret: %s\n", merchant.WebhookSecret)
}
