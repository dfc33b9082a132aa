package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grandson-client/internal/apiclient"
	"grandson-client/internal/authstore"
	"grandson-client/internal/config"
	"grandson-client/internal/imageurl"
	"grandson-client/internal/store"
	"grandson-client/internal/storefront"

	"github.com/joho/godotenv"
)

const usage = `usage: grandson-cli <command>

commands:
  products            list active catalogue products
  product <id>        show one product
  zones               list active delivery zones
  page <name>         show the content blocks of a page
  login <user> <pw>   authenticate and persist the session
  whoami              show the active session
  logout              clear the stored session
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	apiBase := cfg.Environment().ResolveAPIBase()
	logger.Debug().Str("api_base", apiBase).Msg("backend resolved")

	kv := store.NewFileStore(cfg.Storage.Dir, logger)
	auth := authstore.New(kv, logger)

	client := apiclient.New(apiclient.Config{
		BaseURL:   apiBase,
		UserAgent: cfg.API.UserAgent,
		Tokens:    auth,
		Logger:    logger,
	})

	shop := storefront.New(client, auth, logger)
	images := imageurl.NewResolver(apiBase)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, 30*time.Second)
	defer timeoutCancel()

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "products":
		products, err := shop.Products(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("%-12s %-30s %8d FCFA  stock:%d\n", p.ID, p.Name, p.Price, p.Stock)
		}
		return nil

	case "product":
		if len(args) < 2 {
			return fmt.Errorf("usage: grandson-cli product <id>")
		}
		p, err := shop.Product(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s\n%s\n%d FCFA  stock:%d  tailles:%v\n", p.Name, p.Description, p.Price, p.Stock, p.Sizes)
		fmt.Printf("image: %s\n", images.URL(p.PrimaryImage(), imageurl.SizeDetail))
		return nil

	case "zones":
		zones, err := shop.DeliveryZones(ctx)
		if err != nil {
			return err
		}
		for _, z := range zones {
			fmt.Printf("%-30s %8d FCFA\n", z.Name, z.Price)
		}
		return nil

	case "page":
		if len(args) < 2 {
			return fmt.Errorf("usage: grandson-cli page <name>")
		}
		blocks, err := shop.PageContent(ctx, args[1])
		if err != nil {
			return err
		}
		for _, b := range blocks {
			fmt.Printf("[%s] %s\n%s\n\n", b.Section, b.Title, b.Content)
		}
		return nil

	case "login":
		if len(args) < 3 {
			return fmt.Errorf("usage: grandson-cli login <username> <password>")
		}
		user, err := shop.Login(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("connecté en tant que %s (%s)\n", user.Username, user.Role)
		return nil

	case "whoami":
		user := shop.CurrentUser()
		if user == nil {
			fmt.Println("aucune session active")
			return nil
		}
		fmt.Printf("%s (%s)\n", user.Username, user.Role)
		return nil

	case "logout":
		if err := shop.Logout(); err != nil {
			return err
		}
		fmt.Println("session supprimée")
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
