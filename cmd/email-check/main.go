package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mikey/email-trust/internal/adapters/dns"
	"github.com/mikey/email-trust/internal/adapters/listfetch"
	"github.com/mikey/email-trust/internal/adapters/override"
	"github.com/mikey/email-trust/internal/config"
	"github.com/mikey/email-trust/internal/core"
	"github.com/mikey/email-trust/internal/domainlist"
	"github.com/mikey/email-trust/internal/logging"
	"github.com/mikey/email-trust/internal/rolecheck"
	"github.com/mikey/email-trust/internal/utils"
	"go.uber.org/zap"
)

var (
	// Fetch flags
	fetchTimeout = flag.Duration("fetch-timeout", 12*time.Second, "Timeout for each domain list fetch attempt")
	fetchRetries = flag.Int("fetch-retries", 3, "Attempts per list source before falling back")

	// Validation flags
	userID = flag.String("user", "", "User ID for personal override lookups")

	// Output flags
	jsonOut    = flag.Bool("json", false, "Print the full result as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	email := flag.Arg(0)
	if email == "" {
		fmt.Fprintln(os.Stderr, "usage: email-check [flags] <address>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	listsCfg, err := cfg.GetLists()
	if err != nil {
		logger.Fatal("Invalid list configuration", zap.Error(err))
	}

	// Assemble the validation pipeline. The one-shot CLI keeps overrides
	// in memory, so personal lists only matter when loaded via config.
	fetcher := listfetch.NewFetcher(listsCfg, logger)
	cache := domainlist.NewCache(fetcher, listsCfg.TTL, logger)
	store := override.NewMemoryStore(logger)
	roles := rolecheck.NewChecker(cfg.GetStringSlice("scoring.role_prefixes"), logger)
	scorer := core.NewScorer(roles)
	service := core.NewValidatorService(cache, store, dns.NewStubMXChecker(logger), scorer, utils.NewTextProcessor(logger), logger)

	startTime := time.Now()
	result, err := service.Validate(context.Background(), email, *userID)
	if err != nil {
		logger.Fatal("Failed to validate email", zap.Error(err))
	}
	duration := time.Since(startTime)

	if *jsonOut {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatal("Failed to encode result", zap.Error(err))
		}
		fmt.Println(string(encoded))
		return
	}

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Email: %s\n", result.Email)
	fmt.Printf("Domain: %s\n", result.Domain)
	fmt.Printf("Valid: %t\n", result.Valid)
	fmt.Printf("Confidence score: %.2f\n", result.ConfidenceScore)
	fmt.Printf("Risk level: %s\n", result.RiskLevel)
	fmt.Printf("Disposable: %t\n", result.Disposable)
	fmt.Printf("Role based: %t\n", result.RoleBased)
	fmt.Printf("Allowed list: %t\n", result.AllowedList)
	fmt.Printf("Reason: %s\n", result.Reason)
	for _, suggestion := range result.Suggestions {
		fmt.Printf("  - %s\n", suggestion)
	}
	fmt.Printf("Processing time: %v\n", duration)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()
	v.Set("lists.fetch_timeout", fetchTimeout.String())
	v.Set("lists.fetch_retries", *fetchRetries)
	return config.NewFromViper(v)
}
