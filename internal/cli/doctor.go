package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"

	"github.com/transporteur/marketplace/internal/infrastructure/db/mongo"
	"github.com/transporteur/marketplace/internal/pkg/config"
)

const doctorTimeout = 5 * time.Second

// CheckResult represents the outcome of a single check.
type CheckResult struct {
	Name    string
	Status  string // okMark, warnMark or failMark
	Details string // Only shown if Status != okMark
}

// DoctorCmd validates the configuration and reaches every configured backend.
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and backend connectivity",
		Long: `Health check for a marketplace deployment.

Validates:
- Configuration (environment and .env)
- Relational store reachability and schema version
- Key store (Redis or Bolt)
- MongoDB audit store, when MONGO_URI is set
- Kafka brokers, when KAFKA_BROKERS is set

Examples:
  marketplace doctor           # Run all checks
  marketplace doctor --quiet   # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
			defer cancel()

			cfg, err := loadConfig(ctx)
			results := []CheckResult{checkConfig(err)}
			if err == nil {
				results = append(results,
					checkStore(ctx, cfg),
					checkKeyStore(ctx, cfg),
					checkMongo(ctx, cfg),
					checkKafka(cfg),
				)
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == failMark {
					hasErrors = true
					break
				}
			}

			if !quiet {
				printResults(cmd.OutOrStdout(), results, hasErrors)
			}
			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func printResults(out io.Writer, results []CheckResult, hasErrors bool) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check              Status")
	fmt.Fprintln(out, "─────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-18s %s\n", r.Name, r.Status)
	}
	fmt.Fprintln(out)

	hasDetails := false
	for _, r := range results {
		if r.Status != okMark && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n  %s\n", r.Name, r.Details)
		}
	}

	if hasErrors {
		fmt.Fprintln(out, "\n"+warnMark+" Issues found.")
	} else {
		fmt.Fprintln(out, "All checks passed.")
	}
}

func checkConfig(err error) CheckResult {
	if err != nil {
		return CheckResult{Name: "Config", Status: failMark, Details: err.Error()}
	}
	return CheckResult{Name: "Config", Status: okMark}
}

func checkStore(ctx context.Context, cfg *config.Config) CheckResult {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return CheckResult{Name: "Store", Status: failMark, Details: err.Error()}
	}
	defer store.Close()

	version, dirty, err := store.MigrationVersion()
	switch {
	case err != nil:
		return CheckResult{Name: "Store", Status: failMark, Details: err.Error()}
	case dirty:
		return CheckResult{Name: "Store", Status: failMark, Details: fmt.Sprintf("schema version %d is dirty", version)}
	case version == 0:
		return CheckResult{Name: "Store", Status: warnMark, Details: "no migrations applied; run 'marketplace migrate up'"}
	}
	return CheckResult{Name: "Store", Status: okMark}
}

func checkKeyStore(ctx context.Context, cfg *config.Config) CheckResult {
	name := "Keys (" + cfg.KV.Backend + ")"
	_, _, closeFn, err := openKeyStore(ctx, cfg)
	if err != nil {
		return CheckResult{Name: name, Status: failMark, Details: err.Error()}
	}
	_ = closeFn()
	return CheckResult{Name: name, Status: okMark}
}

func checkMongo(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg.Mongo.URI == "" {
		return CheckResult{Name: "MongoDB", Status: warnMark, Details: "MONGO_URI not set; audit trail disabled"}
	}
	client, _, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, Timeout: doctorTimeout})
	if err != nil {
		return CheckResult{Name: "MongoDB", Status: failMark, Details: err.Error()}
	}
	_ = client.Disconnect(ctx)
	return CheckResult{Name: "MongoDB", Status: okMark}
}

func checkKafka(cfg *config.Config) CheckResult {
	if len(cfg.Kafka.Brokers) == 0 {
		return CheckResult{Name: "Kafka", Status: warnMark, Details: "KAFKA_BROKERS not set; event publishing disabled"}
	}
	sc := sarama.NewConfig()
	sc.Net.DialTimeout = doctorTimeout
	client, err := sarama.NewClient(cfg.Kafka.Brokers, sc)
	if err != nil {
		return CheckResult{Name: "Kafka", Status: failMark, Details: err.Error()}
	}
	defer client.Close()

	topics, err := client.Topics()
	if err != nil {
		return CheckResult{Name: "Kafka", Status: failMark, Details: err.Error()}
	}
	for _, t := range topics {
		if t == cfg.Kafka.Topic {
			return CheckResult{Name: "Kafka", Status: okMark}
		}
	}
	return CheckResult{Name: "Kafka", Status: warnMark, Details: fmt.Sprintf("topic %q does not exist yet", cfg.Kafka.Topic)}
}
