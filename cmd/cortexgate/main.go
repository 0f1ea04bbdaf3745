package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zen-systems/cortexgate/pkg/agent"
	"github.com/zen-systems/cortexgate/pkg/backend"
	"github.com/zen-systems/cortexgate/pkg/brain"
	"github.com/zen-systems/cortexgate/pkg/config"
	"github.com/zen-systems/cortexgate/pkg/cortex"
	"github.com/zen-systems/cortexgate/pkg/keypool"
	"github.com/zen-systems/cortexgate/pkg/provider"
	"github.com/zen-systems/cortexgate/pkg/server"
)

// fallbackOrgID scopes knowledge searches when no organization is
// configured anywhere.
const fallbackOrgID = "392ecec2-e769-4db2-810f-ccd5bd09d92a"

var verboseFlag bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "cortexgate",
		Short: "Multi-agent chat orchestrator with resilient provider fallback",
		Long: `Cortexgate routes natural-language requests to specialized agents
	(strategy, sales, recall, scheduling, conversation), rotates credentials
	for the rate-limited primary provider, and walks ordered fallback chains
	so an outage at one provider never reaches the end user.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(brainCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(agentsCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verboseFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func routeCmd() *cobra.Command {
	var callerFlag string
	var orgFlag string

	cmd := &cobra.Command{
		Use:   "route [query]",
		Short: "Classify a query and dispatch it to the right agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			var reqctx *agent.Context
			if callerFlag != "" || orgFlag != "" {
				reqctx = &agent.Context{CallerName: callerFlag, OrgID: orgFlag}
			}

			fmt.Println(app.core.Route(context.Background(), args[0], reqctx, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&callerFlag, "caller", "", "caller display name injected into the prompt")
	cmd.Flags().StringVar(&orgFlag, "org", "", "organization scope for knowledge searches")

	return cmd
}

func brainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brain [text]",
		Short: "Ask the provider-ordered fallback chain directly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			fmt.Println(app.chain.Ask(context.Background(), args[0], nil))
			return nil
		},
	}
}

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show the credential pool status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			st := app.pool.Status()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tFAILS\tSTATE\tREMAINING")
			for _, k := range st.Keys {
				state := "available"
				remaining := "-"
				if k.InCooldown {
					state = "cooldown"
					remaining = fmt.Sprintf("%ds", k.SecondsRemaining)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", k.Prefix, k.Fails, state, remaining)
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "TOTAL\t%d\tavailable: %d, blocked: %d\t\n", st.Total, st.Available, st.Blocked)
			return w.Flush()
		},
	}
}

func agentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "Show the intent routing rules in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tAGENT\tKEYWORDS")
			for i, rule := range cfg.Routing.Intents {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, rule.Agent, strings.Join(rule.Keywords, ", "))
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "DEFAULT\t%s\t-\n", cfg.Routing.DefaultAgent)
			return w.Flush()
		},
	}
}

func serveCmd() *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP webhook surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			srv := server.New(app.core, app.chain, app.pool)
			return srv.Run(addrFlag)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", ":8080", "listen address")

	return cmd
}

// app holds the wired core for one process.
type app struct {
	cfg   *config.Config
	pool  *keypool.Pool
	core  *cortex.Cortex
	chain *brain.Chain
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool := keypool.New(cfg.GoogleAPIKey, cfg.GoogleKeyPool)
	logStartupDiagnostics(cfg, pool)

	orgID := cfg.DefaultOrgID
	if orgID == "" {
		orgID = fallbackOrgID
	}

	// Collaborator backends. Unconfigured endpoints still get a client;
	// their failures surface as user-facing strings at the agent level.
	knowledge := backend.NewVectorSearch(cfg.KnowledgeURL, cfg.KnowledgeKey, &poolEmbedder{pool: pool})
	tasks := backend.NewTaskService(cfg.TasksURL, cfg.TasksToken)
	mail := backend.NewMailService(cfg.MailURL, cfg.MailToken)
	automation := backend.NewWebhookTrigger(cfg.AutomationURL, cfg.AutomationToken)
	transcriber := backend.NewGroqTranscriber(cfg.GroqAPIKey)

	var mistral provider.Persona
	if cfg.MistralAPIKey != "" {
		m, err := provider.NewMistralProvider(cfg.MistralAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create mistral provider: %w", err)
		}
		mistral = m
	}

	var groq provider.Persona
	if cfg.GroqAPIKey != "" {
		g, err := provider.NewGroqProvider(cfg.GroqAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create groq provider: %w", err)
		}
		groq = g
	}

	strategy := agent.NewStrategy(mistral)
	sales := agent.NewSales(groq, tasks, automation)
	recall := agent.NewRecall(knowledge, orgID)
	scheduling := agent.NewScheduling(tasks, mail, cfg.MailSenders)

	sessionFactory := func(key string) (agent.ModelSession, error) {
		return provider.NewGoogleProvider(key)
	}
	conversation := agent.NewConversation(pool, cfg.Routing.ConversationModels, sessionFactory, recall, scheduling, strategy)

	backups, err := createBackups(cfg)
	if err != nil {
		return nil, err
	}

	classifier := cortex.NewClassifier(cfg.Routing)
	core := cortex.New(classifier,
		[]agent.Agent{strategy, sales, recall, scheduling, conversation},
		backups, transcriber)

	tiers, err := createBrainTiers(cfg)
	if err != nil {
		return nil, err
	}
	primary := func(key string) (provider.Multimodal, error) {
		return provider.NewGoogleProvider(key)
	}
	chain := brain.New(pool, primary, tiers, transcriber)

	return &app{cfg: cfg, pool: pool, core: core, chain: chain}, nil
}

// createBackups builds the direct last-resort providers for the
// extended fallback chain: the reasoning-oriented backup first, then
// the general-purpose one, only where credentials exist.
func createBackups(cfg *config.Config) ([]provider.Provider, error) {
	var backups []provider.Provider

	if cfg.DeepSeekAPIKey != "" {
		p, err := provider.NewDeepSeekProvider(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek provider: %w", err)
		}
		backups = append(backups, p)
	}
	if cfg.OpenAIAPIKey != "" {
		p, err := provider.NewOpenAIProvider(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai provider: %w", err)
		}
		backups = append(backups, p)
	}
	return backups, nil
}

// createBrainTiers materializes the configured brain chain order.
// Tiers without credentials keep their slot with a nil provider so the
// chain can skip them without counting an attempt.
func createBrainTiers(cfg *config.Config) ([]brain.Tier, error) {
	tiers := make([]brain.Tier, 0, len(cfg.Routing.BrainChain))
	for _, name := range cfg.Routing.BrainChain {
		if name == brain.PrimaryTier {
			tiers = append(tiers, brain.Tier{Name: name})
			continue
		}
		if !cfg.HasProvider(name) {
			tiers = append(tiers, brain.Tier{Name: name})
			continue
		}

		var (
			p   provider.Provider
			err error
		)
		switch name {
		case "mistral":
			p, err = provider.NewMistralProvider(cfg.MistralAPIKey)
		case "groq":
			p, err = provider.NewGroqProvider(cfg.GroqAPIKey)
		case "openai":
			p, err = provider.NewOpenAIProvider(cfg.OpenAIAPIKey)
		case "deepseek":
			p, err = provider.NewDeepSeekProvider(cfg.DeepSeekAPIKey)
		case "anthropic":
			p, err = provider.NewAnthropicProvider(cfg.AnthropicAPIKey)
		default:
			log.Warn().Str("provider", name).Msg("unknown brain chain entry, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s provider: %w", name, err)
		}
		tiers = append(tiers, brain.Tier{Name: name, Provider: p})
	}
	return tiers, nil
}

func logStartupDiagnostics(cfg *config.Config, pool *keypool.Pool) {
	log.Info().
		Bool("primary_key", cfg.GoogleAPIKey != "").
		Int("pool_keys", pool.Size()).
		Bool("mistral", cfg.MistralAPIKey != "").
		Bool("groq", cfg.GroqAPIKey != "").
		Bool("openai", cfg.OpenAIAPIKey != "").
		Bool("deepseek", cfg.DeepSeekAPIKey != "").
		Bool("anthropic", cfg.AnthropicAPIKey != "").
		Msg("credential diagnostics")
}

// poolEmbedder embeds queries with whichever primary credential is
// currently active.
type poolEmbedder struct {
	pool *keypool.Pool
}

func (e *poolEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key, ok := e.pool.ActiveKey()
	if !ok {
		return nil, fmt.Errorf("no primary credential available for embeddings")
	}
	p, err := provider.NewGoogleProvider(key)
	if err != nil {
		return nil, err
	}
	return p.Embed(ctx, text)
}
