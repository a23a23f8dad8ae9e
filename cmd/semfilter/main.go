package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"semfilter/internal/cache"
	"semfilter/internal/config"
	"semfilter/internal/embedder"
	"semfilter/internal/filter"
	"semfilter/internal/store"
	"semfilter/internal/vector"
	"semfilter/internal/version"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	userID  int64
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "semfilter",
	Short: "Semantic text filter backed by embedding similarity",
	Long: `semfilter compares text against user-defined semantic categories using
sentence-embedding cosine similarity. Categories are built from example
sentences, refined through reinforce/weaken feedback, and matched against
incoming text to decide what should be filtered.`,
	Version: version.Full(),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("semfilter %s\n", version.Full())
		fmt.Printf("Go version: %s\n", version.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "config file path")
	rootCmd.PersistentFlags().Int64Var(&userID, "user", 1, "user ID to operate as")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(whitelistCmd)
	rootCmd.AddCommand(feedbackCmd)
}

// app bundles the wired collaborators behind each command.
type app struct {
	cfg        *config.Config
	store      store.Store
	embedder   embedder.Embedder
	codec      *vector.Codec
	embeddings *cache.EmbeddingCache
	categories *cache.CategoryCache
	engine     *filter.Engine
	adjuster   *filter.Adjuster
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	codec := vector.NewCodec(emb.Dimensions())
	embeddings := cache.NewEmbeddingCache(cfg.Cache.EmbeddingMaxItems)
	categories := cache.NewCategoryCache(time.Duration(cfg.Cache.CategoryTTLSeconds) * time.Second)

	if verbose {
		log.Printf("semfilter: embedder %s (%d dims), database %s", emb.Name(), emb.Dimensions(), cfg.Database.Path)
	}

	return &app{
		cfg:        cfg,
		store:      st,
		embedder:   emb,
		codec:      codec,
		embeddings: embeddings,
		categories: categories,
		engine:     filter.NewEngine(emb, st, codec, embeddings, categories),
		adjuster:   filter.NewAdjuster(emb, st, codec, categories),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Printf("semfilter: closing store: %v", err)
	}
}

func buildEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	switch cfg.Embedder.Provider {
	case "openai":
		apiKey := cfg.Embedder.OpenAI.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return embedder.NewOpenAI(apiKey, cfg.Embedder.Model, cfg.Embedder.Dimensions)
	case "ollama":
		return embedder.NewOllama(cfg.Embedder.Ollama.BaseURL, cfg.Embedder.Model, cfg.Embedder.Ollama.Token, cfg.Embedder.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", cfg.Embedder.Provider)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
