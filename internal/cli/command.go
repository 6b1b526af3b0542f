package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/galsenai/french-wolof-translator/internal"
	"github.com/galsenai/french-wolof-translator/internal/config"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "frwolof [checkpoint]",
		Short: "French-Wolof translator",
		Long: `frwolof translates between French and Wolof with a fine-tuned
sequence-to-sequence checkpoint, and fine-tunes new checkpoints.

The checkpoint is taken from the argument, then MODEL_CHECKPOINT, then an
interactive prompt.

Examples:
  frwolof                                 # Translation demo
  frwolof galsen/wolofToFrenchTranslator_nllb
  frwolof --batch phrases.txt             # Translate a file line by line
  frwolof train --archive                 # Fine-tune, archiving the last run
  frwolof quickstart                      # Guided first run`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateTrainCommand creates the train subcommand.
func CreateTrainCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fine-tune the checkpoint on the French-Wolof corpus",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move an existing output directory to archive/ before training")
	cmd.Flags().BoolVar(&flags.RefreshDataset, "refresh-dataset", false, "Download the dataset again instead of using the cache")
	cmd.Flags().StringVar(&flags.TrainerCommand, "trainer-command", flags.TrainerCommand, "Command that runs the training backend")
	viper.BindPFlag("trainer.command", cmd.Flags().Lookup("trainer-command"))
	return cmd
}

// CreateTestCommand creates the test subcommand.
func CreateTestCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run a few sample translations in both directions",
		Args:  cobra.NoArgs,
	}
}

// CreateQuickstartCommand creates the quickstart subcommand.
func CreateQuickstartCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "Guided first run for new users",
		Args:  cobra.NoArgs,
	}
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.frwolof.yaml)")
	cmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", flags.EnvFile, "Settings file loaded into the environment")
	cmd.PersistentFlags().StringVar(&flags.Locale, "lang", flags.Locale, "Language of interactive messages (fr or en)")
	cmd.PersistentFlags().StringVar(&flags.HubEndpoint, "hub-endpoint", flags.HubEndpoint, "Hugging Face Hub URL")
	cmd.PersistentFlags().StringVar(&flags.DatasetsEndpoint, "datasets-endpoint", flags.DatasetsEndpoint, "Datasets server URL")
	cmd.PersistentFlags().StringVar(&flags.InferenceProvider, "inference-provider", flags.InferenceProvider, "Inference provider: endpoint or openai")
	cmd.PersistentFlags().StringVar(&flags.InferenceEndpoint, "inference-endpoint", flags.InferenceEndpoint, "Inference server URL")
	cmd.PersistentFlags().StringVar(&flags.InferenceToken, "inference-token", "", "Inference server token (default: HF_TOKEN)")
	cmd.PersistentFlags().StringVar(&flags.CacheDir, "cache-dir", flags.CacheDir, "Cache directory (default: user cache dir)")
	cmd.PersistentFlags().IntVar(&flags.NumBeams, "num-beams", flags.NumBeams, "Beam width (1 is greedy)")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory for batch translations")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate sentences from file (one per line, optional fr:/wo: prefix)")
	cmd.Flags().StringVar(&flags.SourceLang, "source", flags.SourceLang, "Source language of unprefixed batch lines (fr or wo)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List the models published by HUB_USERNAME")
	cmd.Flags().BoolVar(&flags.Publish, "publish", false, "Publish a local checkpoint to the hub after the demo")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("hub.endpoint", cmd.PersistentFlags().Lookup("hub-endpoint"))
	viper.BindPFlag("datasets.endpoint", cmd.PersistentFlags().Lookup("datasets-endpoint"))
	viper.BindPFlag("inference.provider", cmd.PersistentFlags().Lookup("inference-provider"))
	viper.BindPFlag("inference.endpoint", cmd.PersistentFlags().Lookup("inference-endpoint"))
	viper.BindPFlag("inference.token", cmd.PersistentFlags().Lookup("inference-token"))
	viper.BindPFlag("inference.num_beams", cmd.PersistentFlags().Lookup("num-beams"))
	viper.BindPFlag("cache.dir", cmd.PersistentFlags().Lookup("cache-dir"))
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".frwolof" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".frwolof")
	}

	// Environment variables, e.g. FRWOLOF_INFERENCE_ENDPOINT
	viper.SetEnvPrefix("FRWOLOF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetRuntime resolves the runtime settings from flags, FRWOLOF_*
// variables and the config file, in that order of precedence.
func GetRuntime() config.Runtime {
	rt := config.DefaultRuntime()
	if v := viper.GetString("hub.endpoint"); v != "" {
		rt.HubEndpoint = v
	}
	if v := viper.GetString("datasets.endpoint"); v != "" {
		rt.DatasetsEndpoint = v
	}
	if v := viper.GetString("inference.provider"); v != "" {
		rt.InferenceProvider = v
	}
	if v := viper.GetString("inference.endpoint"); v != "" {
		rt.InferenceEndpoint = v
	}
	if v := viper.GetString("inference.token"); v != "" {
		rt.InferenceToken = v
	}
	if v := viper.GetString("trainer.command"); v != "" {
		rt.TrainerCommand = v
	}
	if v := viper.GetString("cache.dir"); v != "" {
		rt.CacheDir = v
	}
	if v := viper.GetInt("inference.num_beams"); v > 0 {
		rt.NumBeams = v
	}
	return rt
}
