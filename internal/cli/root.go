package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/zktransfer/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zktransfer",
	Short: "zktransfer - public values for zero-knowledge proofs of bank transfers",
	Long: `zktransfer turns an attested bank-transfer claim into the public values a
zero-knowledge proof commits to.

It fetches the signed claim from the attestation service, checks its shape,
hashes the channel, the destination account and the claim info with
Keccak-256, and encodes the result with the Ethereum contract ABI so an
on-chain verifier can decode it.

Bank and account identifiers never leave the run in clear; only their
hashes are committed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and the public-values layout version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("zktransfer %s (layout v%d, schema v%d)\n", Version, layoutVersion(), schemaVersion())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/"+model.ConfigDirName+"/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, config file and ENV variables
func initConfig() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, model.ConfigDirName))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	configureEnv(viper.GetViper())
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
