package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildwise/buildwise/internal/utils"
	"github.com/buildwise/buildwise/pkg/wizard"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	 _           _ _     _          _
	| |__  _   _(_) | __| |_      _(_)___  ___
	| '_ \| | | | | |/ _' \ \ /\ / / / __|/ _ \
	| |_) | |_| | | | (_| |\ V  V /| \__ \  __/
	|_.__/ \__,_|_|_|\__,_| \_/\_/ |_|___/\___|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "buildwise",
	Short: "A budget-driven PC build configurator.",
	Long: LOGO + `buildwise picks a compatible set of PC components for a budget and a workload
profile, from a component catalog kept in SQLite or Postgres.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.buildwise.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dsn", "", "Catalog database: a SQLite file path or a postgres:// URL (overrides db.dsn)")
	viper.BindPFlag("db.dsn", rootCmd.PersistentFlags().Lookup("dsn"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".buildwise")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BUILDWISE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".buildwise.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating config file: %s\n", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		utils.Log.Fatal(err)
	}
}

func setDefaults() {
	viper.SetDefault("db.dsn", "buildwise.sqlite")
	viper.SetDefault("benchmarks.file", "")
	viper.SetDefault("benchmarks.url", "")

	pol := wizard.DefaultPolicy()
	viper.SetDefault("wizard.premium_monitor", pol.PremiumMonitor)
	viper.SetDefault("policy.utilization_target", pol.UtilizationTarget)
	viper.SetDefault("policy.max_downgrade_iterations", pol.MaxDowngradeIterations)
	viper.SetDefault("policy.candidate_limit", pol.CandidateLimit)
}

// loadPolicy overlays the "policy" config section on the shipped defaults.
func loadPolicy() (wizard.Policy, error) {
	pol := wizard.DefaultPolicy()
	if err := viper.UnmarshalKey("policy", &pol); err != nil {
		return pol, fmt.Errorf("bad policy config: %w", err)
	}
	if m := viper.GetString("wizard.premium_monitor"); m != "" {
		pol.PremiumMonitor = m
	}
	return pol, nil
}
