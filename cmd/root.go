package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streetlevel",
	Short: "Find and download street-level panoramas",
	Long: `streetlevel downloads panoramas from street-level imagery services
through their internal APIs.

Supported providers: streetview, streetside, yandex, kakao, baidu.

Examples:
  # Find the closest Street View panorama to a point
  streetlevel find streetview --lat 53.539044 --lon 9.987029

  # Download a panorama as PNG
  streetlevel download streetview --id sQpGYOQ-ycLWFYG3EfAIGA --zoom 3 -o pano.png

  # Start the HTTP API server
  streetlevel serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.streetlevel.yaml)")
	rootCmd.PersistentFlags().String("user-agent", "streetlevel/1.0.0", "HTTP User-Agent header")
	rootCmd.PersistentFlags().String("locale", "en-US", "IETF language tag for localized metadata")

	viper.BindPFlag("user-agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("locale", rootCmd.PersistentFlags().Lookup("locale"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".streetlevel" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".streetlevel")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
