package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/folio"
	"github.com/eringen/folio/github"
)

var (
	cfgFile    string
	siteConfig folio.SiteConfig
	v          = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - a portfolio and blog content server",
	Long: `folio indexes a directory of Markdown posts and serves them as a JSON API
and HTML fragments, together with search, taxonomy clouds, feeds and
project catalogs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./folio.yaml)")
	rootCmd.AddCommand(serveCmd, indexCmd, newCmd, versionCmd)
}

func initializeConfig(_ *cobra.Command) error {
	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("addr", ":3000")
	v.SetDefault("postsDir", "public/posts")
	v.SetDefault("postsURL", "")
	v.SetDefault("staticDir", "public")
	v.SetDefault("gamesFile", "data/game-projects.json")
	v.SetDefault("reposFile", "data/repos.json")
	v.SetDefault("githubUser", "")
	v.SetDefault("startYear", github.DefaultStartYear)
	v.SetDefault("rawHTML", false)
	v.SetDefault("codeStyle", "")
	v.SetDefault("watch", false)
	v.SetDefault("postCacheTTL", "5m")
	v.SetDefault("rateLimit", 30)
	v.SetDefault("rateWindow", "1m")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("githubToken", "FOLIO_GITHUBTOKEN", "GITHUB_TOKEN"); err != nil {
		return err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&siteConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return nil
}
