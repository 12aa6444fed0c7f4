package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/match"
	"github.com/spigell/resume-matcher/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (default is :8080)")
	serveCmd.Flags().String("provider", "", "ai provider: gemini or openai")

	viper.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("ai.provider", serveCmd.Flags().Lookup("provider"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := newLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting the resume-matcher service", zap.String("version", version))

	if err := config.validate(); err != nil {
		log.Fatal("validating config", zap.Error(err))
	}

	if log.Core().Enabled(zap.DebugLevel) {
		// do not bother error since there is a valid parseable config
		pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
		log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))
	}

	sqlCfg, err := config.sqlConfig()
	if err != nil {
		log.Fatal("loading database password", zap.Error(err))
	}

	source, err := jobs.Open(sqlCfg, logger.Named(log, "jobs"))
	if err != nil {
		log.Fatal("opening job title source", zap.Error(err))
	}
	defer source.Close()

	oracle, err := newOracle(ctx, config, log)
	if err != nil {
		log.Fatal("building match oracle", zap.Error(err))
	}

	svc := match.NewService(source, oracle, config.AI.Timeout, logger.Named(log, "match"))

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Config{
		Addr:        config.HTTP.Addr,
		CORSOrigins: config.HTTP.CORSOrigins,
	}, svc, extract.New(config.Extract.MaxSize), logger.Named(log, "server"))

	if err := srv.Run(ctx); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}

	log.Info("exiting", zap.String("reason", "shutdown complete"))
}

// redacted returns a copy of config that is safe to print.
func redacted(config *Config) *Config {
	c := *config

	if config.DB != nil {
		db := *config.DB
		if db.Password != "" {
			db.Password = "***"
		}
		c.DB = &db
	}

	if config.AI != nil {
		aiCfg := *config.AI
		if aiCfg.Gemini != nil {
			g := *aiCfg.Gemini
			if g.APIKey != "" {
				g.APIKey = "***"
			}
			aiCfg.Gemini = &g
		}
		if aiCfg.OpenAI != nil {
			o := *aiCfg.OpenAI
			if o.APIKey != "" {
				o.APIKey = "***"
			}
			aiCfg.OpenAI = &o
		}
		c.AI = &aiCfg
	}

	return &c
}
