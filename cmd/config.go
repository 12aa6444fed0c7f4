package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/ai/openai"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/secrets"
	"go.uber.org/zap"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// validate reports every missing or invalid setting the serve command needs
// in a single error.
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config is required")
	}

	var missing []string
	require := func(value, key string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, fmt.Sprintf("%s (%s)", key, envBindings[key]))
		}
	}

	db := c.DB
	if db == nil {
		db = &DBConfig{}
	}
	require(db.Host, "db.host")
	require(db.User, "db.user")
	require(db.Name, "db.name")
	require(db.Table, "db.table")

	var invalid []string

	aiCfg := c.AI
	if aiCfg == nil {
		aiCfg = &AIConfig{}
	}

	switch c.provider() {
	case providerGemini:
		if aiCfg.Gemini == nil || (aiCfg.Gemini.APIKey == "" && aiCfg.Gemini.APIKeyFile == "") {
			require("", "ai.gemini.api-key")
		}
	case providerOpenAI:
		if aiCfg.OpenAI == nil || (aiCfg.OpenAI.APIKey == "" && aiCfg.OpenAI.APIKeyFile == "") {
			require("", "ai.openai.api-key")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("unsupported ai provider %q", aiCfg.Provider))
	}

	if aiCfg.Timeout < 0 {
		invalid = append(invalid, "ai.timeout must not be negative")
	}

	if c.Extract != nil && c.Extract.MaxSize < 0 {
		invalid = append(invalid, "extract.max-size must not be negative")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing: "+strings.Join(missing, ", "))
	}
	problems = append(problems, invalid...)

	if len(problems) > 0 {
		return fmt.Errorf("configuration is incomplete, %s", strings.Join(problems, "; "))
	}

	return nil
}

func (c *Config) provider() string {
	if c.AI == nil || strings.TrimSpace(c.AI.Provider) == "" {
		return providerGemini
	}
	return strings.ToLower(strings.TrimSpace(c.AI.Provider))
}

func (c *Config) sqlConfig() (jobs.SQLConfig, error) {
	db := c.DB
	if db == nil {
		db = &DBConfig{}
	}

	password, err := secrets.Load(secrets.Source{
		Name:     "database password",
		Value:    db.Password,
		File:     db.PasswordFile,
		Optional: true,
	})
	if err != nil {
		return jobs.SQLConfig{}, err
	}

	return jobs.SQLConfig{
		Driver:      db.Driver,
		Host:        db.Host,
		Port:        db.Port,
		User:        db.User,
		Password:    password,
		Name:        db.Name,
		Table:       db.Table,
		IDColumn:    db.IDColumn,
		TitleColumn: db.TitleColumn,
		SSLMode:     db.SSLMode,
	}, nil
}

// newOracle builds the match oracle for the configured provider.
func newOracle(ctx context.Context, config *Config, log *zap.Logger) (ai.Oracle, error) {
	aiCfg := config.AI
	if aiCfg == nil {
		aiCfg = &AIConfig{}
	}

	var (
		generator ai.Generator
		model     string
	)

	switch config.provider() {
	case providerGemini:
		cfg := aiCfg.Gemini
		if cfg == nil {
			cfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.APIKey,
			File:  cfg.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		g, err := gemini.NewGenerator(ctx, apiKey, cfg.Model,
			logger.WithCommonFields(log, providerGemini, cfg.Model),
			gemini.WithResponseSchema(gemini.MatchedJobsSchema()),
			gemini.WithTemperature(0),
		)
		if err != nil {
			return nil, err
		}
		generator, model = g, g.Model()

	case providerOpenAI:
		cfg := aiCfg.OpenAI
		if cfg == nil {
			cfg = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.APIKey,
			File:  cfg.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}

		g, err := openai.NewGenerator(apiKey, cfg.Model, cfg.BaseURL, logger.WithCommonFields(log, providerOpenAI, cfg.Model))
		if err != nil {
			return nil, err
		}
		generator, model = g, g.Model()

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", aiCfg.Provider)
	}

	return ai.NewLLMOracle(generator, aiCfg.MaxLogLength, logger.WithCommonFields(log, config.provider(), model)), nil
}
