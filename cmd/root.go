package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "resume-matcher"
)

type Config struct {
	DB      *DBConfig      `mapstructure:"db"`
	HTTP    *HTTPConfig    `mapstructure:"http"`
	AI      *AIConfig      `mapstructure:"ai"`
	Extract *ExtractConfig `mapstructure:"extract"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	Name         string `mapstructure:"name"`
	Table        string `mapstructure:"table"`
	IDColumn     string `mapstructure:"id-column"`
	TitleColumn  string `mapstructure:"title-column"`
	SSLMode      string `mapstructure:"sslmode"`
}

type HTTPConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors-origins"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type ExtractConfig struct {
	MaxSize int64 `mapstructure:"max-size"`
}

// envBindings keeps the variable names the service has always been deployed with.
var envBindings = map[string]string{
	"db.driver":              "DB_DRIVER",
	"db.host":                "DB_HOST",
	"db.port":                "MYSQL_PORT",
	"db.user":                "DB_USER",
	"db.password":            "DB_PASSWORD",
	"db.password-file":       "DB_PASSWORD_FILE",
	"db.name":                "DB_NAME",
	"db.table":               "DB_TABLE",
	"db.id-column":           "DB_ID_COLUMN",
	"db.title-column":        "DB_TITLE_COLUMN",
	"db.sslmode":             "DB_SSLMODE",
	"http.addr":              "HTTP_ADDR",
	"http.cors-origins":      "HTTP_CORS_ORIGINS",
	"ai.provider":            "AI_PROVIDER",
	"ai.timeout":             "AI_TIMEOUT",
	"ai.gemini.api-key":      "GEMINI_API_KEY",
	"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	"ai.gemini.model":        "GEMINI_MODEL",
	"ai.openai.api-key":      "OPENAI_API_KEY",
	"ai.openai.api-key-file": "OPENAI_API_KEY_FILE",
	"ai.openai.model":        "OPENAI_MODEL",
	"ai.openai.base-url":     "OPENAI_BASE_URL",
	"extract.max-size":       "EXTRACT_MAX_SIZE",
}

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher suggests job titles from a database that fit an uploaded resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "a dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.id-column", "id")
	v.SetDefault("db.title-column", "name")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors-origins", []string{"*"})
	v.SetDefault("ai.provider", providerGemini)
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("extract.max-size", 5<<20)
}

func initConfig() {
	// A missing .env is fine, values may come from the real environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading %s: %v", envFile, err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional, everything can be set from the environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func newLogger(opts ...logger.Option) *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), opts...)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	return l
}
