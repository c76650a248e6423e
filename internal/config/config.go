// Package config centralizes defaults and viper wiring for the CLI.
// All default values live here so there is a single source of truth.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pylens/pylens/llm"
)

const (
	// ConfigName is the config file base name searched in the working
	// directory and the home directory (.pylens.yaml).
	ConfigName = ".pylens"
	// EnvPrefix namespaces environment overrides, e.g. PYLENS_LLM_API_KEY.
	EnvPrefix = "PYLENS"
)

// Default values.
const (
	DefaultStoreFile   = ".pylens/suggestions.json"
	DefaultStoreFormat = "json"
	DefaultLLMModel    = "gpt-4o-mini"
	DefaultLLMTimeout  = 60 * time.Second
)

// Init loads .env, wires environment overrides, and reads the config file if
// one exists. A missing config file is not an error.
func Init(cfgFile string) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(ConfigName)
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && cfgFile == "" {
			return nil
		}
		return err
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("store.file", DefaultStoreFile)
	viper.SetDefault("store.format", DefaultStoreFormat)
	viper.SetDefault("llm.provider", "")
	viper.SetDefault("llm.model", DefaultLLMModel)
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.requestTimeoutSeconds", int(DefaultLLMTimeout.Seconds()))
	viper.SetDefault("llm.minIntervalSeconds", int(llm.DefaultMinInterval.Seconds()))
	viper.SetDefault("analysis.dedupe", false)
}

// StoreConfig returns the store settings as the map the store's Initialize
// expects.
func StoreConfig() map[string]string {
	return map[string]string{
		"dataFile":       viper.GetString("store.file"),
		"dataFileFormat": viper.GetString("store.format"),
	}
}

// LLMConfig assembles the provider configuration, falling back to the
// conventional OPENAI_API_KEY variable when no key is configured.
func LLMConfig() llm.Config {
	apiKey := viper.GetString("llm.apiKey")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return llm.Config{
		Provider:       viper.GetString("llm.provider"),
		Model:          viper.GetString("llm.model"),
		APIKey:         apiKey,
		RequestTimeout: time.Duration(viper.GetInt("llm.requestTimeoutSeconds")) * time.Second,
		MinInterval:    time.Duration(viper.GetInt("llm.minIntervalSeconds")) * time.Second,
	}
}

// Dedupe reports whether re-analysis should skip suggestions already stored
// for the same file, type and line.
func Dedupe() bool { return viper.GetBool("analysis.dedupe") }
