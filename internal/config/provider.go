package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

const (
	// ProjectFile is the optional project configuration file
	ProjectFile = "uups.toml"

	// ViperKeyAnnotation maps a flag to a viper key that differs from its name
	ViperKeyAnnotation = "viper-key"

	EnvPrefix = "UUPS"
)

// envBindings are the unprefixed variable names the deploy scripts always used
var envBindings = map[string]string{
	"nft_name":          "NFT_NAME",
	"nft_symbol":        "NFT_SYMBOL",
	"base_uri":          "BASE_URI",
	"royalty_receiver":  "ROYALTY_RECEIVER",
	"royalty_fee":       "ROYALTY_FEE",
	"admin":             "ADMIN",
	"rpc_url":           "RPC_URL",
	"private_key":       "PRIVATE_KEY",
	"etherscan_api_key": "ETHERSCAN_API_KEY",
}

// projectMarkers identify a project root, nearest ancestor wins
var projectMarkers = []string{ProjectFile, "foundry.toml", "hardhat.config.js", "hardhat.config.ts"}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	output := config.OutputFormat(strings.ToLower(v.GetString("output")))
	switch output {
	case config.OutputText, config.OutputJSON, config.OutputYAML:
	default:
		return nil, &domain.ConfigError{Field: "output", Value: string(output), Err: fmt.Errorf("must be text, json or yaml")}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		ConfigFile:     v.ConfigFileUsed(),
		NetworkName:    v.GetString("network"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Output:         output,
		Timeout:        v.GetDuration("timeout"),
		LogLevel:       v.GetString("log_level"),
		DryRun:         v.GetBool("dry_run"),
		AssumeYes:      v.GetBool("yes"),
		Deploy:         deployOverrides(v),
		Fallback: config.NetworkFallback{
			RPCURL:          v.GetString("rpc_url"),
			EtherscanAPIKey: v.GetString("etherscan_api_key"),
		},
	}

	project := &config.ProjectConfig{}
	if err := v.Unmarshal(project); err != nil {
		return nil, &domain.ConfigError{Field: ProjectFile, Value: cfg.ConfigFile, Err: err}
	}
	cfg.Project = project.WithDefaults()

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, err
	}
	cfg.FoundryConfig = foundryConfig

	cfg.Signer = signerConfig(v, cfg.Project.Signer)

	if cfg.NetworkName != "" || cfg.Fallback.RPCURL != "" {
		network, err := NewNetworkResolver(cfg.Project, cfg.FoundryConfig, cfg.Fallback).ResolveNetwork(context.Background(), cfg.NetworkName)
		if err != nil {
			return nil, err
		}
		cfg.Network = network
	}

	return cfg, nil
}

// deployTableKeys maps override keys to their [deploy] table entries in uups.toml
var deployTableKeys = map[string]string{
	"nft_name":            "deploy.name",
	"nft_symbol":          "deploy.symbol",
	"base_uri":            "deploy.base_uri",
	"royalty_receiver":    "deploy.royalty_receiver",
	"royalty_fee":         "deploy.royalty_fee",
	"admin":               "deploy.admin",
	"allow_zero_receiver": "deploy.allow_zero_receiver",
}

// deployOverrides collects only the deployment values the user actually set.
// Flags and env win over the [deploy] table.
func deployOverrides(v *viper.Viper) domain.DeploymentOverrides {
	lookup := func(key string) (string, bool) {
		if v.IsSet(key) {
			return key, true
		}
		if table := deployTableKeys[key]; v.IsSet(table) {
			return table, true
		}
		return "", false
	}
	get := func(key string) *string {
		found, ok := lookup(key)
		if !ok {
			return nil
		}
		s := v.GetString(found)
		return &s
	}
	allowZero := false
	if found, ok := lookup("allow_zero_receiver"); ok {
		allowZero = v.GetBool(found)
	}
	return domain.DeploymentOverrides{
		Name:                     get("nft_name"),
		Symbol:                   get("nft_symbol"),
		BaseURI:                  get("base_uri"),
		RoyaltyReceiver:          get("royalty_receiver"),
		RoyaltyFee:               get("royalty_fee"),
		Admin:                    get("admin"),
		AllowZeroRoyaltyReceiver: allowZero,
	}
}

// signerConfig puts PRIVATE_KEY first, followed by [signer] private_keys
func signerConfig(v *viper.Viper, fromFile config.SignerConfig) config.SignerConfig {
	var keys []string
	if key := strings.TrimSpace(v.GetString("private_key")); key != "" {
		keys = append(keys, key)
	}
	for _, key := range fromFile.PrivateKeys {
		if key = strings.TrimSpace(os.ExpandEnv(key)); key != "" {
			keys = append(keys, key)
		}
	}
	return config.SignerConfig{PrivateKeys: keys}
}

// FindProjectRoot walks up from the current directory to the nearest project
// marker, falling back to the current directory
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findProjectRoot(cwd), nil
}

func findProjectRoot(start string) string {
	dir := start
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance. Precedence is
// flag > environment > uups.toml > default.
func SetupViper(projectRoot string, cmd *cobra.Command) (*viper.Viper, error) {
	if err := LoadEnvFiles(projectRoot); err != nil {
		return nil, &domain.ConfigError{Field: ".env", Err: err}
	}

	v := viper.New()

	configFile := ""
	if f := cmd.Flags().Lookup("config"); f != nil {
		configFile = f.Value.String()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("uups")
		v.SetConfigType("toml")
		v.AddConfigPath(projectRoot)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, EnvPrefix+"_"+env, env); err != nil {
			return nil, err
		}
	}

	v.SetDefault("output", string(config.OutputText))
	v.SetDefault("timeout", 10*time.Minute)
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, &domain.ConfigError{Field: "config", Value: configFile, Err: err}
		}
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" || f.Name == "help" {
			return
		}
		bindErr = v.BindPFlag(ViperKey(f), f)
	})
	if bindErr != nil {
		return nil, bindErr
	}

	return v, nil
}

// ViperKey returns the annotated viper key of a flag, or its name in snake case
func ViperKey(f *pflag.Flag) string {
	if keys, ok := f.Annotations[ViperKeyAnnotation]; ok && len(keys) > 0 {
		return keys[0]
	}
	return strings.ReplaceAll(f.Name, "-", "_")
}

// AnnotateViperKey binds flag name to a different viper key
func AnnotateViperKey(flags *pflag.FlagSet, name, key string) {
	if err := flags.SetAnnotation(name, ViperKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}
