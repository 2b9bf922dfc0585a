package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/util"
	"github.com/skillsenselab/wirekit/validation"
)

// FileSystem abstracts file existence checks and .env loading so tests
// can run without touching the real filesystem.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem against the host filesystem.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Defaultable is implemented by configuration types that fill in
// defaults for unset fields. Load calls ApplyDefaults after
// unmarshalling and before validation.
type Defaultable interface {
	ApplyDefaults()
}

// Validatable is implemented by configuration types that perform
// semantic validation beyond struct tags. Load calls Validate last.
type Validatable interface {
	Validate() error
}

// LoaderConfig controls where Load looks for configuration sources.
// The zero value searches the conventional paths on the real
// filesystem with no environment prefix.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
}

// Option adjusts loader behavior.
type Option func(*LoaderConfig)

// WithFileSystem substitutes the filesystem used for file resolution.
func WithFileSystem(fs FileSystem) Option {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile pins the YAML file to load, skipping the search paths.
func WithConfigFile(path string) Option {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile pins the .env file to load, skipping the search paths.
func WithEnvFile(path string) Option {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix restricts environment binding to variables carrying the
// given prefix. The prefix and its trailing underscore are stripped
// before the variable is mapped to a config key, so with prefix
// "BILLING" the variable BILLING_LOGGING_LEVEL binds to logging.level.
func WithEnvPrefix(prefix string) Option {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(prefix, "_") }
}

// Resolver locates configuration and environment files for a service.
type Resolver struct {
	fs FileSystem
}

// NewResolver returns a Resolver backed by the given filesystem.
func NewResolver(fs FileSystem) *Resolver {
	return &Resolver{fs: fs}
}

// ResolvedFiles holds the outcome of a resolution pass. ConfigFile is
// empty when no YAML file was found; EnvFiles lists every .env file
// that exists, in load order.
type ResolvedFiles struct {
	ConfigFile string
	EnvFiles   []string
}

// Resolve searches the conventional locations for a service's
// configuration. YAML candidates are checked most specific first and
// the first hit wins; all existing .env candidates are returned.
func (r *Resolver) Resolve(serviceName string) ResolvedFiles {
	var resolved ResolvedFiles

	yamlCandidates := []string{
		fmt.Sprintf("./config/%s.yaml", serviceName),
		fmt.Sprintf("./config/%s.yml", serviceName),
		fmt.Sprintf("./%s.yaml", serviceName),
		fmt.Sprintf("./%s.yml", serviceName),
		"./config/config.yaml",
		"./config/config.yml",
		"./config.yaml",
		"./config.yml",
	}
	for _, candidate := range yamlCandidates {
		if r.fs.Exists(candidate) {
			resolved.ConfigFile = candidate
			break
		}
	}

	envCandidates := []string{
		fmt.Sprintf("./config/.env.%s", serviceName),
		fmt.Sprintf("./.env.%s", serviceName),
		"./config/.env",
		"./.env",
	}
	for _, candidate := range envCandidates {
		if r.fs.Exists(candidate) {
			resolved.EnvFiles = append(resolved.EnvFiles, candidate)
		}
	}

	return resolved
}

// Load populates cfg from the service's YAML file, .env files, and the
// process environment. Environment variables take precedence over file
// values. After unmarshalling, Load applies defaults when cfg is
// Defaultable, checks struct tags, and runs Validate when cfg is
// Validatable. cfg must be a pointer to a struct.
func Load(serviceName string, cfg any, opts ...Option) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	files := resolveFiles(serviceName, lc)

	for _, envFile := range files.EnvFiles {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			fmt.Printf("[config] warning: failed to load env file %s: %v\n", envFile, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("failed to read config file %s", files.ConfigFile)).WithCause(err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	autoBindEnvVars(v, lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return errors.ConfigInvalid("failed to unmarshal configuration").WithCause(err)
	}

	if d, ok := cfg.(Defaultable); ok {
		d.ApplyDefaults()
	}
	if err := validation.Struct(cfg); err != nil {
		return err
	}
	if vld, ok := cfg.(Validatable); ok {
		if err := vld.Validate(); err != nil {
			if errors.IsCode(err, errors.ErrCodeConfigInvalid) {
				return err
			}
			return errors.ConfigInvalid("configuration validation failed").WithCause(err)
		}
	}
	return nil
}

func resolveFiles(serviceName string, lc LoaderConfig) ResolvedFiles {
	resolved := NewResolver(lc.FileSystem).Resolve(serviceName)
	if lc.ConfigFile != "" {
		resolved.ConfigFile = lc.ConfigFile
	}
	if lc.EnvFile != "" {
		resolved.EnvFiles = []string{lc.EnvFile}
	}
	return resolved
}

// autoBindEnvVars binds every visible environment variable to the viper
// keys it could populate. Viper's AutomaticEnv only resolves keys it
// already knows about, so without explicit binds nested struct fields
// never see environment overrides.
func autoBindEnvVars(v *viper.Viper, prefix string) {
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		envKey := parts[0]

		if prefix != "" {
			if !strings.HasPrefix(envKey, prefix+"_") {
				continue
			}
			envKey = strings.TrimPrefix(envKey, prefix+"_")
		}

		for _, variant := range envKeyVariants(envKey) {
			if err := v.BindEnv(variant, parts[0]); err != nil {
				fmt.Printf("[config] warning: failed to bind env var %s: %v\n", parts[0], err)
			}
		}
	}
}

// envKeyVariants maps an environment variable name to the viper keys it
// may address. LOGGING_OUTPUT_PATH yields logging.output.path,
// logging.output_path and logging_output.path, since an underscore may
// separate either nesting levels or words within one field name.
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	segments := strings.Split(lower, "_")
	if len(segments) == 1 {
		return []string{lower}
	}

	variants := []string{strings.Join(segments, ".")}
	for i := 1; i < len(segments); i++ {
		head := strings.Join(segments[:i], "_")
		tail := strings.Join(segments[i:], "_")
		variants = append(variants, head+"."+tail)
	}
	variants = append(variants, strings.ReplaceAll(lower, "_", "."))
	return util.Unique(variants)
}
