package config

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/ManaSearch/internal/game"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/cards"
	"github.com/mitchelldurbincs/ManaSearch/internal/match"
	"github.com/mitchelldurbincs/ManaSearch/internal/player"
)

// Config holds all configuration for the application
type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	MCTS    MCTSConfig    `mapstructure:"mcts"`
	Players PlayersConfig `mapstructure:"players"`
	Match   MatchConfig   `mapstructure:"match"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
}

// GameConfig holds the rules constants and named decklists
type GameConfig struct {
	StartingLife     int               `mapstructure:"starting_life"`
	StartingHandSize int               `mapstructure:"starting_hand_size"`
	LandsPerTurn     int               `mapstructure:"lands_per_turn"`
	Seats            int               `mapstructure:"seats"`
	MaxMulligans     int               `mapstructure:"max_mulligans"`
	MaxActions       int               `mapstructure:"max_actions"`
	Decklists        map[string]string `mapstructure:"decklists"`
}

// MCTSConfig holds planner settings
type MCTSConfig struct {
	BudgetMs          int     `mapstructure:"budget_ms"`
	Exploration       float64 `mapstructure:"exploration"`
	MaxRolloutActions int     `mapstructure:"max_rollout_actions"`
	Seed              uint64  `mapstructure:"seed"`
}

// PlayersConfig holds player policy settings
type PlayersConfig struct {
	Random RandomPlayerConfig `mapstructure:"random"`
}

// RandomPlayerConfig holds the random policy's probabilities
type RandomPlayerConfig struct {
	Mulligan float64 `mapstructure:"mulligan"`
	Land     float64 `mapstructure:"land"`
	Spell    float64 `mapstructure:"spell"`
	Attack   float64 `mapstructure:"attack"`
	Block    float64 `mapstructure:"block"`
}

// MatchConfig holds match runner settings
type MatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxMatches  int `mapstructure:"max_matches"`
}

// ServerConfig holds gRPC and websocket server settings
type ServerConfig struct {
	Host                  string `mapstructure:"host"`
	GRPCPort              int    `mapstructure:"grpc_port"`
	WebsocketPort         int    `mapstructure:"websocket_port"`
	LogLevel              string `mapstructure:"log_level"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
}

// StorageConfig selects where match records go
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	Dir         string `mapstructure:"dir"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

var (
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// DefaultDecklists are the decks available by name out of the box.
var DefaultDecklists = map[string]string{
	"mono_red":   "24 Mountain\n20 Goblin Piker\n16 Hill Giant",
	"mono_green": "24 Forest\n36 Grizzly Bears",
	"mono_white": "24 Plains\n36 Savannah Lions",
}

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("game.starting_life", game.DefaultStartingLife)
	v.SetDefault("game.starting_hand_size", game.DefaultStartingHandSize)
	v.SetDefault("game.lands_per_turn", game.DefaultLandsPerTurn)
	v.SetDefault("game.seats", 2)
	v.SetDefault("game.max_mulligans", game.DefaultMaxMulligans)
	v.SetDefault("game.max_actions", game.DefaultMaxActions)
	v.SetDefault("game.decklists", DefaultDecklists)

	v.SetDefault("mcts.budget_ms", 500)
	v.SetDefault("mcts.exploration", 1/math.Sqrt2)
	v.SetDefault("mcts.max_rollout_actions", 20000)
	v.SetDefault("mcts.seed", 0)

	random := player.DefaultRandomConfig()
	v.SetDefault("players.random.mulligan", random.Mulligan)
	v.SetDefault("players.random.land", random.Land)
	v.SetDefault("players.random.spell", random.Spell)
	v.SetDefault("players.random.attack", random.Attack)
	v.SetDefault("players.random.block", random.Block)

	v.SetDefault("match.concurrency", match.DefaultConcurrency)
	v.SetDefault("match.max_matches", 64)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.grpc_port", 50061)
	v.SetDefault("server.websocket_port", 8089)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.enable_reflection", true)
	v.SetDefault("server.graceful_shutdown_delay", 2)

	v.SetDefault("storage.driver", string(match.StoreMemory))
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.postgres_dsn", "")
}

// Init initializes the configuration
func Init(configPath string) error {
	nv := viper.New()
	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
		nv.AddConfigPath("/etc/manasearch")
	}

	nv.SetEnvPrefix("MANA")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		// A missing file is fine: defaults and environment still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath == "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	loaded, err := load(nv)
	if err != nil {
		return err
	}

	mu.Lock()
	v, cfg = nv, loaded
	mu.Unlock()
	return nil
}

func load(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// Set allows runtime config updates. The value is kept only if the
// resulting configuration still validates.
func Set(key string, value interface{}) error {
	mu.Lock()
	defer mu.Unlock()
	prev := v.Get(key)
	v.Set(key, value)
	c, err := load(v)
	if err != nil {
		v.Set(key, prev)
		return err
	}
	cfg = c
	return nil
}

// GetString gets a string value from config
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return GetViper().GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return GetViper().GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return GetViper().GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return GetViper().ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange receives
// the new config, or the error that kept the previous one in place.
func WatchConfig(onChange func(*Config, error)) {
	wv := GetViper()
	wv.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		c, err := load(wv)
		if err == nil {
			cfg = c
		}
		mu.Unlock()
		if onChange != nil {
			onChange(c, err)
		}
	})
	wv.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.Seats != 2 {
		return fmt.Errorf("game.seats must be 2")
	}
	if c.Game.StartingLife <= 0 {
		return fmt.Errorf("game.starting_life must be positive")
	}
	if c.Game.StartingHandSize <= 0 {
		return fmt.Errorf("game.starting_hand_size must be positive")
	}
	if c.Game.LandsPerTurn < 0 {
		return fmt.Errorf("game.lands_per_turn must be non-negative")
	}
	if c.Game.MaxMulligans < 0 {
		return fmt.Errorf("game.max_mulligans must be non-negative")
	}
	if c.Game.MaxActions <= 0 {
		return fmt.Errorf("game.max_actions must be positive")
	}
	for name, list := range c.Game.Decklists {
		if _, err := cards.ParseDecklist(list); err != nil {
			return fmt.Errorf("game.decklists.%s: %w", name, err)
		}
	}

	if c.MCTS.BudgetMs <= 0 {
		return fmt.Errorf("mcts.budget_ms must be positive")
	}
	if c.MCTS.Exploration <= 0 {
		return fmt.Errorf("mcts.exploration must be positive")
	}
	if c.MCTS.MaxRolloutActions <= 0 {
		return fmt.Errorf("mcts.max_rollout_actions must be positive")
	}

	if err := c.RandomPlayer().Validate(); err != nil {
		return fmt.Errorf("players.random: %w", err)
	}

	if c.Match.Concurrency <= 0 {
		return fmt.Errorf("match.concurrency must be positive")
	}
	if c.Match.MaxMatches < 0 {
		return fmt.Errorf("match.max_matches must be non-negative")
	}

	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port must be between 1 and 65535")
	}
	if c.Server.WebsocketPort <= 0 || c.Server.WebsocketPort > 65535 {
		return fmt.Errorf("server.websocket_port must be between 1 and 65535")
	}
	if c.Server.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.graceful_shutdown_delay must be non-negative")
	}

	switch match.StoreDriver(c.Storage.Driver) {
	case match.StoreMemory:
	case match.StoreFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the file driver")
		}
	case match.StorePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver %q: %w", c.Storage.Driver, match.ErrInvalidStoreDriver)
	}

	return nil
}

// Budget is the per-decision search budget.
func (c *Config) Budget() time.Duration {
	return time.Duration(c.MCTS.BudgetMs) * time.Millisecond
}

// RandomPlayer converts the random policy settings.
func (c *Config) RandomPlayer() player.RandomConfig {
	r := c.Players.Random
	return player.RandomConfig{
		Mulligan: r.Mulligan,
		Land:     r.Land,
		Spell:    r.Spell,
		Attack:   r.Attack,
		Block:    r.Block,
	}
}

// GameSettings returns the rules constants as a game config; players,
// decklists and RNG are left for the caller.
func (c *Config) GameSettings() game.GameConfig {
	gc := game.DefaultGameConfig()
	gc.StartingLife = c.Game.StartingLife
	gc.StartingHandSize = c.Game.StartingHandSize
	gc.LandsPerTurn = c.Game.LandsPerTurn
	gc.MaxMulligans = c.Game.MaxMulligans
	gc.MaxActions = c.Game.MaxActions
	return gc
}

// Store returns the storage settings for match.NewStore.
func (c *Config) Store() match.StoreConfig {
	return match.StoreConfig{
		Driver:      match.StoreDriver(c.Storage.Driver),
		Dir:         c.Storage.Dir,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// Decklist resolves a deck by name, or returns name itself when it already
// reads as a decklist.
func (c *Config) Decklist(name string) (string, error) {
	if list, ok := c.Game.Decklists[strings.ToLower(name)]; ok {
		return list, nil
	}
	if _, err := cards.ParseDecklist(name); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("unknown decklist %q", name)
}
