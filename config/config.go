package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/alejandrodnm/devnetmm/internal/pacing"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del market maker.
type Config struct {
	Chain   ChainConfig   `yaml:"chain"`
	Gateway GatewayConfig `yaml:"gateway"`
	Maker   AccountConfig `yaml:"maker"`
	Taker   AccountConfig `yaml:"taker"`
	Trading TradingConfig `yaml:"trading"`
	Pacing  PacingConfig  `yaml:"pacing"`
	Journal JournalConfig `yaml:"journal"`
	Log     LogConfig     `yaml:"log"`
}

// ChainConfig identifica el devnet y el binario que lo controla.
type ChainConfig struct {
	Binary         string `yaml:"binary"`
	ChainID        string `yaml:"chain_id"`
	Node           string `yaml:"node"` // vacío = el default del binario
	KeyringBackend string `yaml:"keyring_backend"`
	Fees           string `yaml:"fees"`
}

// GatewayConfig limita las invocaciones al binario.
type GatewayConfig struct {
	RatePerSec     float64 `yaml:"rate_per_sec"`
	Burst          int     `yaml:"burst"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// AccountConfig es una identidad de trading. El mnemonic se prefiere desde el entorno.
type AccountConfig struct {
	Name           string `yaml:"name"`
	Address        string `yaml:"address"`
	Subaccount     uint32 `yaml:"subaccount"`
	Mnemonic       string `yaml:"mnemonic"`
	DepositQuantum uint64 `yaml:"deposit_quantums"`
}

// TradingConfig controla los mercados y el tamaño de las quotes.
type TradingConfig struct {
	Markets         []string         `yaml:"markets"`
	TickSize        int64            `yaml:"tick_size"`
	BaseSize        uint64           `yaml:"base_size"` // quantums
	LookaheadBlocks uint64           `yaml:"lookahead_blocks"`
	DefaultPrices   map[string]int64 `yaml:"default_prices"` // precio si el oráculo falla
	FallbackPrice   int64            `yaml:"fallback_price"` // mercados sin default propio
}

// PacingConfig son las esperas en segundos.
type PacingConfig struct {
	SettleWindow   float64 `yaml:"settle_window"`
	SubmitPacing   float64 `yaml:"submit_pacing"`
	PostCancel     float64 `yaml:"post_cancel"`
	PostDeposit    float64 `yaml:"post_deposit"`
	BetweenMarkets float64 `yaml:"between_markets"`
	BetweenCycles  float64 `yaml:"between_cycles"`
	ErrorBackoff   float64 `yaml:"error_backoff"`
}

// JournalConfig controla el journal SQLite opcional.
type JournalConfig struct {
	DSN string `yaml:"dsn"` // vacío = deshabilitado; ruta al archivo o ":memory:"
}

// LogConfig controla el formato, nivel y archivo de logging.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug | info | warn | error
	Format     string `yaml:"format"` // text | json
	File       string `yaml:"file"`   // vacío = sólo stdout
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Parse decodifica YAML, aplica entorno y defaults, y valida.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rechaza configuraciones con las que el loop no puede operar.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Trading.Markets) == 0 {
		errs = append(errs, errors.New("at least one market is required"))
	}
	if c.Trading.TickSize <= 0 {
		errs = append(errs, fmt.Errorf("tick_size must be positive, got %d", c.Trading.TickSize))
	}
	if c.Trading.BaseSize == 0 {
		errs = append(errs, errors.New("base_size must be positive"))
	}
	if c.Trading.LookaheadBlocks == 0 {
		errs = append(errs, errors.New("lookahead_blocks must be positive"))
	}
	for id, p := range c.Trading.DefaultPrices {
		if p <= 0 {
			errs = append(errs, fmt.Errorf("default price for market %s must be positive", id))
		}
	}
	for role, a := range map[string]AccountConfig{"maker": c.Maker, "taker": c.Taker} {
		if a.Name == "" || a.Address == "" {
			errs = append(errs, fmt.Errorf("%s needs name and address", role))
		}
	}
	if c.Maker.Name != "" && c.Maker.Name == c.Taker.Name {
		errs = append(errs, errors.New("maker and taker must be different identities"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// PacingPolicy convierte las esperas configuradas en una pacing.Policy.
func (c *Config) PacingPolicy() pacing.Policy {
	return pacing.Policy{
		SettleWindow:   seconds(c.Pacing.SettleWindow),
		SubmitPacing:   seconds(c.Pacing.SubmitPacing),
		PostCancel:     seconds(c.Pacing.PostCancel),
		PostDeposit:    seconds(c.Pacing.PostDeposit),
		BetweenMarkets: seconds(c.Pacing.BetweenMarkets),
		BetweenCycles:  seconds(c.Pacing.BetweenCycles),
		ErrorBackoff:   seconds(c.Pacing.ErrorBackoff),
	}
}

// PriceTable devuelve los precios por defecto del oráculo.
func (c *Config) PriceTable() domain.PriceTable {
	t := domain.PriceTable{
		Defaults: make(map[string]domain.Price, len(c.Trading.DefaultPrices)),
		Fallback: domain.Price(c.Trading.FallbackPrice),
	}
	for id, p := range c.Trading.DefaultPrices {
		t.Defaults[id] = domain.Price(p)
	}
	return t
}

// GatewayTimeout devuelve el timeout por invocación.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}

// Identity devuelve la identidad de trading de la cuenta.
func (a AccountConfig) Identity() domain.TradingIdentity {
	return domain.TradingIdentity{Name: a.Name, Address: a.Address, Subaccount: a.Subaccount}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DYDX_BINARY"); v != "" {
		cfg.Chain.Binary = v
	}
	if v := os.Getenv("DYDX_CHAIN_ID"); v != "" {
		cfg.Chain.ChainID = v
	}
	if v := os.Getenv("DYDX_NODE"); v != "" {
		cfg.Chain.Node = v
	}
	if v := os.Getenv("MAKER_MNEMONIC"); v != "" {
		cfg.Maker.Mnemonic = v
	}
	if v := os.Getenv("TAKER_MNEMONIC"); v != "" {
		cfg.Taker.Mnemonic = v
	}
}

// setDefaults reproduce las constantes del devnet local.
func setDefaults(cfg *Config) {
	if cfg.Chain.Binary == "" {
		cfg.Chain.Binary = "dydxprotocold"
	}
	if cfg.Chain.ChainID == "" {
		cfg.Chain.ChainID = "localdydxprotocol"
	}
	if cfg.Chain.KeyringBackend == "" {
		cfg.Chain.KeyringBackend = "test"
	}
	if cfg.Chain.Fees == "" {
		cfg.Chain.Fees = "5000000000000000adv4tnt"
	}

	if cfg.Gateway.RatePerSec <= 0 {
		cfg.Gateway.RatePerSec = 5
	}
	if cfg.Gateway.Burst <= 0 {
		cfg.Gateway.Burst = 5
	}
	if cfg.Gateway.TimeoutSeconds <= 0 {
		cfg.Gateway.TimeoutSeconds = 30
	}

	if cfg.Maker.Name == "" && cfg.Maker.Address == "" {
		cfg.Maker.Name = "bob"
		cfg.Maker.Address = "dydx10fx7sy6ywd5senxae9dwytf8jxek3t2gcen2vs"
	}
	if cfg.Taker.Name == "" && cfg.Taker.Address == "" {
		cfg.Taker.Name = "alice"
		cfg.Taker.Address = "dydx199tqg4wdlnu4qjlxchpd7seg454937hjrknju4"
	}
	for _, a := range []*AccountConfig{&cfg.Maker, &cfg.Taker} {
		if a.DepositQuantum == 0 {
			a.DepositQuantum = 100_000_000_000
		}
	}

	if len(cfg.Trading.Markets) == 0 {
		cfg.Trading.Markets = []string{"0", "1"}
	}
	if cfg.Trading.TickSize == 0 {
		cfg.Trading.TickSize = 100_000
	}
	if cfg.Trading.BaseSize == 0 {
		cfg.Trading.BaseSize = 20_000_000_000
	}
	if cfg.Trading.LookaheadBlocks == 0 {
		cfg.Trading.LookaheadBlocks = 10
	}
	if cfg.Trading.DefaultPrices == nil {
		cfg.Trading.DefaultPrices = map[string]int64{"0": 10_000_000, "1": 10_000_000}
	}
	if cfg.Trading.FallbackPrice <= 0 {
		cfg.Trading.FallbackPrice = 20_000
	}

	def := pacing.DefaultPolicy()
	setSeconds(&cfg.Pacing.SettleWindow, def.SettleWindow)
	setSeconds(&cfg.Pacing.SubmitPacing, def.SubmitPacing)
	setSeconds(&cfg.Pacing.PostCancel, def.PostCancel)
	setSeconds(&cfg.Pacing.PostDeposit, def.PostDeposit)
	setSeconds(&cfg.Pacing.BetweenMarkets, def.BetweenMarkets)
	setSeconds(&cfg.Pacing.BetweenCycles, def.BetweenCycles)
	setSeconds(&cfg.Pacing.ErrorBackoff, def.ErrorBackoff)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.File != "" {
		if cfg.Log.MaxSizeMB <= 0 {
			cfg.Log.MaxSizeMB = 50
		}
		if cfg.Log.MaxBackups <= 0 {
			cfg.Log.MaxBackups = 5
		}
		if cfg.Log.MaxAgeDays <= 0 {
			cfg.Log.MaxAgeDays = 14
		}
	}
}

// setSeconds aplica el default sólo si el valor no se configuró (negativo = 0s).
func setSeconds(v *float64, def time.Duration) {
	switch {
	case *v == 0:
		*v = def.Seconds()
	case *v < 0:
		*v = 0
	}
}
