package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"blackjack/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultPath is where the plugin looks for the table configuration,
// relative to the Nakama working directory.
const DefaultPath = "data/blackjack_config.json"

// Runtime env keys that override file values.
const (
	EnvReceiptSecret = "blackjack_receipt_secret"
	EnvMinBet        = "blackjack_min_bet"
	EnvMaxBet        = "blackjack_max_bet"
	EnvShoeThreshold = "blackjack_shoe_threshold"
)

type GameConfig struct {
	MinBet        decimal.Decimal `json:"min_bet"`
	MaxBet        decimal.Decimal `json:"max_bet"`
	BetIncrement  decimal.Decimal `json:"bet_increment"`
	ShoeThreshold int             `json:"shoe_threshold"`
	Decks         int             `json:"decks"`
	// Currency is the wallet key chips are stored under.
	Currency string `json:"currency"`
	// WalletScale is the number of decimal places kept when converting chip
	// amounts to the integer wallet.
	WalletScale         int32           `json:"wallet_scale"`
	StartingChips       decimal.Decimal `json:"starting_chips"`
	CreditRetryAttempts int             `json:"credit_retry_attempts"`
	HistoryLimit        int             `json:"history_limit"`
	IdleTimeoutSeconds  int             `json:"idle_timeout_seconds"`
	AdvisorLevel        string          `json:"advisor_level"`
	ReceiptIssuer       string          `json:"receipt_issuer"`
	// ReceiptSecret is only ever read from the runtime env.
	ReceiptSecret string `json:"-"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the stock table configuration.
func Default() GameConfig {
	return GameConfig{
		MinBet:              decimal.NewFromInt(1),
		MaxBet:              decimal.NewFromInt(1000),
		BetIncrement:        decimal.New(5, -1),
		ShoeThreshold:       domain.DefaultShoeThreshold,
		Decks:               domain.DecksPerShoe,
		Currency:            "chips",
		WalletScale:         2,
		StartingChips:       decimal.NewFromInt(100),
		CreditRetryAttempts: 3,
		HistoryLimit:        20,
		IdleTimeoutSeconds:  300,
		AdvisorLevel:        "smart",
		ReceiptIssuer:       "blackjack",
	}
}

// LoadGameConfig loads the game configuration from the given path once.
// Later calls return the first result.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or Default when nothing
// was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

// Parse decodes a config file over the defaults and validates the result.
func Parse(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

// WithEnv applies runtime env overrides and re-validates.
func (c GameConfig) WithEnv(env map[string]string) (GameConfig, error) {
	if v, ok := env[EnvReceiptSecret]; ok {
		c.ReceiptSecret = v
	}
	if v, ok := env[EnvMinBet]; ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return c, fmt.Errorf("invalid %s %q: %w", EnvMinBet, v, err)
		}
		c.MinBet = d
	}
	if v, ok := env[EnvMaxBet]; ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return c, fmt.Errorf("invalid %s %q: %w", EnvMaxBet, v, err)
		}
		c.MaxBet = d
	}
	if v, ok := env[EnvShoeThreshold]; ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("invalid %s %q: %w", EnvShoeThreshold, v, err)
		}
		c.ShoeThreshold = i
	}
	return c, c.Validate()
}

// Validate rejects configurations the round engine cannot honor.
func (c GameConfig) Validate() error {
	if !c.MinBet.IsPositive() {
		return fmt.Errorf("min_bet must be positive, got %s", c.MinBet)
	}
	if !c.MaxBet.GreaterThan(c.MinBet) {
		return fmt.Errorf("max_bet %s must exceed min_bet %s", c.MaxBet, c.MinBet)
	}
	if c.BetIncrement.IsNegative() {
		return fmt.Errorf("bet_increment must not be negative, got %s", c.BetIncrement)
	}
	if c.ShoeThreshold < 10 || c.ShoeThreshold > 100 {
		return fmt.Errorf("shoe_threshold %d outside [10, 100]", c.ShoeThreshold)
	}
	if c.Decks != domain.DecksPerShoe {
		return fmt.Errorf("decks %d unsupported, the shoe holds %d decks", c.Decks, domain.DecksPerShoe)
	}
	if c.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if c.WalletScale < 0 || c.WalletScale > 8 {
		return fmt.Errorf("wallet_scale %d outside [0, 8]", c.WalletScale)
	}
	if !c.BetIncrement.IsZero() && c.BetIncrement.Exponent() < -c.WalletScale {
		return fmt.Errorf("bet_increment %s is finer than wallet_scale %d", c.BetIncrement, c.WalletScale)
	}
	if c.CreditRetryAttempts < 1 {
		return fmt.Errorf("credit_retry_attempts must be at least 1")
	}
	return nil
}

// BetLimits converts the table limits for the round engine.
func (c GameConfig) BetLimits() domain.BetLimits {
	return domain.BetLimits{Min: c.MinBet, Max: c.MaxBet, Increment: c.BetIncrement}
}
