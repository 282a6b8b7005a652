package bot

import (
	"fmt"
)

// BotLevel selects an advisor strategy.
type BotLevel int

const (
	BotLevelGood BotLevel = iota
	BotLevelSmart
)

// NewBrain creates a new advisor based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return &SmartBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// ParseLevel maps a config name to a BotLevel.
func ParseLevel(name string) (BotLevel, error) {
	switch name {
	case "good":
		return BotLevelGood, nil
	case "smart", "":
		return BotLevelSmart, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
}
