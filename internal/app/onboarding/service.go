package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"blackjack/internal/ports"

	"github.com/shopspring/decimal"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// WelcomeBonusGranted is false when the chips were granted on an earlier login.
	WelcomeBonusGranted bool
	DisplayName         string
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts      ports.AccountPort
	bonuses       ports.WelcomeBonusPort
	startingChips decimal.Decimal
	rng           *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/bonuses must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, bonuses ports.WelcomeBonusPort, startingChips decimal.Decimal, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts:      accounts,
		bonuses:       bonuses,
		startingChips: startingChips,
		rng:           rng,
	}
}

// OnboardNewUser names a newly created account and grants its starting chips.
// Returns an error only if the chip grant fails.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonuses == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}
	if !s.startingChips.IsPositive() {
		return Result{}, fmt.Errorf("starting chips must be positive, got %s", s.startingChips)
	}

	result := Result{DisplayName: s.generateFriendlyName()}
	if err := s.accounts.UpdateProfile(ctx, userID, result.DisplayName, result.DisplayName); err != nil {
		// Profile updates are best-effort; chips are what let the player sit down.
		result.ProfileUpdateErr = err
	}

	meta := ports.LedgerMeta{
		Reason:         ports.ReasonWelcomeBonus,
		IdempotencyKey: userID + ":" + ports.ReasonWelcomeBonus,
	}
	granted, err := s.bonuses.GrantWelcomeBonusOnce(ctx, userID, s.startingChips, meta)
	if err != nil {
		return result, fmt.Errorf("failed to grant starting chips: %w", err)
	}
	result.WelcomeBonusGranted = granted

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Lucky", "Sharp", "Bold", "Steady", "Cool", "Quick", "Sly", "Wild", "Calm", "Brave"}
	nouns := []string{"Ace", "Dealer", "Shark", "Joker", "King", "Queen", "Knave", "Gambler", "Fox", "Owl"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
