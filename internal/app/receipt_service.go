package app

import (
	"fmt"
	"time"

	"blackjack/internal/domain"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptService signs tamper-evident settlement receipts.
type ReceiptService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Receipt is the settled round a token vouches for.
type Receipt struct {
	RoundID      string
	UserID       string
	Bet          decimal.Decimal
	Payout       decimal.Decimal
	Outcome      domain.Outcome
	BalanceAfter decimal.Decimal
}

// ReceiptClaims are the JWT claims of a receipt. Amounts are carried as
// decimal strings so no precision is lost in JSON numbers.
type ReceiptClaims struct {
	RoundID      string `json:"rid"`
	Bet          string `json:"bet"`
	Payout       string `json:"payout"`
	Outcome      string `json:"outcome"`
	BalanceAfter string `json:"balance_after"`
	jwt.StandardClaims
}

const defaultReceiptTTL = 30 * 24 * time.Hour

func NewReceiptService(secret, issuer string) *ReceiptService {
	return &ReceiptService{
		secret: secret,
		issuer: issuer,
		ttl:    defaultReceiptTTL,
		now:    time.Now,
	}
}

// Sign returns an HS256 token for the receipt.
func (s *ReceiptService) Sign(r Receipt) (string, error) {
	if s == nil {
		return "", fmt.Errorf("receipt service is nil")
	}
	if s.secret == "" {
		return "", fmt.Errorf("receipt secret is not configured")
	}
	if r.RoundID == "" || r.UserID == "" {
		return "", fmt.Errorf("round id and user are required")
	}

	issuedAt := s.now()
	claims := ReceiptClaims{
		RoundID:      r.RoundID,
		Bet:          r.Bet.String(),
		Payout:       r.Payout.String(),
		Outcome:      string(r.Outcome),
		BalanceAfter: r.BalanceAfter.String(),
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   r.UserID,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(s.ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify parses a receipt token and checks its signature and expiry.
func (s *ReceiptService) Verify(tokenString string) (*ReceiptClaims, error) {
	if s == nil || s.secret == "" {
		return nil, fmt.Errorf("receipt secret is not configured")
	}
	claims := &ReceiptClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid receipt: %w", err)
	}
	if claims.Issuer != s.issuer {
		return nil, fmt.Errorf("invalid receipt: issuer %q", claims.Issuer)
	}
	return claims, nil
}
