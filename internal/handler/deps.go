package handler

import (
	"golang.org/x/time/rate"

	"biochat/internal/app/chat"
	"biochat/internal/app/store"
	"biochat/internal/configs"
	"biochat/internal/pkg/limiter"
	"biochat/internal/pkg/pow"
)

const (
	LoginRate      = 0.1
	LoginBurst     = 3
	ChallengeRate  = 0.5
	ChallengeBurst = 5
	StreamRate     = 0.2
	StreamBurst    = 5
)

// AppDeps bundles everything the HTTP layer needs.
type AppDeps struct {
	Store    *store.Store
	Hub      *chat.Hub
	Config   *configs.AppConfig
	PoW      *pow.Manager
	Limiters *Limiters
}

// Limiters holds the per-IP rate limiters of the public endpoints.
type Limiters struct {
	Login     *limiter.IPRateLimiter
	Challenge *limiter.IPRateLimiter
	Stream    *limiter.IPRateLimiter
}

// NewLimiters creates the default limiters. Call Stop to release their janitors.
func NewLimiters() *Limiters {
	return &Limiters{
		Login:     limiter.NewIPRateLimiter(rate.Limit(LoginRate), LoginBurst),
		Challenge: limiter.NewIPRateLimiter(rate.Limit(ChallengeRate), ChallengeBurst),
		Stream:    limiter.NewIPRateLimiter(rate.Limit(StreamRate), StreamBurst),
	}
}

// Stop releases all limiters.
func (l *Limiters) Stop() {
	l.Login.Stop()
	l.Challenge.Stop()
	l.Stream.Stop()
}
