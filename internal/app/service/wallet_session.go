package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"
	"risk_monitor/internal/infrastructure/configloader"
	"risk_monitor/internal/pkg/metrics"
)

// WalletSessionService is the single source of truth for who is connected and
// with which address, reconciled against a provider that can change state
// outside this process (account switch, revoked access).
//
// While connected it runs a recurring account poll on one goroutine. The loop
// blocks on the provider call, so a poll can never overlap itself; ticks that
// arrive mid-query are dropped by the ticker.
type WalletSessionService struct {
	provider       port.AccountProvider
	logger         port.Logger
	pollInterval   time.Duration
	requestTimeout time.Duration

	mu       sync.Mutex
	state    entity.SessionState
	address  string
	lastErr  string
	stopPoll chan struct{}

	listeners []func(entity.WalletIdentity)
}

// NewWalletSession creates a wallet session in the Disconnected state.
func NewWalletSession(provider port.AccountProvider, logger port.Logger, cfg configloader.WalletConfig) *WalletSessionService {
	return &WalletSessionService{
		provider:       provider,
		logger:         logger,
		pollInterval:   time.Duration(cfg.AccountPollIntervalMs) * time.Millisecond,
		requestTimeout: time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		state:          entity.SessionDisconnected,
	}
}

// OnIdentityChange registers a listener invoked after every identity change.
// Must be called before Connect or CheckExistingSession.
func (s *WalletSessionService) OnIdentityChange(fn func(entity.WalletIdentity)) {
	s.listeners = append(s.listeners, fn)
}

// Identity returns the current wallet identity snapshot.
func (s *WalletSessionService) Identity() entity.WalletIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.WalletIdentity{
		Address:   s.address,
		Connected: s.state == entity.SessionConnected,
	}
}

// State returns the session state and, for SessionError, the failure message.
func (s *WalletSessionService) State() (entity.SessionState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr
}

// Connect requests access from the provider, prompting the user. On success
// the session becomes Connected and the account poll starts. On failure no
// connection is retained.
func (s *WalletSessionService) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == entity.SessionConnected {
		s.mu.Unlock()
		return nil
	}
	s.state = entity.SessionConnecting
	s.mu.Unlock()

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		s.failConnect(err)
		return err
	}
	if len(accounts) == 0 {
		err := fmt.Errorf("%w: provider returned no accounts", entity.ErrProviderError)
		s.failConnect(err)
		return err
	}

	s.establish(accounts[0])
	return nil
}

// CheckExistingSession queries already-authorized accounts without prompting.
// Invoked once at startup; transitions straight to Connected when the
// provider still grants access.
func (s *WalletSessionService) CheckExistingSession(ctx context.Context) error {
	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		s.logger.Warn("Existing session check failed", "error", err)
		return err
	}
	if len(accounts) == 0 {
		s.logger.Debug("No pre-authorized accounts, staying disconnected")
		return nil
	}

	s.establish(accounts[0])
	return nil
}

// Disconnect tears the session down locally: the address is cleared and the
// poll is cancelled as part of this call. Provider permissions are never
// revoked; most wallet providers do not support that.
func (s *WalletSessionService) Disconnect() {
	s.mu.Lock()
	if s.stopPoll != nil {
		close(s.stopPoll)
		s.stopPoll = nil
	}
	s.state = entity.SessionDisconnected
	s.address = ""
	s.lastErr = ""
	s.mu.Unlock()

	metrics.WalletConnected.Set(0)
	s.logger.Info("Wallet session disconnected")
	s.notify()
}

func (s *WalletSessionService) failConnect(err error) {
	s.mu.Lock()
	s.state = entity.SessionError
	s.address = ""
	s.lastErr = err.Error()
	s.mu.Unlock()

	metrics.WalletConnected.Set(0)
	s.logger.Warn("Wallet connect failed", "error", err)
	s.notify()
}

func (s *WalletSessionService) establish(address string) {
	s.mu.Lock()
	s.state = entity.SessionConnected
	s.address = address
	s.lastErr = ""
	stop := make(chan struct{})
	s.stopPoll = stop
	s.mu.Unlock()

	metrics.WalletConnected.Set(1)
	s.logger.Info("Wallet session connected", "address", address)
	s.notify()

	go s.pollLoop(stop)
}

// pollLoop re-checks the provider's account list at a fixed interval while
// connected. It exits when the session is torn down or the provider reports
// zero accounts.
func (s *WalletSessionService) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.pollOnce(stop) {
				return
			}
		}
	}
}

// pollOnce runs a single account query and reconciles the session with the
// result. Returns false when polling should stop.
func (s *WalletSessionService) pollOnce(stop chan struct{}) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
	accounts, err := s.provider.Accounts(ctx)
	cancel()

	if err != nil {
		// Transient: keep the session and retry on the next tick.
		metrics.WalletPollErrorsTotal.Inc()
		s.logger.Warn("Account poll failed", "error", err)
		return true
	}

	s.mu.Lock()
	if s.stopPoll != stop {
		// The session was torn down while the query was in flight.
		s.mu.Unlock()
		return false
	}

	if len(accounts) == 0 {
		// Provider revoked access; force a local disconnect.
		s.stopPoll = nil
		s.state = entity.SessionDisconnected
		s.address = ""
		s.mu.Unlock()

		metrics.WalletConnected.Set(0)
		s.logger.Info("Provider reports no accounts, session disconnected")
		s.notify()
		return false
	}

	if !strings.EqualFold(accounts[0], s.address) {
		// Active account switched: update the address in place, no teardown.
		old := s.address
		s.address = accounts[0]
		s.mu.Unlock()

		s.logger.Info("Active account changed", "old", old, "new", accounts[0])
		s.notify()
		return true
	}

	s.mu.Unlock()
	return true
}

func (s *WalletSessionService) notify() {
	identity := s.Identity()
	for _, fn := range s.listeners {
		fn(identity)
	}
}

var _ port.WalletSession = (*WalletSessionService)(nil)
