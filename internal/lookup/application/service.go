package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	order "github.com/luciferfruits/storefront/internal/order/domain"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

const DefaultTimeout = 5 * time.Second

type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Fallback says why the local ledger answered instead of the remote source.
type Fallback string

const (
	FallbackNone  Fallback = "none"
	FallbackError Fallback = "error"
	FallbackEmpty Fallback = "empty"
)

var errRemoteDisabled = errors.New("remote lookup not configured")

type Result struct {
	Orders   []order.Order `json:"orders"`
	Source   Source        `json:"source"`
	Fallback Fallback      `json:"fallback"`
	Err      error         `json:"-"`
}

type Service struct {
	log     *slog.Logger
	primary Primary
	ledger  Ledger
	timeout time.Duration
}

// NewService builds a lookup. A nil primary always answers from the ledger.
func NewService(log *slog.Logger, primary Primary, ledger Ledger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{log: log, primary: primary, ledger: ledger, timeout: timeout}
}

func (s *Service) Lookup(ctx context.Context, email string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Result{}, fmt.Errorf("%w: email is required", apperr.ErrValidation)
	}

	res := Result{Source: SourceLocal, Fallback: FallbackError}
	if s.primary != nil {
		orders, err := s.track(ctx, email)
		switch {
		case err != nil:
			res.Err = err
			s.log.Warn("remote lookup failed, using local orders", "fallback", FallbackError, "err", err)
		case len(orders) == 0:
			res.Fallback = FallbackEmpty
			s.log.Warn("remote lookup returned nothing, using local orders", "fallback", FallbackEmpty)
		default:
			return Result{Orders: orders, Source: SourceRemote, Fallback: FallbackNone}, nil
		}
	} else {
		res.Err = errRemoteDisabled
	}

	orders, err := s.ledger.FindByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	res.Orders = orders
	return res, nil
}

func (s *Service) track(ctx context.Context, email string) ([]order.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.primary.Track(ctx, email)
}
