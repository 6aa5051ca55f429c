package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/loadbridge-backend/internal/deals"
	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/logger"
	"github.com/angelmondragon/loadbridge-backend/pkg/outbox"
	"github.com/angelmondragon/loadbridge-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const defaultDealMaxAge = 14 * 24 * time.Hour

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type staleDealReader interface {
	FindStaleDealing(ctx context.Context, cutoff time.Time) ([]models.Deal, error)
}

type transactionalDealRepo interface {
	TransitionStatus(ctx context.Context, dealID uuid.UUID, expected []enums.DealStatus, updates map[string]any) (int64, error)
}

type dealRepoFactory func(tx *gorm.DB) transactionalDealRepo

func defaultDealRepo(tx *gorm.DB) transactionalDealRepo {
	return deals.NewRepository(tx)
}

// DealTTLJobParams configure the stale deal scheduler.
type DealTTLJobParams struct {
	Logger                   *logger.Logger
	DB                       txRunner
	StaleReader              staleDealReader
	Outbox                   outboxEmitter
	TransactionalRepoFactory dealRepoFactory
	MaxAge                   time.Duration
}

// NewDealTTLJob builds the cron job that expires negotiations nobody answered.
func NewDealTTLJob(params DealTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.StaleReader == nil {
		return nil, fmt.Errorf("stale deal reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	repoFactory := params.TransactionalRepoFactory
	if repoFactory == nil {
		repoFactory = defaultDealRepo
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultDealMaxAge
	}
	return &dealTTLJob{
		logg:        params.Logger,
		db:          params.DB,
		staleReader: params.StaleReader,
		outbox:      params.Outbox,
		repoFactory: repoFactory,
		maxAge:      maxAge,
		now:         time.Now,
	}, nil
}

type dealTTLJob struct {
	logg        *logger.Logger
	db          txRunner
	staleReader staleDealReader
	outbox      outboxEmitter
	repoFactory dealRepoFactory
	maxAge      time.Duration
	now         func() time.Time
}

func (j *dealTTLJob) Name() string { return "deal-ttl" }

func (j *dealTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	stale, err := j.staleReader.FindStaleDealing(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale deals: %w", err)
	}

	var errs []error
	expired := 0
	for _, deal := range stale {
		if err := j.expireDeal(ctx, deal); err != nil {
			errs = append(errs, fmt.Errorf("expire deal %s: %w", deal.ID, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"found":   len(stale),
		"expired": expired,
	})
	j.logg.Info(logCtx, "deal expiration loop complete")
	return multierr.Combine(errs...)
}

func (j *dealTTLJob) expireDeal(ctx context.Context, deal models.Deal) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		now := j.now().UTC()
		rows, err := repo.TransitionStatus(ctx, deal.ID,
			[]enums.DealStatus{enums.DealStatusDealing},
			map[string]any{"status": enums.DealStatusCanceled},
		)
		if err != nil {
			return err
		}
		if rows == 0 {
			// The supplier answered between the scan and this transaction.
			return nil
		}
		ttlDays := int(j.maxAge.Hours() / 24)
		event := outbox.DomainEvent{
			EventType:     enums.EventDealExpired,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.DealExpiredEvent{
				DealID:     deal.ID,
				SellerID:   deal.SellerID,
				SupplierID: deal.SupplierID,
				ExpiredAt:  now,
				TTLDays:    &ttlDays,
			},
		}
		return j.outbox.Emit(ctx, tx, event)
	})
}
