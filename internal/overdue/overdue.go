package overdue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bilguunt/moneyapp/internal/config"
	"github.com/bilguunt/moneyapp/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var processingLoans sync.Map

type LoanRepo interface {
	FindDueForCheck(ctx context.Context, limit uint32) ([]domain.Loan, error)
}

type LoanService interface {
	MarkOverdue(ctx context.Context, loanID int, now time.Time) error
}

// Service periodically sweeps active loans past their due date and flips
// them to overdue with a recomputed penalty. The sweep is idempotent, so an
// overlapping or repeated run never double-charges.
type Service struct {
	loanRepo      LoanRepo
	loanService   LoanService
	limit         uint32
	workerPool    WorkerPoolI
	checkInterval time.Duration
}

func New(cfg *config.Config, loanRepo LoanRepo, loanService LoanService) *Service {
	workers := cfg.OverdueWorkers
	if workers <= 0 {
		workers = 10
	}
	return &Service{
		loanRepo:      loanRepo,
		loanService:   loanService,
		limit:         1000,
		workerPool:    NewWorkerPool(workers),
		checkInterval: cfg.OverdueInterval,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Overdue check service started", zap.Duration("interval", s.checkInterval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping overdue checks")
			return
		case <-ticker.C:
			s.processLoans(ctx)
		}
	}
}

func (s *Service) processLoans(ctx context.Context) {
	loans, err := s.loanRepo.FindDueForCheck(ctx, atomic.LoadUint32(&s.limit))
	if err != nil {
		zap.L().Error("Failed to fetch loans for overdue check", zap.Error(err))
		return
	}

	now := time.Now()
	var g errgroup.Group
	for _, loan := range loans {
		loan := loan

		if _, loaded := processingLoans.LoadOrStore(loan.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer processingLoans.Delete(loan.ID)
				return s.loanService.MarkOverdue(ctx, loan.ID, now)
			})
			if err != nil {
				processingLoans.Delete(loan.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error processing overdue loans", zap.Error(err))
	}
}
