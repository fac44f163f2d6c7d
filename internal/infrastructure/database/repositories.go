package database

import (
	"github.com/tristanfischer-ux/centauros-payment/internal/adapter/repository"
	domainRepo "github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Events         repository.EventRepository
	Orders         domainRepo.OrderRepository
	EscrowLedger   domainRepo.EscrowLedgerRepository
	Timesheets     domainRepo.TimesheetRepository
	Disputes       domainRepo.DisputeRepository
	Transfers      domainRepo.TransferLogRepository
	Payouts        domainRepo.PayoutLogRepository
	Balances       domainRepo.BalanceRepository
	SellerAccounts domainRepo.SellerAccountRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Events:         repository.NewEventRepository(db, logger),
		Orders:         repository.NewOrderRepository(db, logger),
		EscrowLedger:   repository.NewEscrowLedgerRepository(db, logger),
		Timesheets:     repository.NewTimesheetRepository(db, logger),
		Disputes:       repository.NewDisputeRepository(db, logger),
		Transfers:      repository.NewTransferLogRepository(db, logger),
		Payouts:        repository.NewPayoutLogRepository(db, logger),
		Balances:       repository.NewBalanceRepository(db, logger),
		SellerAccounts: repository.NewSellerAccountRepository(db, logger),
	}
}
