package service

import (
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/bilguunt/moneyapp/internal/pg"
	"github.com/bilguunt/moneyapp/internal/repo"
	"github.com/bilguunt/moneyapp/pkg/qpay"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockDB.Close()

	repos := repo.New(mockDB)
	txManager := pg.NewMockTXManager(ctrl)
	paymentClient := qpay.NewClient("http://localhost:8082")

	services := New(repos, txManager, paymentClient)

	assert.NotNil(t, services.AuthService)
	assert.NotNil(t, services.WalletService)
	assert.NotNil(t, services.LoanService)
	assert.NotNil(t, services.WithdrawalService)
	assert.NotNil(t, services.PaymentService)
	assert.NotNil(t, services.LoanJobs)
}
