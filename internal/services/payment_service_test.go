package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/notify"
	"studentbus/internal/repositories"
	"studentbus/internal/views"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentSvc(l repositories.Ledger, n notify.Notifier) PaymentService {
	return PaymentService{Ledger: l, Notifier: n, Now: func() time.Time { return fixedNow }}
}

func addPendingPayment(t *testing.T, l repositories.Ledger, id, userID string, amount int64, createdAt time.Time) {
	t.Helper()
	require.NoError(t, l.CreatePayment(context.Background(), models.Payment{
		ID: id, UserID: userID, Amount: decimal.NewFromInt(amount), Type: models.PaymentTypeRecharge,
		Method: models.MethodVodafoneCash, Status: models.PaymentPending, CreatedAt: createdAt,
	}))
}

func TestResolvePaymentApprovesOnce(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 0)
	addUser(t, l, "admin", 0)
	addPendingPayment(t, l, "p1", "u1", 50, fixedNow)
	n := &recordingNotifier{}
	svc := paymentSvc(l, n)

	got, err := svc.ResolvePayment(context.Background(), "p1", "admin", models.PaymentApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, got.Status)
	assert.Equal(t, "admin", got.ReviewedBy)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, got.ReviewedAt.Equal(fixedNow))
	require.NotNil(t, got.User)
	assert.Equal(t, "50.00", got.User.Balance.StringFixed(2))
	require.NotNil(t, got.Reviewer)
	assert.Equal(t, "admin", got.Reviewer.ID)
	assert.Equal(t, "50.00", balanceOf(t, l, "u1").StringFixed(2))

	_, err = svc.ResolvePayment(context.Background(), "p1", "admin", models.PaymentApproved, "again")
	require.Error(t, err)
	assert.True(t, domain.IsAlreadyResolved(err), "got %v", err)
	assert.Equal(t, "50.00", balanceOf(t, l, "u1").StringFixed(2))

	require.Len(t, n.events, 1)
	assert.Equal(t, "user:u1", n.events[0].target)
	assert.Equal(t, notify.EventPaymentResolved, n.events[0].evt.Type)
	data, ok := n.events[0].evt.Data.(views.Payment)
	require.True(t, ok, "event data is %T", n.events[0].evt.Data)
	assert.Equal(t, "50.00", data.Amount)
	assert.Equal(t, "approved", data.Status)
}

func TestResolvePaymentConcurrentCreditsOnce(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 0)
	addUser(t, l, "admin", 0)
	addPendingPayment(t, l, "p1", "u1", 40, fixedNow)
	svc := paymentSvc(l, nil)

	const reviewers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		resolved int
	)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := models.PaymentApproved
			if i%2 == 1 {
				decision = models.PaymentRejected
			}
			_, err := svc.ResolvePayment(context.Background(), "p1", "admin", decision, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.IsAlreadyResolved(err):
				resolved++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, reviewers-1, resolved)

	p, err := l.GetPayment(context.Background(), "p1")
	require.NoError(t, err)
	want := "0.00"
	if p.Status == models.PaymentApproved {
		want = "40.00"
	}
	assert.Equal(t, want, balanceOf(t, l, "u1").StringFixed(2))
}

func TestResolvePaymentRejectKeepsBalance(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 5)
	addPendingPayment(t, l, "p1", "u1", 50, fixedNow)

	got, err := paymentSvc(l, nil).ResolvePayment(context.Background(), "p1", "admin", models.PaymentRejected, "  blurry receipt ")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRejected, got.Status)
	assert.Equal(t, "blurry receipt", got.AdminNote)
	assert.Equal(t, "5.00", balanceOf(t, l, "u1").StringFixed(2))

	_, err = paymentSvc(l, nil).ResolvePayment(context.Background(), "p1", "admin", models.PaymentApproved, "")
	assert.True(t, domain.IsAlreadyResolved(err))
	assert.Equal(t, "5.00", balanceOf(t, l, "u1").StringFixed(2))
}

func TestResolvePaymentFailures(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 0)
	addPendingPayment(t, l, "p1", "u1", 50, fixedNow)
	svc := paymentSvc(l, nil)

	_, err := svc.ResolvePayment(context.Background(), "missing", "admin", "maybe", "")
	assert.True(t, domain.IsNotFound(err), "not found is checked before the decision, got %v", err)

	_, err = svc.ResolvePayment(context.Background(), "p1", "admin", models.PaymentPending, "")
	assert.True(t, domain.IsValidation(err), "got %v", err)

	p, err := l.GetPayment(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)
}

func TestResolvePaymentMissingOwnerIsIntegrityError(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addPendingPayment(t, l, "p1", "ghost", 50, fixedNow)

	_, err := paymentSvc(l, nil).ResolvePayment(context.Background(), "p1", "admin", models.PaymentApproved, "")
	require.Error(t, err)
	assert.True(t, domain.IsIntegrity(err), "got %v", err)

	p, err := l.GetPayment(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status, "review must roll back")
	assert.Empty(t, p.ReviewedBy)
}

func TestResolvePaymentMySQLMissingOwnerRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "user_id", "amount", "type", "method", "transaction_ref", "sender_phone",
		"screenshot", "status", "admin_note", "reviewed_by", "reviewed_at", "created_at"}
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = \\? FOR UPDATE").WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", "ghost", "50.00", "recharge", "vodafone_cash", "", "", "", "pending", "", nil, nil, fixedNow))
	mock.ExpectExec("UPDATE payments SET status = \\?").
		WithArgs("approved", "", "admin", fixedNow, "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\? FOR UPDATE").WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(sqlUserColumns))
	mock.ExpectRollback()

	_, err = paymentSvc(repositories.NewMySQLLedger(db), nil).
		ResolvePayment(context.Background(), "p1", "admin", models.PaymentApproved, "")
	assert.True(t, domain.IsIntegrity(err), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRecharge(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 0)
	n := &recordingNotifier{}
	svc := paymentSvc(l, n)

	p, err := svc.SubmitRecharge(context.Background(), "u1", RechargeInput{
		Amount: decimal.RequireFromString("50.5"), TransactionRef: " TX-1 ", SenderPhone: "0100", Screenshot: "/uploads/r.png",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, "TX-1", p.TransactionRef)
	assert.Equal(t, models.MethodVodafoneCash, p.Method)
	assert.Equal(t, "0.00", balanceOf(t, l, "u1").StringFixed(2), "balance waits for approval")

	require.Len(t, n.events, 1)
	assert.Equal(t, "role:admin", n.events[0].target)

	_, err = svc.SubmitRecharge(context.Background(), "u1", RechargeInput{Amount: decimal.Zero, Screenshot: "/x.png"})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.SubmitRecharge(context.Background(), "u1", RechargeInput{Amount: decimal.RequireFromString("1.001"), Screenshot: "/x.png"})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.SubmitRecharge(context.Background(), "u1", RechargeInput{Amount: decimal.NewFromInt(5)})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.SubmitRecharge(context.Background(), "ghost", RechargeInput{Amount: decimal.NewFromInt(5), Screenshot: "/x.png"})
	assert.True(t, domain.IsNotFound(err))
}

func TestPaymentListings(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 0)
	addUser(t, l, "u2", 0)
	addPendingPayment(t, l, "old", "u1", 10, fixedNow)
	addPendingPayment(t, l, "new", "u1", 20, fixedNow.Add(time.Hour))
	addPendingPayment(t, l, "other", "u2", 30, fixedNow.Add(30*time.Minute))
	svc := paymentSvc(l, nil)

	_, err := svc.ResolvePayment(context.Background(), "other", "admin", models.PaymentRejected, "")
	require.NoError(t, err)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "new", history[0].ID)

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "new", pending[0].ID)
	require.NotNil(t, pending[0].User)
	assert.Equal(t, "u1", pending[0].User.ID)

	_, err = svc.Get(context.Background(), "nope")
	assert.True(t, domain.IsNotFound(err))
}
