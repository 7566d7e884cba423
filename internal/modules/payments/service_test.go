package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paylink.dev/app/internal/shared/apperr"
)

func TestCreateLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createLink(t)
	p := res.Payment

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "ORDER-1", res.OrderID)
	assert.Equal(t, "ORDER-1", p.OrderID())
	assert.Equal(t, "https://pay.paylink.test/pay/"+p.ReferenceID, res.PaymentURL)
	assert.Equal(t, "Brand X", res.BrandName)

	require.Len(t, env.gw.requests, 1)
	req := env.gw.requests[0]
	assert.Equal(t, p.ReferenceID, req.ReferenceID)
	assert.Equal(t, "Payment for Logo design", req.Description)
	assert.Equal(t, "Brand X", req.BrandName)
	assert.Equal(t, "50.00", FormatAmount(req.Amount))
	assert.Equal(t, "https://api.paylink.test/payment/success/"+p.ReferenceID, req.ReturnURL)
	assert.Equal(t, "https://api.paylink.test/payment/cancel/"+p.ReferenceID, req.CancelURL)

	second := env.createLink(t)
	assert.NotEqual(t, p.ReferenceID, second.Payment.ReferenceID)
	assert.EqualValues(t, 2, env.count(t, &Payment{}))

	stored, err := env.store.GetByReference(ctx, p.ReferenceID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("50")))
	require.NotNil(t, stored.Brand)
	assert.Equal(t, env.brand.ID, stored.Brand.ID)
}

func TestCreateLinkValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := env.linkInput()
	in.CustomerName = ""
	in.Amount = decimal.Zero
	in.CustomerEmail = "not-an-email"
	_, err := env.svc.CreateLink(ctx, in)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Invalid, ae.Kind)
	assert.Contains(t, ae.Fields, "customerName")
	assert.Contains(t, ae.Fields, "amount")
	assert.Contains(t, ae.Fields, "customerEmail")

	in = env.linkInput()
	in.Amount = decimal.RequireFromString("10.005")
	_, err = env.svc.CreateLink(ctx, in)
	assert.True(t, apperr.Is(err, apperr.Invalid))

	in = env.linkInput()
	in.BrandID = "no-such-brand"
	_, err = env.svc.CreateLink(ctx, in)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	assert.Zero(t, env.count(t, &Payment{}))
	assert.Zero(t, env.gw.creates)
}

func TestCreateLinkRollsBackOnProcessorFailure(t *testing.T) {
	env := newTestEnv(t)
	env.gw.createErr = errors.New("processor unavailable")

	_, err := env.svc.CreateLink(context.Background(), env.linkInput())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Processor))

	assert.Zero(t, env.count(t, &Payment{}))
	assert.Zero(t, env.count(t, &PaymentEvent{}))
}

func TestInitializeProcessorReusesApprovableOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID

	first, err := env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", first.OrderID)
	assert.Equal(t, StatusProcessing, first.Status)
	assert.Contains(t, first.ApprovalURL, "ORDER-1")

	again, err := env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	creates, _ := env.gw.counts()
	assert.Equal(t, 1, creates)
}

func TestInitializeProcessorReplacesStaleOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID

	env.gw.fetchErr = errors.New("resource not found")
	res, err := env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-2", res.OrderID)

	p, err := env.store.GetByReference(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-2", p.OrderID())
	assert.Equal(t, StatusProcessing, p.Status)

	env.gw.fetchErr = nil
	env.gw.setStatus("ORDER-2", OrderVoided)
	res, err = env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-3", res.OrderID)
}

func TestInitializeProcessorConvergesCompletedOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID

	env.gw.setStatus("ORDER-1", OrderCompleted)
	_, err := env.svc.InitializeProcessor(ctx, ref)
	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.Equal(t, StatusCompleted, env.status(t, ref))

	creates, _ := env.gw.counts()
	assert.Equal(t, 1, creates)
}

func TestInitializeProcessorRejectsFinalStates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID

	_, err := env.svc.Cancel(ctx, ref)
	require.NoError(t, err)

	_, err = env.svc.InitializeProcessor(ctx, ref)
	assert.True(t, apperr.Is(err, apperr.Conflict))

	_, err = env.svc.InitializeProcessor(ctx, "unknown")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestFinalizeReturnIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID
	_, err := env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)

	p, err := env.svc.FinalizeReturn(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)

	p, err = env.svc.FinalizeReturn(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)

	_, captures := env.gw.counts()
	assert.Equal(t, 1, captures)
}

func TestFinalizeReturnSwallowsCaptureFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID
	_, err := env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)

	env.gw.captureErr = errors.New("gateway timeout")
	p, err := env.svc.FinalizeReturn(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, p.Status)
	assert.Equal(t, StatusProcessing, env.status(t, ref))
}

func TestFinalizeReturnConvergesWhenAlreadyCaptured(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID
	_, err := env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)

	env.gw.setStatus("ORDER-1", OrderCompleted)
	p, err := env.svc.FinalizeReturn(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestFinalizeReturnSkipsFinalStates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID

	_, err := env.svc.Cancel(ctx, ref)
	require.NoError(t, err)

	p, err := env.svc.FinalizeReturn(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, p.Status)
	_, captures := env.gw.counts()
	assert.Zero(t, captures)

	_, err = env.svc.FinalizeReturn(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ref := env.createLink(t).Payment.ReferenceID
	p, err := env.svc.Cancel(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, p.Status)

	done := env.createLink(t).Payment.ReferenceID
	_, err = env.svc.InitializeProcessor(ctx, done)
	require.NoError(t, err)
	_, err = env.svc.FinalizeReturn(ctx, done)
	require.NoError(t, err)

	p, err = env.svc.Cancel(ctx, done)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)

	_, err = env.svc.Cancel(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestLookupExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createLink(t)
	ref := res.Payment.ReferenceID
	created := res.Payment.CreatedAt

	env.svc.now = func() time.Time { return created.Add(23*time.Hour + 59*time.Minute) }
	p, err := env.svc.Lookup(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	require.NotNil(t, p.Brand)
	assert.Equal(t, "Brand X", p.Brand.Name)

	env.svc.now = func() time.Time { return created.Add(24*time.Hour + time.Minute) }
	_, err = env.svc.Lookup(ctx, ref)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Expired, ae.Kind)
	assert.Equal(t, ref, ae.Details["referenceId"])
	assert.Equal(t, StatusExpired, env.status(t, ref))

	_, err = env.svc.Lookup(ctx, ref)
	assert.True(t, apperr.Is(err, apperr.Expired))
}

func TestLookupNeverExpiresAfterPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createLink(t)
	ref := res.Payment.ReferenceID
	_, err := env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)

	env.svc.now = func() time.Time { return res.Payment.CreatedAt.Add(72 * time.Hour) }
	p, err := env.svc.Lookup(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, p.Status)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ref := env.createLink(t).Payment.ReferenceID

	_, err := env.svc.UpdateStatus(ctx, ref, StatusRefunded, "agent-1")
	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.Equal(t, StatusPending, env.status(t, ref))

	_, err = env.svc.UpdateStatus(ctx, ref, Status("bogus"), "agent-1")
	assert.True(t, apperr.Is(err, apperr.Invalid))

	p, err := env.svc.UpdateStatus(ctx, ref, StatusCompleted, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)

	p, err = env.svc.UpdateStatus(ctx, ref, StatusRefunded, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, p.Status)

	// operator override leaves final states too
	p, err = env.svc.UpdateStatus(ctx, ref, StatusPending, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)

	_, err = env.svc.UpdateStatus(ctx, "missing", StatusCompleted, "agent-1")
	assert.True(t, apperr.Is(err, apperr.NotFound))

	events, err := env.svc.Events(ctx, ref)
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, SourceCreate, events[0].Source)
	assert.Equal(t, SourceAdmin, events[4].Source)
	assert.Equal(t, StatusPending, events[4].ToStatus)
}

func TestEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createLink(t)
	ref := res.Payment.ReferenceID
	assert.Equal(t, StatusPending, env.status(t, ref))

	resume, err := env.svc.InitializeProcessor(ctx, ref)
	require.NoError(t, err)

	p, err := env.svc.FinalizeReturn(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)

	require.NoError(t, env.webhook.Handle(ctx, nil, captureEvent("WH-1", EventCaptureCompleted, resume.OrderID)))
	assert.Equal(t, StatusCompleted, env.status(t, ref))

	_, captures := env.gw.counts()
	assert.Equal(t, 1, captures)
}
