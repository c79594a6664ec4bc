package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bmapp/internal/infra/testdb"
	"bmapp/internal/models/db_models"
	"bmapp/internal/reconcile"
	"bmapp/internal/repositories"
	"bmapp/pkg/utils"
)

const (
	webhookToken = "rc-webhook-token"
	bearer       = "Bearer " + webhookToken
	ownerA       = "firebase_uid_a"
	ownerB       = "firebase_uid_b"
)

type fakeVerifier struct {
	result *PurchaseVerification
	err    error
	calls  atomic.Int32
}

func (f *fakeVerifier) VerifyPurchase(_ context.Context, txn string) (*PurchaseVerification, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &PurchaseVerification{TransactionID: txn, Raw: json.RawMessage(`{"items":[]}`)}, nil
}

// countingRepo records how many confirmations actually changed a row.
type countingRepo struct {
	repositories.BiodataRepository
	applied atomic.Int32
}

func (c *countingRepo) ConfirmPayment(ctx context.Context, t reconcile.Transition, resp []byte) (bool, error) {
	ok, err := c.BiodataRepository.ConfirmPayment(ctx, t, resp)
	if ok {
		c.applied.Add(1)
	}
	return ok, err
}

type paymentFixture struct {
	db       *gorm.DB
	repo     *countingRepo
	verifier *fakeVerifier
	svc      PaymentService
}

func newPaymentFixture(t *testing.T, auth WebhookAuth) *paymentFixture {
	t.Helper()
	db := testdb.Open(t)
	repo := &countingRepo{BiodataRepository: repositories.NewBiodataRepository(db)}
	verifier := &fakeVerifier{}
	svc := NewPaymentService(repo, repositories.NewPaymentEventRepository(db), verifier, auth, zap.NewNop())
	return &paymentFixture{db: db, repo: repo, verifier: verifier, svc: svc}
}

func (f *paymentFixture) seed(t *testing.T, owner, templateID string) *db_models.Biodata {
	t.Helper()
	b := &db_models.Biodata{
		OwnerID:       owner,
		TemplateID:    templateID,
		FormData:      datatypes.JSON(`{"name":"X"}`),
		Channel:       db_models.ChannelAndroid,
		Currency:      db_models.CurrencyINR,
		PaymentStatus: db_models.PaymentStatusInitiated,
	}
	b.ID = uuid.New()
	b.AppUserID = reconcile.ComposeAppUserID(owner, b.ID.String())
	require.NoError(t, f.repo.Create(context.Background(), b))
	return b
}

func (f *paymentFixture) reload(t *testing.T, id uuid.UUID) *db_models.Biodata {
	t.Helper()
	b, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b
}

func (f *paymentFixture) events(t *testing.T) []db_models.PaymentEvent {
	t.Helper()
	var out []db_models.PaymentEvent
	require.NoError(t, f.db.Order("id ASC").Find(&out).Error)
	return out
}

func webhookBody(eventType, eventID, appUserID, txn, product string) []byte {
	b, _ := json.Marshal(map[string]any{
		"api_version": "1.0",
		"event": map[string]any{
			"type":                 eventType,
			"id":                   eventID,
			"app_user_id":          appUserID,
			"transaction_id":       txn,
			"product_id":           product,
			"price":                1.19,
			"currency":             "INR",
			"store":                "PLAY_STORE",
			"environment":          "PRODUCTION",
			"event_timestamp_ms":   1723700000000,
			"purchased_at_ms":      1723700000000,
			"original_app_user_id": appUserID,
		},
	})
	return b
}

func purchaseBody(b *db_models.Biodata, eventID, txn string) []byte {
	return webhookBody(reconcile.EventTypeNonRenewingPurchase, eventID, b.AppUserID, txn, b.TemplateID)
}

func TestHandleWebhook_RejectsBadCredentials(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg1")
	body := purchaseBody(b, "evt_1", "GPA.1")

	for _, header := range []string{"", webhookToken, "Bearer wrong", "bearer " + webhookToken, bearer + " "} {
		ack, err := f.svc.HandleWebhook(context.Background(), header, "", body)
		assert.ErrorIs(t, err, utils.ErrWebhookUnauthorized, "header %q", header)
		assert.Nil(t, ack)
	}

	assert.Equal(t, db_models.PaymentStatusInitiated, f.reload(t, b.ID).PaymentStatus)
	assert.Empty(t, f.events(t))
}

func TestHandleWebhook_NoSecretConfiguredRejectsEverything(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{})
	_, err := f.svc.HandleWebhook(context.Background(), "Bearer ", "", []byte(`{}`))
	assert.ErrorIs(t, err, utils.ErrWebhookUnauthorized)
}

func TestHandleWebhook_ConfirmsPurchase(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg12")

	ack, err := f.svc.HandleWebhook(context.Background(), bearer, "", purchaseBody(b, "evt_1", "GPA.1"))
	require.NoError(t, err)
	assert.Equal(t, string(reconcile.OutcomeProcessed), ack.Result)
	assert.Equal(t, b.ID.String(), ack.BiodataID)
	assert.Equal(t, "evt_1", ack.EventID)

	got := f.reload(t, b.ID)
	assert.Equal(t, db_models.PaymentStatusSuccess, got.PaymentStatus)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, "GPA.1", *got.TransactionID)
	require.NotNil(t, got.ConfirmationSource)
	assert.Equal(t, string(reconcile.SourceWebhook), *got.ConfirmationSource)
	require.NotNil(t, got.WebhookEventType)
	assert.Equal(t, reconcile.EventTypeNonRenewingPurchase, *got.WebhookEventType)
	assert.NotNil(t, got.WebhookReceivedAt)
	assert.NotNil(t, got.PaymentConfirmedAt)
	assert.False(t, got.PDFGenerated)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, "processed", events[0].Outcome)
	assert.Equal(t, "GPA.1", events[0].TransactionID)
}

func TestHandleWebhook_RedeliveryIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg1")
	body := purchaseBody(b, "evt_1", "GPA.1")

	_, err := f.svc.HandleWebhook(context.Background(), bearer, "", body)
	require.NoError(t, err)
	first := f.reload(t, b.ID)

	ack, err := f.svc.HandleWebhook(context.Background(), bearer, "", body)
	require.NoError(t, err)
	assert.Equal(t, string(reconcile.OutcomeAlreadyProcessed), ack.Result)

	second := f.reload(t, b.ID)
	assert.Equal(t, first.PaymentConfirmedAt, second.PaymentConfirmedAt)
	assert.Equal(t, int32(1), f.repo.applied.Load())
	assert.Len(t, f.events(t), 2)
}

func TestHandleWebhook_TransactionAlreadyHeld(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	paid := f.seed(t, ownerA, "eg1")
	other := f.seed(t, ownerA, "eg1")

	_, err := f.svc.HandleWebhook(context.Background(), bearer, "", purchaseBody(paid, "evt_1", "GPA.1"))
	require.NoError(t, err)

	ack, err := f.svc.HandleWebhook(context.Background(), bearer, "", purchaseBody(other, "evt_2", "GPA.1"))
	require.NoError(t, err)
	assert.Equal(t, string(reconcile.OutcomeAlreadyProcessed), ack.Result)
	assert.Equal(t, paid.ID.String(), ack.BiodataID)
	assert.Equal(t, db_models.PaymentStatusInitiated, f.reload(t, other.ID).PaymentStatus)
}

func TestHandleWebhook_OwnerMismatch(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg1")
	forged := reconcile.ComposeAppUserID(ownerB, b.ID.String())

	ack, err := f.svc.HandleWebhook(context.Background(), bearer, "",
		webhookBody(reconcile.EventTypeNonRenewingPurchase, "evt_1", forged, "GPA.1", "eg1"))
	require.NoError(t, err)
	assert.Equal(t, string(reconcile.OutcomeOwnerMismatch), ack.Result)
	assert.Equal(t, db_models.PaymentStatusInitiated, f.reload(t, b.ID).PaymentStatus)
}

func TestHandleWebhook_RecordNotFound(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})

	for _, appUserID := range []string{
		reconcile.ComposeAppUserID(ownerA, uuid.NewString()),
		ownerA + "_not-a-uuid",
		"nounderscore",
	} {
		ack, err := f.svc.HandleWebhook(context.Background(), bearer, "",
			webhookBody(reconcile.EventTypeNonRenewingPurchase, "evt", appUserID, "GPA."+appUserID, "eg1"))
		require.NoError(t, err)
		assert.Equal(t, string(reconcile.OutcomeRecordNotFound), ack.Result, appUserID)
	}
	assert.Zero(t, f.repo.applied.Load())
}

func TestHandleWebhook_IgnoresOtherEventTypes(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg1")

	for _, typ := range []string{"INITIAL_PURCHASE", "CANCELLATION", reconcile.EventTypeTest} {
		ack, err := f.svc.HandleWebhook(context.Background(), bearer, "", webhookBody(typ, "evt_"+typ, b.AppUserID, "GPA.1", "eg1"))
		require.NoError(t, err)
		assert.Equal(t, string(reconcile.OutcomeIgnored), ack.Result, typ)
	}
	assert.Equal(t, db_models.PaymentStatusInitiated, f.reload(t, b.ID).PaymentStatus)
}

func TestHandleWebhook_InvalidPayloadAcknowledged(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})

	cases := [][]byte{
		[]byte(`not json`),
		[]byte(`{"api_version":"1.0"}`),
		webhookBody(reconcile.EventTypeNonRenewingPurchase, "evt", "", "GPA.1", "eg1"),
	}
	for _, body := range cases {
		ack, err := f.svc.HandleWebhook(context.Background(), bearer, "", body)
		require.NoError(t, err)
		assert.Equal(t, string(reconcile.OutcomeInvalidPayload), ack.Result)
	}

	events := f.events(t)
	require.Len(t, events, 3)
	assert.JSONEq(t, `{"raw":"not json"}`, string(events[0].Payload))
	assert.NotEmpty(t, events[0].Error)
}

func TestHandleWebhook_SignedDeliveries(t *testing.T) {
	const secret = "whsec_test"
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken, SigningSecret: secret})
	b := f.seed(t, ownerA, "eg1")
	body := purchaseBody(b, "evt_1", "GPA.1")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	_, err := f.svc.HandleWebhook(context.Background(), bearer, "", body)
	assert.ErrorIs(t, err, utils.ErrWebhookUnauthorized)

	forged := hmac.New(sha256.New, []byte("other-secret"))
	forged.Write(body)
	_, err = f.svc.HandleWebhook(context.Background(), "", hex.EncodeToString(forged.Sum(nil)), body)
	assert.ErrorIs(t, err, utils.ErrWebhookUnauthorized)

	_, err = f.svc.HandleWebhook(context.Background(), "", "not-hex", body)
	assert.ErrorIs(t, err, utils.ErrWebhookUnauthorized)

	ack, err := f.svc.HandleWebhook(context.Background(), "", sig, body)
	require.NoError(t, err)
	assert.Equal(t, string(reconcile.OutcomeProcessed), ack.Result)
}

func TestVerifyPurchase_Confirms(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg6")
	f.verifier.result = &PurchaseVerification{TransactionID: "GPA.9", ProductID: "eg6", Raw: json.RawMessage(`{"items":[{"id":"p"}]}`)}

	got, err := f.svc.VerifyPurchase(context.Background(), ownerA, b.ID.String(), "GPA.9", "")
	require.NoError(t, err)
	assert.Equal(t, db_models.PaymentStatusSuccess, got.PaymentStatus)
	require.NotNil(t, got.ProductID)
	assert.Equal(t, "eg6", *got.ProductID)
	require.NotNil(t, got.ConfirmationSource)
	assert.Equal(t, string(reconcile.SourceClientVerify), *got.ConfirmationSource)
	assert.Nil(t, got.WebhookEventType)
	assert.Contains(t, string(got.ProviderResponse), "revenuecat_response")
	assert.Equal(t, b.AppUserID, got.AppUserID)
}

func TestVerifyPurchase_Refusals(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	mine := f.seed(t, ownerA, "eg1")
	paidOther := f.seed(t, ownerA, "eg1")
	_, err := f.svc.VerifyPurchase(context.Background(), ownerA, paidOther.ID.String(), "GPA.used", "")
	require.NoError(t, err)
	callsBefore := f.verifier.calls.Load()

	cases := []struct {
		name, owner, id, txn, product string
		want                          error
	}{
		{"malformed id", ownerA, "abc", "GPA.1", "", utils.ErrInvalidBiodataID},
		{"missing transaction", ownerA, mine.ID.String(), "", "", utils.ErrTransactionRequired},
		{"other owner", ownerB, mine.ID.String(), "GPA.1", "", utils.ErrBiodataNotFound},
		{"unknown record", ownerA, uuid.NewString(), "GPA.1", "", utils.ErrBiodataNotFound},
		{"product mismatch", ownerA, mine.ID.String(), "GPA.1", "eg12", utils.ErrProductMismatch},
		{"transaction held by another record", ownerA, mine.ID.String(), "GPA.used", "", utils.ErrTransactionInUse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.VerifyPurchase(context.Background(), tc.owner, tc.id, tc.txn, tc.product)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, callsBefore, f.verifier.calls.Load())
	assert.Equal(t, db_models.PaymentStatusInitiated, f.reload(t, mine.ID).PaymentStatus)
}

func TestVerifyPurchase_ProviderFailureLeavesRecordUnpaid(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg1")

	for _, providerErr := range []error{utils.ErrPurchaseNotVerified, utils.ErrProviderUnavailable} {
		f.verifier.err = providerErr
		_, err := f.svc.VerifyPurchase(context.Background(), ownerA, b.ID.String(), "GPA.1", "eg1")
		assert.ErrorIs(t, err, providerErr)
	}
	assert.Equal(t, db_models.PaymentStatusInitiated, f.reload(t, b.ID).PaymentStatus)
}

func TestVerifyPurchase_AlreadyPaidSkipsProvider(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg1")
	_, err := f.svc.HandleWebhook(context.Background(), bearer, "", purchaseBody(b, "evt_1", "GPA.1"))
	require.NoError(t, err)

	got, err := f.svc.VerifyPurchase(context.Background(), ownerA, b.ID.String(), "GPA.1", "eg1")
	require.NoError(t, err)
	assert.Equal(t, db_models.PaymentStatusSuccess, got.PaymentStatus)
	assert.Zero(t, f.verifier.calls.Load())
}

func TestConfirmation_WebhookAndClientRace(t *testing.T) {
	for i := 0; i < 5; i++ {
		t.Run(fmt.Sprintf("round_%d", i), func(t *testing.T) {
			raceOnce(t)
		})
	}
}

func raceOnce(t *testing.T) {
	f := newPaymentFixture(t, WebhookAuth{Token: webhookToken})
	b := f.seed(t, ownerA, "eg1")
	body := purchaseBody(b, "evt_race", "GPA.race")

	var (
		wg        sync.WaitGroup
		ack       string
		webErr    error
		clientErr error
		clientRec *db_models.Biodata
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		a, err := f.svc.HandleWebhook(context.Background(), bearer, "", body)
		webErr = err
		if a != nil {
			ack = a.Result
		}
	}()
	go func() {
		defer wg.Done()
		clientRec, clientErr = f.svc.VerifyPurchase(context.Background(), ownerA, b.ID.String(), "GPA.race", "eg1")
	}()
	wg.Wait()

	require.NoError(t, webErr)
	require.NoError(t, clientErr)
	assert.Contains(t, []string{"processed", "already_processed"}, ack)
	assert.Equal(t, db_models.PaymentStatusSuccess, clientRec.PaymentStatus)
	assert.Equal(t, int32(1), f.repo.applied.Load())

	got := f.reload(t, b.ID)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, "GPA.race", *got.TransactionID)
}
