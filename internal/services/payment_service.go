package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bmapp/internal/models/db_models"
	"bmapp/internal/models/response_models"
	"bmapp/internal/reconcile"
	"bmapp/internal/repositories"
	"bmapp/pkg/utils"
)

// WebhookAuth holds the shared secrets RevenueCat deliveries are checked against.
// SigningSecret takes precedence over Token when both are set.
type WebhookAuth struct {
	Token         string
	SigningSecret string
}

type PaymentService interface {
	// HandleWebhook only fails with utils.ErrWebhookUnauthorized. Every other
	// outcome, including internal failures, is reported in the ack.
	HandleWebhook(ctx context.Context, authHeader, signatureHeader string, raw []byte) (*response_models.WebhookAck, error)
	VerifyPurchase(ctx context.Context, ownerID, recordID, transactionID, productID string) (*db_models.Biodata, error)
}

type paymentService struct {
	biodata  repositories.BiodataRepository
	events   repositories.PaymentEventRepository
	verifier PurchaseVerifier
	auth     WebhookAuth
	log      *zap.Logger
	now      func() time.Time
}

func NewPaymentService(
	biodata repositories.BiodataRepository,
	events repositories.PaymentEventRepository,
	verifier PurchaseVerifier,
	auth WebhookAuth,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		biodata:  biodata,
		events:   events,
		verifier: verifier,
		auth:     auth,
		log:      log,
		now:      time.Now,
	}
}

func (p *paymentService) authenticate(authHeader, signatureHeader string, raw []byte) bool {
	if p.auth.SigningSecret != "" {
		got, err := hex.DecodeString(strings.TrimSpace(signatureHeader))
		if err != nil || len(got) == 0 {
			return false
		}
		mac := hmac.New(sha256.New, []byte(p.auth.SigningSecret))
		mac.Write(raw)
		return hmac.Equal(got, mac.Sum(nil))
	}
	if p.auth.Token == "" {
		return false
	}
	want := "Bearer " + p.auth.Token
	return subtle.ConstantTimeCompare([]byte(authHeader), []byte(want)) == 1
}

func (p *paymentService) HandleWebhook(ctx context.Context, authHeader, signatureHeader string, raw []byte) (*response_models.WebhookAck, error) {
	if !p.authenticate(authHeader, signatureHeader, raw) {
		p.log.Warn("Rejected RevenueCat webhook", zap.Bool("signature_present", signatureHeader != ""))
		return nil, utils.ErrWebhookUnauthorized
	}

	ev, err := reconcile.ParseWebhook(raw)
	if err != nil {
		p.log.Warn("Invalid RevenueCat webhook payload", zap.Error(err))
		ack := &response_models.WebhookAck{Result: string(reconcile.OutcomeInvalidPayload), Message: err.Error()}
		p.audit(ctx, nil, ack, raw, err)
		return ack, nil
	}

	var (
		ack  *response_models.WebhookAck
		fail error
	)
	switch e := ev.(type) {
	case reconcile.NonRenewingPurchase:
		ack, fail = p.confirmFromWebhook(ctx, e, raw)
	default:
		ack = &response_models.WebhookAck{
			Result:  string(reconcile.OutcomeIgnored),
			Message: "event type " + ev.EventType() + " does not confirm payment",
		}
	}
	ack.EventID = ev.EventID()

	p.log.Info("RevenueCat webhook handled",
		zap.String("event_id", ev.EventID()),
		zap.String("event_type", ev.EventType()),
		zap.String("result", ack.Result),
		zap.String("biodata_id", ack.BiodataID))
	p.audit(ctx, ev, ack, raw, fail)
	return ack, nil
}

func (p *paymentService) confirmFromWebhook(ctx context.Context, e reconcile.NonRenewingPurchase, raw []byte) (*response_models.WebhookAck, error) {
	failed := func(err error) (*response_models.WebhookAck, error) {
		p.log.Error("RevenueCat webhook processing failed",
			zap.String("event_id", e.ID),
			zap.String("transaction_id", e.TransactionID),
			zap.Error(err))
		return &response_models.WebhookAck{Result: string(reconcile.OutcomeFailed), Message: err.Error()}, err
	}

	holder, err := p.biodata.FindByTransactionID(ctx, e.TransactionID)
	if err != nil {
		return failed(err)
	}
	holderID := ""
	if holder != nil {
		holderID = holder.ID.String()
	}

	ownerID, recordID, err := reconcile.ParseAppUserID(e.AppUserID)
	if err != nil && holder == nil {
		return &response_models.WebhookAck{Result: string(reconcile.OutcomeRecordNotFound), Message: err.Error()}, nil
	}

	var record *db_models.Biodata
	if id, perr := uuid.Parse(recordID); perr == nil && holder == nil {
		record, err = p.biodata.FindByID(ctx, id)
		if err != nil {
			return failed(err)
		}
	}

	d := reconcile.Decide(record.Snapshot(), holderID, reconcile.Confirmation{
		Source:        reconcile.SourceWebhook,
		Actor:         ownerID,
		RecordID:      recordID,
		TransactionID: e.TransactionID,
		AppUserID:     e.AppUserID,
		ProductID:     e.ProductID,
		EventType:     e.EventType(),
		At:            p.now(),
	})

	ack := &response_models.WebhookAck{Result: string(d.Outcome), BiodataID: recordID}
	if holder != nil {
		ack.BiodataID = holderID
	}
	if d.Transition == nil {
		return ack, nil
	}

	applied, err := p.biodata.ConfirmPayment(ctx, *d.Transition, raw)
	switch {
	case errors.Is(err, utils.ErrTransactionInUse):
		// Another record took the transaction id between lookup and write.
		ack.Result = string(reconcile.OutcomeAlreadyProcessed)
	case err != nil:
		return failed(err)
	case !applied:
		ack.Result = string(reconcile.OutcomeAlreadyProcessed)
	}
	return ack, nil
}

func (p *paymentService) audit(ctx context.Context, ev reconcile.Event, ack *response_models.WebhookAck, raw []byte, procErr error) {
	row := &db_models.PaymentEvent{
		Provider:  reconcile.ProviderRevenueCat,
		EventType: "UNKNOWN",
		Outcome:   ack.Result,
		Payload:   auditPayload(raw),
	}
	if ev != nil {
		row.EventID = ev.EventID()
		row.EventType = ev.EventType()
		if e, ok := ev.(reconcile.NonRenewingPurchase); ok {
			row.AppUserID = e.AppUserID
			row.TransactionID = e.TransactionID
		}
	}
	if procErr != nil {
		row.Error = truncate(procErr.Error(), 1024)
	}
	if err := p.events.Record(ctx, row); err != nil {
		p.log.Warn("Failed to record payment event", zap.String("event_id", row.EventID), zap.Error(err))
	}
}

// auditPayload keeps undecodable bodies too; the column only accepts JSON.
func auditPayload(raw []byte) []byte {
	if json.Valid(raw) {
		return raw
	}
	b, _ := json.Marshal(map[string]string{"raw": string(raw)})
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (p *paymentService) VerifyPurchase(ctx context.Context, ownerID, recordID, transactionID, productID string) (*db_models.Biodata, error) {
	id, err := uuid.Parse(recordID)
	if err != nil {
		return nil, utils.ErrInvalidBiodataID
	}
	if transactionID == "" {
		return nil, utils.ErrTransactionRequired
	}

	record, err := p.biodata.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, utils.ErrBiodataNotFound
	}

	conf := reconcile.Confirmation{
		Source:        reconcile.SourceClientVerify,
		Actor:         ownerID,
		RecordID:      record.ID.String(),
		TransactionID: transactionID,
		ProductID:     productID,
	}
	d, err := p.decideClient(ctx, record, conf)
	if err != nil {
		return nil, err
	}
	if d.Transition != nil {
		if err := p.confirmVerified(ctx, *d.Transition); err != nil {
			return nil, err
		}
	}

	// A concurrent webhook may have won; the record is paid either way if it is SUCCESS now.
	current, err := p.biodata.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, utils.ErrBiodataNotFound
	}
	if current.PaymentStatus != reconcile.StatusSuccess {
		return nil, utils.ErrPaymentRequired
	}
	return current, nil
}

func (p *paymentService) confirmVerified(ctx context.Context, t reconcile.Transition) error {
	verified, err := p.verifier.VerifyPurchase(ctx, t.TransactionID)
	if err != nil {
		p.log.Warn("Purchase verification failed",
			zap.String("biodata_id", t.RecordID),
			zap.String("transaction_id", t.TransactionID),
			zap.Error(err))
		return err
	}

	t.ConfirmedAt = p.now()
	if t.ProductID == "" {
		t.ProductID = verified.ProductID
	}
	response, _ := json.Marshal(map[string]any{
		"transaction_id":      t.TransactionID,
		"revenuecat_response": verified.Raw,
	})

	applied, err := p.biodata.ConfirmPayment(ctx, t, response)
	if err != nil {
		return err
	}
	if applied {
		p.log.Info("Payment confirmed by client verification",
			zap.String("biodata_id", t.RecordID),
			zap.String("transaction_id", t.TransactionID))
	}
	return nil
}

// decideClient runs the client-path rules and maps refusals to service errors.
func (p *paymentService) decideClient(ctx context.Context, record *db_models.Biodata, c reconcile.Confirmation) (reconcile.Decision, error) {
	holder, err := p.biodata.FindByTransactionID(ctx, c.TransactionID)
	if err != nil {
		return reconcile.Decision{}, err
	}
	holderID := ""
	if holder != nil {
		holderID = holder.ID.String()
	}

	d := reconcile.Decide(record.Snapshot(), holderID, c)
	switch d.Outcome {
	case reconcile.OutcomeRecordNotFound:
		return d, utils.ErrBiodataNotFound
	case reconcile.OutcomeProductMismatch:
		return d, utils.ErrProductMismatch
	case reconcile.OutcomeTransactionInUse:
		return d, utils.ErrTransactionInUse
	}
	return d, nil
}
