package reconcile

import "time"

type Status string

const (
	StatusInitiated Status = "INITIATED"
	StatusSuccess   Status = "SUCCESS"
	// StatusError is accepted in storage but no confirmation path produces it.
	StatusError Status = "ERROR"
)

const ProviderRevenueCat = "REVENUECAT"

// Source names the path that observed the provider confirmation.
type Source string

const (
	SourceWebhook      Source = "webhook"
	SourceClientVerify Source = "client_verify"
)

type Outcome string

const (
	OutcomeProcessed        Outcome = "processed"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeIgnored          Outcome = "ignored_event_type"
	OutcomeRecordNotFound   Outcome = "record_not_found"
	OutcomeOwnerMismatch    Outcome = "owner_mismatch"
	OutcomeProductMismatch  Outcome = "product_mismatch"
	OutcomeTransactionInUse Outcome = "transaction_in_use"
	OutcomeInvalidPayload   Outcome = "invalid_payload"
	OutcomeFailed           Outcome = "failed"
)

// Snapshot is the part of a stored record the rules look at.
type Snapshot struct {
	ID            string
	OwnerID       string
	TemplateID    string
	Status        Status
	TransactionID string
}

// Confirmation is a claim that transaction TransactionID paid for record RecordID.
// Actor is the owner the claim speaks for: the authenticated caller on the
// client path, the owner half of app_user_id on the webhook path.
type Confirmation struct {
	Source        Source
	Actor         string
	RecordID      string
	TransactionID string
	AppUserID     string
	ProductID     string
	EventType     string
	At            time.Time
}

// Transition is the single write that moves a record to SUCCESS.
type Transition struct {
	RecordID      string
	TransactionID string
	AppUserID     string
	ProductID     string
	ProviderType  string
	Source        Source
	EventType     string
	ConfirmedAt   time.Time
}

type Decision struct {
	Outcome Outcome
	// Transition is non-nil only when the record must be confirmed.
	Transition *Transition
}

// Apply returns the record as it looks after t.
func (t Transition) Apply(s Snapshot) Snapshot {
	s.Status = StatusSuccess
	s.TransactionID = t.TransactionID
	return s
}

// Decide evaluates a confirmation against the current record (nil when it does
// not exist) and holderID, the id of the record already holding the
// transaction id ("" when none does).
func Decide(record *Snapshot, holderID string, c Confirmation) Decision {
	if c.Source == SourceWebhook {
		return decideWebhook(record, holderID, c)
	}
	return decideClient(record, holderID, c)
}

func decideWebhook(record *Snapshot, holderID string, c Confirmation) Decision {
	switch {
	case holderID != "":
		return Decision{Outcome: OutcomeAlreadyProcessed}
	case record == nil:
		return Decision{Outcome: OutcomeRecordNotFound}
	case record.OwnerID != c.Actor:
		return Decision{Outcome: OutcomeOwnerMismatch}
	case record.Status == StatusSuccess:
		return Decision{Outcome: OutcomeAlreadyProcessed}
	}
	return Decision{Outcome: OutcomeProcessed, Transition: transitionFor(record, c)}
}

func decideClient(record *Snapshot, holderID string, c Confirmation) Decision {
	switch {
	case record == nil, record.OwnerID != c.Actor:
		return Decision{Outcome: OutcomeRecordNotFound}
	case c.ProductID != "" && c.ProductID != record.TemplateID:
		return Decision{Outcome: OutcomeProductMismatch}
	case holderID != "" && holderID != record.ID:
		return Decision{Outcome: OutcomeTransactionInUse}
	case holderID == record.ID, record.Status == StatusSuccess:
		return Decision{Outcome: OutcomeAlreadyProcessed}
	}
	return Decision{Outcome: OutcomeProcessed, Transition: transitionFor(record, c)}
}

func transitionFor(record *Snapshot, c Confirmation) *Transition {
	appUserID := c.AppUserID
	if appUserID == "" {
		appUserID = ComposeAppUserID(record.OwnerID, record.ID)
	}
	return &Transition{
		RecordID:      record.ID,
		TransactionID: c.TransactionID,
		AppUserID:     appUserID,
		ProductID:     c.ProductID,
		ProviderType:  ProviderRevenueCat,
		Source:        c.Source,
		EventType:     c.EventType,
		ConfirmedAt:   c.At,
	}
}
