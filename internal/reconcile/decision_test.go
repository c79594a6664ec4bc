package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending() *Snapshot {
	return &Snapshot{ID: "r1", OwnerID: "u1", TemplateID: "eg1", Status: StatusInitiated}
}

func confirmed() *Snapshot {
	s := pending()
	s.Status = StatusSuccess
	s.TransactionID = "t1"
	return s
}

func TestDecide_Webhook(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Confirmation{
		Source:        SourceWebhook,
		Actor:         "u1",
		RecordID:      "r1",
		TransactionID: "t1",
		AppUserID:     "u1_r1",
		ProductID:     "eg1",
		EventType:     EventTypeNonRenewingPurchase,
		At:            at,
	}

	tests := []struct {
		name    string
		record  *Snapshot
		holder  string
		actor   string
		outcome Outcome
	}{
		{"fresh record", pending(), "", "u1", OutcomeProcessed},
		{"transaction already held", pending(), "r9", "u1", OutcomeAlreadyProcessed},
		{"transaction held by same record", confirmed(), "r1", "u1", OutcomeAlreadyProcessed},
		{"record missing", nil, "", "u1", OutcomeRecordNotFound},
		{"owner mismatch", pending(), "", "u2", OutcomeOwnerMismatch},
		{"already success with other txn format", confirmed(), "", "u1", OutcomeAlreadyProcessed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := c
			in.Actor = tt.actor
			d := Decide(tt.record, tt.holder, in)
			assert.Equal(t, tt.outcome, d.Outcome)
			if tt.outcome == OutcomeProcessed {
				require.NotNil(t, d.Transition)
				assert.Equal(t, "r1", d.Transition.RecordID)
				assert.Equal(t, "t1", d.Transition.TransactionID)
				assert.Equal(t, "u1_r1", d.Transition.AppUserID)
				assert.Equal(t, ProviderRevenueCat, d.Transition.ProviderType)
				assert.Equal(t, SourceWebhook, d.Transition.Source)
				assert.Equal(t, at, d.Transition.ConfirmedAt)
			} else {
				assert.Nil(t, d.Transition)
			}
		})
	}
}

func TestDecide_ClientVerify(t *testing.T) {
	tests := []struct {
		name    string
		record  *Snapshot
		holder  string
		actor   string
		product string
		outcome Outcome
	}{
		{"fresh record", pending(), "", "u1", "eg1", OutcomeProcessed},
		{"no product supplied", pending(), "", "u1", "", OutcomeProcessed},
		{"not owner", pending(), "", "u2", "eg1", OutcomeRecordNotFound},
		{"missing", nil, "", "u1", "eg1", OutcomeRecordNotFound},
		{"product mismatch", pending(), "", "u1", "eg2", OutcomeProductMismatch},
		{"transaction on another record", pending(), "r2", "u1", "eg1", OutcomeTransactionInUse},
		{"transaction on this record", confirmed(), "r1", "u1", "eg1", OutcomeAlreadyProcessed},
		{"already success", confirmed(), "", "u1", "", OutcomeAlreadyProcessed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.record, tt.holder, Confirmation{
				Source:        SourceClientVerify,
				Actor:         tt.actor,
				RecordID:      "r1",
				TransactionID: "t1",
				ProductID:     tt.product,
			})
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.outcome == OutcomeProcessed, d.Transition != nil)
		})
	}
}

func TestDecide_ClientComposesAppUserID(t *testing.T) {
	d := Decide(&Snapshot{ID: "r1", OwnerID: "a_b", TemplateID: "eg1", Status: StatusInitiated}, "", Confirmation{
		Source: SourceClientVerify, Actor: "a_b", RecordID: "r1", TransactionID: "t1",
	})
	require.NotNil(t, d.Transition)
	assert.Equal(t, "a_b_r1", d.Transition.AppUserID)
}

func TestDecide_SuccessIsTerminal(t *testing.T) {
	// Every confirmation against a SUCCESS record must be a no-op.
	for _, src := range []Source{SourceWebhook, SourceClientVerify} {
		for _, holder := range []string{"", "r1", "r2"} {
			d := Decide(confirmed(), holder, Confirmation{Source: src, Actor: "u1", RecordID: "r1", TransactionID: "t2"})
			assert.Nil(t, d.Transition, "source=%s holder=%q", src, holder)
		}
	}
}

func TestTransitionApply(t *testing.T) {
	d := Decide(pending(), "", Confirmation{Source: SourceWebhook, Actor: "u1", RecordID: "r1", TransactionID: "t1"})
	require.NotNil(t, d.Transition)

	next := d.Transition.Apply(*pending())
	assert.Equal(t, StatusSuccess, next.Status)
	assert.Equal(t, "t1", next.TransactionID)
	assert.Equal(t, "u1", next.OwnerID)
}
