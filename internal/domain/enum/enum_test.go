package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptStatusTransitions(t *testing.T) {
	assert.True(t, ReceiptStatusDraft.CanTransitionTo(ReceiptStatusSent))
	assert.True(t, ReceiptStatusSent.CanTransitionTo(ReceiptStatusViewed))
	assert.True(t, ReceiptStatusViewed.CanTransitionTo(ReceiptStatusVoided))
	assert.False(t, ReceiptStatusDraft.CanTransitionTo(ReceiptStatusViewed))
	assert.False(t, ReceiptStatusVoided.CanTransitionTo(ReceiptStatusSent))
	assert.False(t, ReceiptStatusVoided.CanTransitionTo(ReceiptStatusVoided))
	assert.False(t, ReceiptStatusSent.CanTransitionTo(ReceiptStatusDraft))
}

func TestReceiptStatusJSON(t *testing.T) {
	data, err := json.Marshal(ReceiptStatusSent)
	require.NoError(t, err)
	assert.JSONEq(t, `"Sent"`, string(data))

	var s ReceiptStatus
	require.NoError(t, json.Unmarshal([]byte(`"Voided"`), &s))
	assert.Equal(t, ReceiptStatusVoided, s)

	require.NoError(t, json.Unmarshal([]byte(`2`), &s))
	assert.Equal(t, ReceiptStatusViewed, s)

	assert.Error(t, json.Unmarshal([]byte(`"Paid"`), &s))
}

func TestReceiptKind(t *testing.T) {
	assert.True(t, ReceiptKindSales.DefaultTaxApplicable())
	assert.False(t, ReceiptKindDonation.DefaultTaxApplicable())
	assert.False(t, ReceiptKind("refund").Valid())

	var k ReceiptKind
	assert.Error(t, json.Unmarshal([]byte(`"refund"`), &k))
	require.NoError(t, json.Unmarshal([]byte(`"service"`), &k))
	assert.Equal(t, ReceiptKindService, k)
}

func TestMemberRole(t *testing.T) {
	assert.True(t, MemberRoleOwner.CanManageSettings())
	assert.True(t, MemberRoleAdmin.CanManageSettings())
	assert.False(t, MemberRoleMember.CanManageSettings())
}

func TestParseReceiptStatus(t *testing.T) {
	status, err := ParseReceiptStatus("voided")
	require.NoError(t, err)
	assert.Equal(t, ReceiptStatusVoided, status)

	status, err = ParseReceiptStatus("Sent")
	require.NoError(t, err)
	assert.Equal(t, ReceiptStatusSent, status)

	_, err = ParseReceiptStatus("archived")
	assert.Error(t, err)
}
