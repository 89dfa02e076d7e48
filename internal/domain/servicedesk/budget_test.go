package servicedesk

import (
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_Approve(t *testing.T) {
	actor := testActor()
	o := newOrder(t, actor)
	require.NoError(t, o.TransitionTo(actor, StatusDiagnosing, ""))

	b, err := NewBudget(actor, "ORC000001", o, "Troca da fonte", dec("120.00"), dec("80.00"), 0)
	require.NoError(t, err)
	assert.True(t, dec("200.00").Equal(b.Total))
	assert.Equal(t, BudgetStatusPending, b.Status)
	assert.False(t, b.IsExpired(time.Now()))
	assert.True(t, b.IsExpired(time.Now().AddDate(0, 0, DefaultBudgetValidityDays+1)))

	require.NoError(t, b.Approve(actor, o))

	assert.Equal(t, BudgetStatusApproved, b.Status)
	assert.Equal(t, actor.UserID, *b.DecidedBy)
	assert.Equal(t, StatusApproved, o.Status)
	assert.NotNil(t, o.ApprovedAt)
	assert.True(t, dec("120.00").Equal(o.ServiceValue))
	assert.True(t, dec("80.00").Equal(o.PartsValue))
	assert.True(t, dec("200.00").Equal(o.GrandTotal))

	last := o.History[len(o.History)-1]
	assert.Equal(t, ActionBudgetApproved, last.Action)
	assert.Equal(t, StatusDiagnosing, last.FromStatus)
	assert.Equal(t, StatusApproved, last.ToStatus)

	err = b.Approve(actor, o)
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidStatusTransition))
}

func TestBudget_PartLinesOverrideQuotedParts(t *testing.T) {
	actor := testActor()
	o := newOrder(t, actor)
	b, err := NewBudget(actor, "ORC000002", o, "Reparo", dec("100"), dec("50"), 10)
	require.NoError(t, err)
	require.NoError(t, b.Approve(actor, o))
	assert.True(t, dec("150").Equal(o.GrandTotal))

	_, err = o.AddPart(partLine(t, actor.TenantID, "1", "70.00"))
	require.NoError(t, err)
	assert.True(t, dec("70.00").Equal(o.PartsValue))
	assert.True(t, dec("170.00").Equal(o.GrandTotal))
}

func TestBudget_Reject(t *testing.T) {
	actor := testActor()
	o := newOrder(t, actor)
	b, err := NewBudget(actor, "ORC000003", o, "Reparo", dec("100"), dec("0"), 0)
	require.NoError(t, err)

	require.NoError(t, b.Reject(actor, o, "too expensive"))
	assert.Equal(t, BudgetStatusRejected, b.Status)
	assert.Equal(t, StatusOpen, o.Status)
	assert.Equal(t, ActionBudgetRejected, o.History[len(o.History)-1].Action)

	other := newOrder(t, actor)
	b2, err := NewBudget(actor, "ORC000004", o, "Reparo", dec("100"), dec("0"), 0)
	require.NoError(t, err)
	assert.True(t, shared.IsDomainError(b2.Approve(actor, other), shared.CodeValidation))
}
