package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) resolve(t *testing.T, data RecipientData) uuid.UUID {
	t.Helper()
	resolver := NewContactResolver(f.audit)

	var id uuid.UUID
	err := f.store.WithTx(f.ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		id, err = resolver.Resolve(ctx, tx, data, f.org.ID)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestResolveCreatesIndividualContact(t *testing.T) {
	f := newFixture(t)

	id := f.resolve(t, RecipientData{Name: " Jane Doe ", Email: "jane@example.com", Phone: "555-0100"})

	contact, err := f.contacts.GetContact(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", contact.Name)
	assert.Equal(t, int64(0), contact.TotalContributions)
	require.NotNil(t, contact.ContactType)
	assert.Equal(t, "Individual", contact.ContactType.Name)
}

func TestResolveEmailMatchOverwritesName(t *testing.T) {
	f := newFixture(t)

	first := f.resolve(t, RecipientData{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100"})
	second := f.resolve(t, RecipientData{Name: "Jane Smith", Email: "jane@example.com", Phone: "555-0199"})
	assert.Equal(t, first, second)

	contact, err := f.contacts.GetContact(f.ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", contact.Name)
	assert.Equal(t, "555-0199", contact.Phone)
}

func TestResolveNameMatchOnlyFillsEmptyFields(t *testing.T) {
	f := newFixture(t)

	first := f.resolve(t, RecipientData{Name: "John Roe"})
	second := f.resolve(t, RecipientData{Name: "John Roe", Email: "john@example.com", Phone: "555-0111"})
	assert.Equal(t, first, second)

	contact, err := f.contacts.GetContact(f.ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", contact.Email)
	assert.Equal(t, "555-0111", contact.Phone)

	// a stored email is never replaced through a name match
	third := f.resolve(t, RecipientData{Name: "John Roe", Phone: "555-0222"})
	assert.Equal(t, first, third)

	contact, err = f.contacts.GetContact(f.ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", contact.Email)
	assert.Equal(t, "555-0111", contact.Phone)
}

func TestResolveDifferentEmailSameNameMatchesByName(t *testing.T) {
	f := newFixture(t)

	first := f.resolve(t, RecipientData{Name: "Sam Lee", Email: "sam@old.example"})
	second := f.resolve(t, RecipientData{Name: "Sam Lee", Email: "sam@new.example"})
	assert.Equal(t, first, second)

	contact, err := f.contacts.GetContact(f.ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "sam@old.example", contact.Email)
}
