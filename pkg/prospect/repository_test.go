package prospect

import (
	"context"
	"testing"

	"github.com/slotdesk/slotdesk/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) *RepositoryImpl {
	return NewRepository(test_utils.SetupTestDB(t))
}

func TestRepositoryImpl_StoreAndGet(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	budget := 12500.0
	stored, err := repository.Store(ctx, Prospect{
		Type:         TypeCompany,
		Name:         "Acme Corp",
		Email:        "hello@acme.test",
		TargetBudget: &budget,
		Status:       StatusProposal,
		Swimlane:     "negotiation",
		Tags:         []string{"vip", "inbound"},
		Notes:        "Wants a Q3 launch",
		WebsiteURL:   "https://acme.test",
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	fetched, err := repository.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, TypeCompany, fetched.Type)
	assert.Equal(t, "Acme Corp", fetched.Name)
	require.NotNil(t, fetched.TargetBudget)
	assert.Equal(t, 12500.0, *fetched.TargetBudget)
	assert.Equal(t, StatusProposal, fetched.Status)
	assert.Equal(t, []string{"vip", "inbound"}, fetched.Tags)
	assert.Equal(t, "https://acme.test", fetched.WebsiteURL)
}

func TestRepositoryImpl_NullBudget(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	stored, err := repository.Store(ctx, Prospect{Type: TypePerson, Name: "Ada", Status: StatusNew})
	require.NoError(t, err)

	fetched, err := repository.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.TargetBudget)
	assert.Empty(t, fetched.Tags)
}

func TestRepositoryImpl_FindByEmail(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	_, err := repository.Store(ctx, Prospect{Type: TypePerson, Name: "Ada", Email: "ada@example.com", Status: StatusNew})
	require.NoError(t, err)

	found, err := repository.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.Name)

	_, err = repository.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrProspectNotFound)
}

func TestRepositoryImpl_ListFilters(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	seed := []Prospect{
		{Type: TypePerson, Name: "Ada", Status: StatusNew, Swimlane: "inbox"},
		{Type: TypePerson, Name: "Grace", Status: StatusContacted, Swimlane: "inbox"},
		{Type: TypeCompany, Name: "Acme", Status: StatusNew, Swimlane: "negotiation"},
	}
	for _, p := range seed {
		_, err := repository.Store(ctx, p)
		require.NoError(t, err)
	}

	all, err := repository.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	fresh, err := repository.List(ctx, Filter{Status: StatusNew})
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	inboxFresh, err := repository.List(ctx, Filter{Status: StatusNew, Swimlane: "inbox"})
	require.NoError(t, err)
	require.Len(t, inboxFresh, 1)
	assert.Equal(t, "Ada", inboxFresh[0].Name)
}

func TestRepositoryImpl_UpdateAndDelete(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	stored, err := repository.Store(ctx, Prospect{Type: TypePerson, Name: "Ada", Status: StatusNew})
	require.NoError(t, err)

	stored.Status = StatusMeeting
	stored.Tags = []string{"vip"}
	_, err = repository.Update(ctx, stored)
	require.NoError(t, err)

	fetched, err := repository.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusMeeting, fetched.Status)
	assert.Equal(t, []string{"vip"}, fetched.Tags)

	require.NoError(t, repository.Delete(ctx, stored.ID))
	_, err = repository.Get(ctx, stored.ID)
	assert.ErrorIs(t, err, ErrProspectNotFound)
	assert.ErrorIs(t, repository.Delete(ctx, stored.ID), ErrProspectNotFound)

	missing := stored
	missing.ID = "nope"
	_, err = repository.Update(ctx, missing)
	assert.ErrorIs(t, err, ErrProspectNotFound)
}
