package resolver

import (
	"context"
	"testing"
	"time"

	"hoopsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int               { return &i }
func timePtr(t time.Time) *time.Time { return &t }

// fakePlayerStore backs the resolver's union/conflict tests with an
// in-memory roster, avoiding a live database for pure merge-logic coverage.
type fakePlayerStore struct {
	byExternal  map[string]*models.Player
	roster      []*models.Player
	updateCalls int
}

func (f *fakePlayerStore) key(source, externalID string) string { return source + "|" + externalID }

func (f *fakePlayerStore) GetByExternalID(_ context.Context, source, externalID string) (*models.Player, error) {
	if p, ok := f.byExternal[f.key(source, externalID)]; ok {
		return p, nil
	}
	return nil, models.NewNotFoundError("player", f.key(source, externalID))
}

func (f *fakePlayerStore) FindByTeamRoster(_ context.Context, _ int64, _, _ string) ([]*models.Player, error) {
	return f.roster, nil
}

func (f *fakePlayerStore) FindByBiographical(_ context.Context, _, _ string, _ time.Time) ([]*models.Player, error) {
	return nil, nil
}

func (f *fakePlayerStore) Update(_ context.Context, _ *models.Player) error {
	f.updateCalls++
	return nil
}

func (f *fakePlayerStore) Create(_ context.Context, p *models.Player) error {
	p.ID = 999
	return nil
}

func TestPlayerResolver_Resolve_RosterMatchUnionsExternalID(t *testing.T) {
	existing := &models.Player{ID: 7, FirstName: "Luka", LastName: "Doncic", ExternalIDs: map[string]string{"source-a": "ext-1"}}
	store := &fakePlayerStore{byExternal: map[string]*models.Player{}, roster: []*models.Player{existing}}
	r := NewPlayerResolver(store)

	result, err := r.Resolve(context.Background(), "source-b", "ext-2", 42, &models.Player{FirstName: "Luka", LastName: "Doncic"})

	require.NoError(t, err)
	assert.Same(t, existing, result.Player)
	assert.False(t, result.Ambiguous)
	assert.Equal(t, "ext-1", result.Player.ExternalIDs["source-a"], "prior source's external id survives the union")
	assert.Equal(t, "ext-2", result.Player.ExternalIDs["source-b"], "new source's external id is recorded")
	assert.Equal(t, 1, store.updateCalls)
}

func TestPlayerResolver_Resolve_RosterMatchConflictNeverWrites(t *testing.T) {
	existing := &models.Player{ID: 7, FirstName: "Luka", LastName: "Doncic", ExternalIDs: map[string]string{"source-b": "ext-OLD"}}
	store := &fakePlayerStore{byExternal: map[string]*models.Player{}, roster: []*models.Player{existing}}
	r := NewPlayerResolver(store)

	_, err := r.Resolve(context.Background(), "source-b", "ext-NEW", 42, &models.Player{FirstName: "Luka", LastName: "Doncic"})

	require.Error(t, err)
	assert.True(t, models.IsIdentityConflict(err))
	assert.Equal(t, "ext-OLD", existing.ExternalIDs["source-b"], "a conflicting external id must never overwrite the existing one")
	assert.Equal(t, 0, store.updateCalls, "a detected conflict must return before persisting anything")
}

func TestFilterByBiographical_ExactBirthDateMatches(t *testing.T) {
	birthDate := time.Date(1998, time.March, 4, 0, 0, 0, 0, time.UTC)
	incoming := &models.Player{BirthDate: timePtr(birthDate), HeightCM: intPtr(201)}
	candidates := []*models.Player{
		{ID: 1, BirthDate: timePtr(birthDate), HeightCM: intPtr(198)},
		{ID: 2, BirthDate: timePtr(birthDate.AddDate(0, 0, 1)), HeightCM: intPtr(201)},
	}

	out := filterByBiographical(candidates, incoming)

	assert.Len(t, out, 2, "birth date equality and height-within-tolerance both qualify")
}

func TestFilterByBiographical_HeightToleranceBoundary(t *testing.T) {
	incoming := &models.Player{HeightCM: intPtr(200)}
	within := &models.Player{ID: 1, HeightCM: intPtr(198)}
	outside := &models.Player{ID: 2, HeightCM: intPtr(197)}

	out := filterByBiographical([]*models.Player{within, outside}, incoming)

	assert.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID, "2cm difference is within tolerance, 3cm is not")
}

func TestFilterByBiographical_NoBirthDateOrHeightExcludesCandidate(t *testing.T) {
	incoming := &models.Player{}
	candidate := &models.Player{ID: 1}

	out := filterByBiographical([]*models.Player{candidate}, incoming)

	assert.Empty(t, out, "candidates with no comparable field never match")
}

func TestSameBirthDate(t *testing.T) {
	d := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, sameBirthDate(timePtr(d), timePtr(d)))
	assert.False(t, sameBirthDate(nil, timePtr(d)))
	assert.False(t, sameBirthDate(timePtr(d), timePtr(d.AddDate(0, 0, 1))))
}

func TestCloseHeight(t *testing.T) {
	assert.True(t, closeHeight(intPtr(200), intPtr(202)))
	assert.True(t, closeHeight(intPtr(200), intPtr(198)))
	assert.False(t, closeHeight(intPtr(200), intPtr(203)))
	assert.False(t, closeHeight(nil, intPtr(200)))
}

func TestPriority_FirstNonEmptyWins(t *testing.T) {
	assert.Equal(t, "winner-value", Priority("", "winner-value", "nbastats-value"))
	assert.Equal(t, "", Priority("", ""))
	assert.Equal(t, "only-value", Priority("only-value"))
}
