// Package resolver implements the Entity Resolver (spec.md §4.4): given a
// (source, external_id, payload) for a Team or Player, it returns the
// canonical id, creating or merging as needed.
package resolver

import (
	"context"
	"math"
	"time"

	"hoopsync/internal/models"
)

// TeamStore is the subset of TeamRepository the resolver needs. Declaring it
// here rather than depending on *repository.TeamRepository directly lets
// tests drive the resolver's merge/conflict logic against an in-memory fake.
type TeamStore interface {
	GetByExternalID(ctx context.Context, source, externalID string) (*models.Team, error)
	FindByNormalizedName(ctx context.Context, normalizedName string) ([]*models.Team, error)
	Update(ctx context.Context, t *models.Team) error
	Create(ctx context.Context, t *models.Team) error
}

// TeamResolver resolves teams via the three-tier strategy in spec.md §4.4.
type TeamResolver struct {
	teams TeamStore
}

func NewTeamResolver(teams TeamStore) *TeamResolver {
	return &TeamResolver{teams: teams}
}

// Resolve returns the canonical Team for a source's raw team payload,
// creating it on first sight and unioning external_ids on every later tier.
func (r *TeamResolver) Resolve(ctx context.Context, source, externalID string, incoming *models.Team) (*models.Team, error) {
	// Tier 1: exact external id match.
	if existing, err := r.teams.GetByExternalID(ctx, source, externalID); err == nil {
		return existing, nil
	} else if !models.IsNotFound(err) {
		return nil, err
	}

	// Tier 2: normalized name match.
	normalized := models.NormalizedName(incoming.Name)
	candidates, err := r.teams.FindByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 1 {
		match := candidates[0]
		if match.ExternalIDs == nil {
			match.ExternalIDs = map[string]string{}
		}
		if existing, ok := match.ExternalIDs[source]; ok && existing != externalID {
			return nil, models.NewIdentityConflictError("team", source, existing, externalID)
		}
		match.ExternalIDs[source] = externalID
		if err := r.teams.Update(ctx, match); err != nil {
			return nil, err
		}
		return match, nil
	}

	// Tier 3: create new.
	incoming.ExternalIDs = map[string]string{source: externalID}
	if err := r.teams.Create(ctx, incoming); err != nil {
		return nil, err
	}
	return incoming, nil
}

// PlayerStore is the subset of PlayerRepository the resolver needs.
type PlayerStore interface {
	GetByExternalID(ctx context.Context, source, externalID string) (*models.Player, error)
	FindByTeamRoster(ctx context.Context, teamID int64, normalizedFirst, normalizedLast string) ([]*models.Player, error)
	FindByBiographical(ctx context.Context, normalizedFirst, normalizedLast string, birthDate time.Time) ([]*models.Player, error)
	Update(ctx context.Context, p *models.Player) error
	Create(ctx context.Context, p *models.Player) error
}

// PlayerResolver resolves players via the four-tier strategy in spec.md
// §4.4. Ambiguous tier-3 matches never auto-merge; the caller records the
// ambiguity on the SyncLog.
type PlayerResolver struct {
	players PlayerStore
}

func NewPlayerResolver(players PlayerStore) *PlayerResolver {
	return &PlayerResolver{players: players}
}

// Result carries the resolved player plus a flag for the "ambiguous,
// created a new row" outcome the sync log needs to record.
type Result struct {
	Player    *models.Player
	Ambiguous bool
}

// Resolve returns the canonical Player for a source's raw player payload.
// teamID is the team the player is currently rostered to, used for tier 2.
func (r *PlayerResolver) Resolve(ctx context.Context, source, externalID string, teamID int64, incoming *models.Player) (Result, error) {
	if existing, err := r.players.GetByExternalID(ctx, source, externalID); err == nil {
		return Result{Player: existing}, nil
	} else if !models.IsNotFound(err) {
		return Result{}, err
	}

	normalizedFirst := models.NormalizedName(incoming.FirstName)
	normalizedLast := models.NormalizedName(incoming.LastName)

	if teamID != 0 {
		rosterMatches, err := r.players.FindByTeamRoster(ctx, teamID, normalizedFirst, normalizedLast)
		if err != nil {
			return Result{}, err
		}
		if len(rosterMatches) == 1 {
			match := rosterMatches[0]
			if err := r.union(ctx, match, source, externalID); err != nil {
				return Result{}, err
			}
			return Result{Player: match}, nil
		}
	}

	if incoming.BirthDate != nil {
		candidates, err := r.players.FindByBiographical(ctx, normalizedFirst, normalizedLast, *incoming.BirthDate)
		if err != nil {
			return Result{}, err
		}
		filtered := filterByBiographical(candidates, incoming)
		if len(filtered) == 1 {
			match := filtered[0]
			if err := r.union(ctx, match, source, externalID); err != nil {
				return Result{}, err
			}
			return Result{Player: match}, nil
		}
		if len(filtered) > 1 {
			created, err := r.create(ctx, source, externalID, incoming)
			return Result{Player: created, Ambiguous: true}, err
		}
	}

	created, err := r.create(ctx, source, externalID, incoming)
	return Result{Player: created}, err
}

func (r *PlayerResolver) create(ctx context.Context, source, externalID string, incoming *models.Player) (*models.Player, error) {
	incoming.ExternalIDs = map[string]string{source: externalID}
	if err := r.players.Create(ctx, incoming); err != nil {
		return nil, err
	}
	return incoming, nil
}

// union checks for a conflicting external id before recording the new one,
// the same check-then-write order TeamResolver.Resolve's tier-2 path uses.
func (r *PlayerResolver) union(ctx context.Context, p *models.Player, source, externalID string) error {
	if p.ExternalIDs == nil {
		p.ExternalIDs = map[string]string{}
	}
	if existing, ok := p.ExternalIDs[source]; ok && existing != externalID {
		return models.NewIdentityConflictError("player", source, existing, externalID)
	}
	p.ExternalIDs[source] = externalID
	return r.players.Update(ctx, p)
}

// filterByBiographical keeps only candidates whose birth date matches
// exactly or whose height differs by at most 2cm, per spec.md §4.4 tier 3.
func filterByBiographical(candidates []*models.Player, incoming *models.Player) []*models.Player {
	var out []*models.Player
	for _, c := range candidates {
		if sameBirthDate(c.BirthDate, incoming.BirthDate) || closeHeight(c.HeightCM, incoming.HeightCM) {
			out = append(out, c)
		}
	}
	return out
}

func sameBirthDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}

func closeHeight(a, b *int) bool {
	if a == nil || b == nil {
		return false
	}
	return math.Abs(float64(*a-*b)) <= 2
}

// Priority returns the first non-empty value in the given order, the
// fixed biographical-field priority chain used when merging two sources'
// descriptions of the same player (name/height/birth_date/nationality/
// positions: first non-null value from the configured adapter list wins).
func Priority(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
