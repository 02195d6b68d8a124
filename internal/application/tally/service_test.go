package tally

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// fakeTallies is an in-memory TallyRepository mirroring the atomic
// upsert semantics.
type fakeTallies struct {
	rows       map[string]map[uint]*meal.TallyRow
	increments int
}

func newFakeTallies() *fakeTallies {
	return &fakeTallies{rows: map[string]map[uint]*meal.TallyRow{}}
}

func (f *fakeTallies) Increment(_ context.Context, userID string, mealID uint, at time.Time) error {
	f.increments++
	if f.rows[userID] == nil {
		f.rows[userID] = map[uint]*meal.TallyRow{}
	}
	row, ok := f.rows[userID][mealID]
	if !ok {
		f.rows[userID][mealID] = &meal.TallyRow{UserID: userID, UserMealID: mealID, Tally: 1, LastSelectedAt: &at}
		return nil
	}
	row.Tally++
	row.LastSelectedAt = &at
	return nil
}

func (f *fakeTallies) TopForUser(_ context.Context, userID string, limit int) ([]meal.TallyRow, error) {
	var out []meal.TallyRow
	for _, row := range f.rows[userID] {
		out = append(out, *row)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Tally > out[i].Tally {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTallies) TopOverall(_ context.Context, limit int) ([]meal.TallyAggregate, error) {
	sums := map[uint]int{}
	for _, byMeal := range f.rows {
		for id, row := range byMeal {
			sums[id] += row.Tally
		}
	}
	var out []meal.TallyAggregate
	for id, sum := range sums {
		out = append(out, meal.TallyAggregate{UserMealID: id, TotalTally: sum})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TotalTally > out[i].TotalTally {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeMeals resolves meals by id from a fixed set.
type fakeMeals struct {
	meals map[uint]*meal.UserMeal
}

func (f *fakeMeals) GetByID(_ context.Context, id uint) (*meal.UserMeal, error) {
	if m, ok := f.meals[id]; ok {
		return m, nil
	}
	return nil, apperrors.NewMealNotFoundError(id)
}

type fakeIdentity struct {
	users map[string]bool
}

func (f *fakeIdentity) Exists(_ context.Context, userID string) (bool, error) {
	return f.users[userID], nil
}

func (f *fakeIdentity) IsAdmin(_ context.Context, _ string) (bool, error) { return false, nil }

func newTestService(tallies *fakeTallies, mealIDs ...uint) *Service {
	meals := &fakeMeals{meals: map[uint]*meal.UserMeal{}}
	for _, id := range mealIDs {
		meals.meals[id] = &meal.UserMeal{ID: id, UserID: "u1", Title: "Meal"}
	}
	return NewService(
		tallies,
		meals,
		&fakeIdentity{users: map[string]bool{"u1": true, "u2": true}},
		zap.NewNop(),
	)
}

func TestIncrementThreeTimes(t *testing.T) {
	tallies := newFakeTallies()
	svc := newTestService(tallies, 7)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Increment(context.Background(), "u1", 7))
	}

	assert.Equal(t, 3, tallies.rows["u1"][7].Tally)
	assert.Equal(t, 3, tallies.increments)
}

func TestIncrementUnknownUserFails(t *testing.T) {
	tallies := newFakeTallies()
	svc := newTestService(tallies, 7)

	err := svc.Increment(context.Background(), "ghost", 7)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUserNotFound))
	assert.Zero(t, tallies.increments)
}

func TestIncrementMissingMealIsNoOp(t *testing.T) {
	tallies := newFakeTallies()
	svc := newTestService(tallies, 7)

	require.NoError(t, svc.Increment(context.Background(), "u1", 404))
	assert.Zero(t, tallies.increments)
}

func TestFavouritesRankedAndCapped(t *testing.T) {
	tallies := newFakeTallies()
	svc := newTestService(tallies, 1, 2, 3, 4, 5)

	counts := map[uint]int{1: 5, 2: 9, 3: 1, 4: 7, 5: 2}
	for id, n := range counts {
		for i := 0; i < n; i++ {
			require.NoError(t, svc.Increment(context.Background(), "u1", id))
		}
	}

	favs, err := svc.Favourites(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, favs, 3)

	for i := 1; i < len(favs); i++ {
		assert.GreaterOrEqual(t, favs[i-1].Tally, favs[i].Tally)
	}
	assert.Equal(t, 9, favs[0].Tally)
	assert.Equal(t, uint(2), favs[0].Meal.ID)
}

func TestFavouritesSkipDeletedMeal(t *testing.T) {
	tallies := newFakeTallies()
	svc := newTestService(tallies, 1, 2)

	require.NoError(t, svc.Increment(context.Background(), "u1", 1))
	require.NoError(t, svc.Increment(context.Background(), "u1", 2))

	// Simulate a meal deleted after being tallied.
	tallies.rows["u1"][99] = &meal.TallyRow{UserID: "u1", UserMealID: 99, Tally: 50}

	favs, err := svc.Favourites(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, favs, 2)
	for _, f := range favs {
		assert.NotEqual(t, uint(99), f.Meal.ID)
	}
}

func TestTopMealsSumsAcrossUsers(t *testing.T) {
	tallies := newFakeTallies()
	svc := newTestService(tallies, 1, 2)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.Increment(context.Background(), "u1", 1))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Increment(context.Background(), "u2", 1))
	}
	require.NoError(t, svc.Increment(context.Background(), "u2", 2))

	top, err := svc.TopMeals(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, uint(1), top[0].Meal.ID)
	assert.Equal(t, 5, top[0].Tally)
	assert.Equal(t, uint(2), top[1].Meal.ID)
	assert.Equal(t, 1, top[1].Tally)
}
