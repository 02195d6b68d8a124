package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormlib "gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

func newTestDB(t *testing.T) *gormlib.DB {
	t.Helper()
	db, err := gormlib.Open(sqlite.Open(":memory:"), &gormlib.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

func seedCuisine(t *testing.T, db *gormlib.DB, name string) uint {
	t.Helper()
	c := CuisineModel{TermModel: TermModel{Name: name}}
	require.NoError(t, db.Create(&c).Error)
	return c.ID
}

func seedRecipe(t *testing.T, db *gormlib.DB, title string, active bool, cuisineIDs ...uint) uint {
	t.Helper()
	r := RecipeModel{Title: title, Active: active}
	for _, id := range cuisineIDs {
		r.Cuisines = append(r.Cuisines, CuisineModel{TermModel: TermModel{ID: id}})
	}
	require.NoError(t, db.Omit("Cuisines.*").Create(&r).Error)
	return r.ID
}

func TestRecipeGroupCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)

	thai := seedCuisine(t, db, "Thai")
	greek := seedCuisine(t, db, "Greek")
	seedRecipe(t, db, "Pad Thai", true, thai)
	seedRecipe(t, db, "Green Curry", true, thai)
	seedRecipe(t, db, "Moussaka", true, greek)
	seedRecipe(t, db, "Plain Toast", true)

	counts, uncategorized, err := repo.GroupCounts(context.Background(), meal.DimensionCuisine, "")
	require.NoError(t, err)

	require.Len(t, counts, 2)
	assert.Equal(t, "Greek", counts[0].Name)
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, "Thai", counts[1].Name)
	assert.Equal(t, 2, counts[1].Count)
	assert.Equal(t, 1, uncategorized)
}

func TestRecipeGroupCountsSearchRestricts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)

	thai := seedCuisine(t, db, "Thai")
	seedRecipe(t, db, "Pad Thai", true, thai)
	seedRecipe(t, db, "Green Curry", true, thai)
	seedRecipe(t, db, "Curry Toast", true)

	counts, uncategorized, err := repo.GroupCounts(context.Background(), meal.DimensionCuisine, "curry")
	require.NoError(t, err)

	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, 1, uncategorized)
}

func TestRecipeGroupMembers(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)

	thai := seedCuisine(t, db, "Thai")
	seedRecipe(t, db, "Pad Thai", true, thai)
	seedRecipe(t, db, "Green Curry", false, thai)
	seedRecipe(t, db, "Plain Toast", true)

	members, err := repo.GroupMembers(context.Background(), meal.DimensionCuisine, thai, "", meal.DefaultSort(), 15)
	require.NoError(t, err)
	require.Len(t, members, 2)
	// active desc, then title asc
	assert.Equal(t, "Pad Thai", members[0].Title)
	assert.Equal(t, "Green Curry", members[1].Title)

	uncategorized, err := repo.GroupMembers(context.Background(), meal.DimensionCuisine, meal.UncategorizedID, "", meal.DefaultSort(), 15)
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "Plain Toast", uncategorized[0].Title)
}

func TestRecipePageOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)

	seedRecipe(t, db, "Zucchini Bake", true)
	seedRecipe(t, db, "Apple Pie", true)
	seedRecipe(t, db, "Banana Bread", false)

	items, total, err := repo.Page(context.Background(), "", meal.DefaultSort(), 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "Apple Pie", items[0].Title)
	assert.Equal(t, "Zucchini Bake", items[1].Title)
	assert.Equal(t, "Banana Bread", items[2].Title)
}

func TestRecipeCreateWithLines(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)

	thai := seedCuisine(t, db, "Thai")
	qty := 2.0
	created, err := repo.Create(context.Background(), &meal.Recipe{
		Title:    "Pad See Ew",
		Active:   true,
		Cuisines: []meal.Term{{ID: thai}},
	}, []meal.LineInput{
		{IngredientName: "Rice Noodles", Quantity: &qty, SortOrder: 1},
		{IngredientName: "Soy Sauce", SortOrder: 2},
	})
	require.NoError(t, err)

	require.Len(t, created.Lines, 2)
	assert.Equal(t, "Rice Noodles", created.Lines[0].Ingredient.Name)
	require.Len(t, created.Cuisines, 1)
	assert.Equal(t, "Thai", created.Cuisines[0].Name)

	// Same ingredient name resolves to the same row.
	again, err := repo.Create(context.Background(), &meal.Recipe{Title: "Stir Fry", Active: true},
		[]meal.LineInput{{IngredientName: "Soy Sauce"}})
	require.NoError(t, err)
	assert.Equal(t, created.Lines[1].IngredientID, again.Lines[0].IngredientID)
}

func TestRecipeUpdateReplacesLinesAndTaxonomy(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)

	thai := seedCuisine(t, db, "Thai")
	greek := seedCuisine(t, db, "Greek")

	created, err := repo.Create(context.Background(), &meal.Recipe{
		Title:    "Original",
		Active:   true,
		Cuisines: []meal.Term{{ID: thai}},
	}, []meal.LineInput{{IngredientName: "Old Ingredient"}})
	require.NoError(t, err)

	updated, err := repo.Update(context.Background(), &meal.Recipe{
		ID:       created.ID,
		Title:    "Renamed",
		Active:   true,
		Cuisines: []meal.Term{{ID: greek}},
	}, []meal.LineInput{{IngredientName: "New Ingredient"}})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	require.Len(t, updated.Cuisines, 1)
	assert.Equal(t, "Greek", updated.Cuisines[0].Name)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, "New Ingredient", updated.Lines[0].Ingredient.Name)

	var lineCount int64
	require.NoError(t, db.Model(&RecipeLineModel{}).Where("recipe_id = ?", created.ID).Count(&lineCount).Error)
	assert.EqualValues(t, 1, lineCount)
}

func TestTallyIncrementUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewTallyRepository(db)

	mealID := seedUserMeal(t, db, "u1", "Pasta", true)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Increment(context.Background(), "u1", mealID, now))
	}

	var rows []UserMealTallyModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Tally)
	assert.NotNil(t, rows[0].LastSelectedAt)
}

func TestTallyTopOverallSums(t *testing.T) {
	db := newTestDB(t)
	repo := NewTallyRepository(db)

	a := seedUserMeal(t, db, "u1", "A", true)
	b := seedUserMeal(t, db, "u2", "B", true)
	now := time.Now()

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Increment(context.Background(), "u1", a, now))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Increment(context.Background(), "u2", a, now))
	}
	require.NoError(t, repo.Increment(context.Background(), "u2", b, now))

	top, err := repo.TopOverall(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, a, top[0].UserMealID)
	assert.Equal(t, 5, top[0].TotalTally)
	assert.Equal(t, 1, top[1].TotalTally)
}

func seedUserMeal(t *testing.T, db *gormlib.DB, userID, title string, active bool) uint {
	t.Helper()
	m := UserMealModel{UserID: userID, Title: title, Active: active}
	require.NoError(t, db.Create(&m).Error)
	return m.ID
}

func TestCopyFromRecipeDeepCopies(t *testing.T) {
	db := newTestDB(t)
	recipes := NewRecipeRepository(db)
	meals := NewUserMealRepository(db)

	thai := seedCuisine(t, db, "Thai")
	created, err := recipes.Create(context.Background(), &meal.Recipe{
		Title:    "Laksa",
		Active:   true,
		Cuisines: []meal.Term{{ID: thai}},
	}, []meal.LineInput{{IngredientName: "Noodles", SortOrder: 1}})
	require.NoError(t, err)

	group, err := recipes.CreateGroup(context.Background(), created.ID, &meal.LineGroup{Name: "Broth"})
	require.NoError(t, err)
	_, err = recipes.Update(context.Background(), &meal.Recipe{
		ID:       created.ID,
		Title:    created.Title,
		Active:   true,
		Cuisines: []meal.Term{{ID: thai}},
	}, []meal.LineInput{{IngredientName: "Noodles", SortOrder: 1, GroupID: &group.ID}})
	require.NoError(t, err)

	full, err := recipes.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	copied, err := meals.CopyFromRecipe(context.Background(), "u1", full)
	require.NoError(t, err)

	assert.Equal(t, "u1", copied.UserID)
	require.NotNil(t, copied.RecipeID)
	assert.Equal(t, created.ID, *copied.RecipeID)
	require.Len(t, copied.Cuisines, 1)
	require.Len(t, copied.Lines, 1)
	require.Len(t, copied.Groups, 1)
	assert.Equal(t, "Broth", copied.Groups[0].Name)
	// Line points at the copied group, not the recipe's.
	require.NotNil(t, copied.Lines[0].GroupID)
	assert.Equal(t, copied.Groups[0].ID, *copied.Lines[0].GroupID)
	assert.NotEqual(t, group.ID, *copied.Lines[0].GroupID)
}

func TestSeedFromRecipesIdempotent(t *testing.T) {
	db := newTestDB(t)
	recipes := NewRecipeRepository(db)
	meals := NewUserMealRepository(db)

	var summaries []meal.Summary
	for _, title := range []string{"One", "Two", "Three"} {
		created, err := recipes.Create(context.Background(), &meal.Recipe{Title: title, Active: true}, nil)
		require.NoError(t, err)
		summaries = append(summaries, meal.Summary{ID: created.ID, Title: created.Title})
	}

	created, err := meals.SeedFromRecipes(context.Background(), "u1", summaries)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	again, err := meals.SeedFromRecipes(context.Background(), "u1", summaries)
	require.NoError(t, err)
	assert.Zero(t, again)

	count, err := meals.CountForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUserMealListerScopedToUser(t *testing.T) {
	db := newTestDB(t)
	meals := NewUserMealRepository(db)

	seedUserMeal(t, db, "u1", "Mine", true)
	seedUserMeal(t, db, "u2", "Theirs", true)

	items, total, err := meals.ForUser("u1").Page(context.Background(), "", meal.DefaultSort(), 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Mine", items[0].Title)
}

func TestTermRepositoryCRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewTermRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, outbound.TaxonomyIngredient, &meal.Term{Name: "Basil"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = repo.Create(ctx, outbound.TaxonomyIngredient, &meal.Term{Name: "Bay Leaf"})
	require.NoError(t, err)

	found, err := repo.Search(ctx, outbound.TaxonomyIngredient, "ba", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	updated, err := repo.Update(ctx, outbound.TaxonomyIngredient, &meal.Term{ID: created.ID, Name: "Thai Basil"})
	require.NoError(t, err)
	assert.Equal(t, "Thai Basil", updated.Name)

	require.NoError(t, repo.Delete(ctx, outbound.TaxonomyIngredient, created.ID))
	_, err = repo.GetByID(ctx, outbound.TaxonomyIngredient, created.ID)
	require.Error(t, err)

	// Ingredient table is isolated from other taxonomies.
	cuisines, err := repo.List(ctx, outbound.TaxonomyCuisine)
	require.NoError(t, err)
	assert.Empty(t, cuisines)
}
