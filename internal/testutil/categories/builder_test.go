package categories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/testutil"
	"github.com/Veraticus/spice-talk/internal/testutil/categories"
)

func TestBuilder_WithCategory(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithCategory(categories.CategoryFood)
	})

	cat, err := db.Storage.GetCategoryByName(context.Background(), "Ăn uống")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeExpense, cat.Type)

	all, err := db.Storage.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1, "seeded defaults are cleared")
}

func TestBuilder_KnownIncomeTypes(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithFixture(categories.FixtureComprehensive)
	})

	require.Len(t, db.Categories, len(categories.FixtureComprehensive.Categories()))
	assert.Equal(t, model.CategoryTypeIncome, db.MustGetCategory(categories.CategorySalary).Type)
	assert.Equal(t, model.CategoryTypeIncome, db.MustGetCategory(categories.CategoryOtherIncome).Type)
	assert.Equal(t, model.CategoryTypeExpense, db.MustGetCategory(categories.CategoryPets).Type)
}

func TestBuilder_CustomCategories(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.
			WithBasicCategories().
			WithCategory("Quà tặng").
			WithIncomeCategory("Cho thuê nhà")
	})

	assert.Equal(t, []string{"Ăn uống", "Di chuyển", "Lương", "Quà tặng", "Cho thuê nhà"}, db.Categories.Names())
	assert.Equal(t, model.CategoryTypeExpense, db.MustGetCategory("Quà tặng").Type)
	assert.Equal(t, model.CategoryTypeIncome, db.MustGetCategory("Cho thuê nhà").Type)
}

func TestBuilder_Deduplicates(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.
			WithCategories(categories.CategoryFood, categories.CategoryFood).
			WithFixture(categories.FixtureMinimal)
	})

	assert.Len(t, db.Categories, 3)
}

func TestBuildMap(t *testing.T) {
	db := testutil.SetupTestDB(t)

	m, err := categories.NewBuilder(t).
		WithFixture(categories.FixtureStandard).
		BuildMap(context.Background(), db.Storage)
	require.NoError(t, err)

	assert.Len(t, m, len(categories.FixtureStandard.Categories()))
	bonus := m.MustGet(t, categories.CategoryBonus)
	assert.Equal(t, model.CategoryTypeIncome, bonus.Type)
}

func TestCompositeFixture(t *testing.T) {
	f := categories.NewCompositeFixture("Mixed", categories.FixtureMinimal, categories.FixtureStandard)

	names := f.Categories()
	assert.Equal(t, "Mixed", f.Name())
	assert.Equal(t, categories.FixtureMinimal.Categories(), names[:3])
	assert.Len(t, names, len(categories.FixtureStandard.Categories()))
}

func TestSetupTestDB_History(t *testing.T) {
	db := testutil.SetupTestDB(t, categories.CategoryFood, categories.CategorySalary)
	food := db.MustGetCategory(categories.CategoryFood)

	when := time.Now().Add(-time.Hour)
	db.SaveHistory(
		model.Transaction{ID: "a", Date: when, Note: "phở", Amount: 50000, Direction: model.DirectionOut, CategoryID: food.ID},
		model.Transaction{ID: "b", Date: when, Note: "cơm", Amount: 40000, Direction: model.DirectionOut, CategoryID: food.ID},
	)

	freqs, err := db.Storage.CategoryFrequencies(context.Background(), when.Add(-time.Hour), model.DirectionOut)
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryFrequency{{CategoryID: food.ID, Count: 2}}, freqs)
}
