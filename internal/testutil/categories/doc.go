// Package categories provides test infrastructure for seeding the user's
// categories: strongly-typed Vietnamese category names, a fluent builder and
// predefined fixtures.
//
// # Basic Usage
//
//	func TestMyFeature(t *testing.T) {
//		db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//			return b.WithBasicCategories()
//		})
//
//		// db.Storage now holds exactly the basic set.
//	}
//
// # Fixtures
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithFixture(categories.FixtureStandard)
//	})
//
// # Custom Categories
//
// Names without a known type are created as expense categories unless added
// with WithIncomeCategory:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.
//			WithCategory(categories.CategoryFood).
//			WithCategory("Quà tặng").
//			WithIncomeCategory("Cho thuê nhà")
//	})
//
//	food := db.Categories.MustFind(t, categories.CategoryFood)
//
// Each test gets its own in-memory database, so builders are never shared
// between tests.
package categories
