package categories

// Fixture represents a predefined set of categories for testing.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string

	// Categories returns the category names included in this fixture.
	Categories() []CategoryName
}

type fixture struct {
	name       string
	categories []CategoryName
}

func (f *fixture) Name() string               { return f.name }
func (f *fixture) Categories() []CategoryName { return f.categories }

// Predefined fixtures for common test scenarios.
var (
	// FixtureMinimal has one category per direction plus a second expense
	// category, enough for ranking to have a choice.
	FixtureMinimal Fixture = &fixture{
		name: "Minimal",
		categories: []CategoryName{
			CategoryFood,
			CategoryTransport,
			CategorySalary,
		},
	}

	// FixtureStandard is the everyday set most pipeline tests use.
	FixtureStandard Fixture = &fixture{
		name: "Standard",
		categories: []CategoryName{
			CategoryFood,
			CategoryTransport,
			CategoryShopping,
			CategoryBills,
			CategoryEntertainment,
			CategorySalary,
			CategoryBonus,
		},
	}

	// FixtureComprehensive has every known category.
	FixtureComprehensive Fixture = &fixture{
		name: "Comprehensive",
		categories: []CategoryName{
			CategoryFood,
			CategoryTransport,
			CategoryShopping,
			CategoryBills,
			CategoryHousing,
			CategoryPets,
			CategoryHealth,
			CategoryEducation,
			CategoryEntertainment,
			CategorySalary,
			CategoryBonus,
			CategoryOtherIncome,
		},
	}
)

// CompositeFixture combines fixtures, keeping the first occurrence of each
// name.
type CompositeFixture struct {
	name     string
	fixtures []Fixture
}

// NewCompositeFixture creates a fixture that combines multiple fixtures.
func NewCompositeFixture(name string, fixtures ...Fixture) Fixture {
	return &CompositeFixture{name: name, fixtures: fixtures}
}

// Name implements Fixture.
func (c *CompositeFixture) Name() string { return c.name }

// Categories implements Fixture.
func (c *CompositeFixture) Categories() []CategoryName {
	seen := make(map[CategoryName]struct{})
	var categories []CategoryName

	for _, f := range c.fixtures {
		for _, cat := range f.Categories() {
			if _, exists := seen[cat]; !exists {
				seen[cat] = struct{}{}
				categories = append(categories, cat)
			}
		}
	}
	return categories
}
