package categories

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/service"
)

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// WithCategory adds a single category to the builder.
	WithCategory(name CategoryName) Builder

	// WithCategories adds multiple categories to the builder.
	WithCategories(names ...CategoryName) Builder

	// WithIncomeCategory adds a category recorded as income.
	WithIncomeCategory(name CategoryName) Builder

	// WithBasicCategories adds the minimal set of categories commonly used in tests.
	WithBasicCategories() Builder

	// WithFixture adds categories from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the categories in the provided storage and returns them
	// in the order they were added.
	Build(ctx context.Context, storage service.CategoryStore) (Categories, error)

	// BuildMap creates categories and returns them as a map for easy lookup.
	BuildMap(ctx context.Context, storage service.CategoryStore) (CategoryMap, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategoryFood          CategoryName = "Ăn uống"
	CategoryTransport     CategoryName = "Di chuyển"
	CategoryShopping      CategoryName = "Mua sắm"
	CategoryBills         CategoryName = "Hóa đơn"
	CategoryHousing       CategoryName = "Nhà ở"
	CategoryPets          CategoryName = "Thú cưng"
	CategoryHealth        CategoryName = "Sức khỏe"
	CategoryEducation     CategoryName = "Giáo dục"
	CategoryEntertainment CategoryName = "Giải trí"
	CategorySalary        CategoryName = "Lương"
	CategoryBonus         CategoryName = "Thưởng"
	CategoryOtherIncome   CategoryName = "Thu nhập khác"
)

// incomeNames are the known names recorded as income.
var incomeNames = map[CategoryName]bool{
	CategorySalary:      true,
	CategoryBonus:       true,
	CategoryOtherIncome: true,
}

// TypeOf returns the category type a known name is created with.
func TypeOf(name CategoryName) model.CategoryType {
	if incomeNames[name] {
		return model.CategoryTypeIncome
	}
	return model.CategoryTypeExpense
}

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if c[i].Name == name.String() {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

// Names returns all category names as a slice of strings.
func (c Categories) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// CategoryMap provides O(1) lookup for categories by name.
type CategoryMap map[CategoryName]model.Category

// MustGet returns the category for the given name or fails the test.
func (m CategoryMap) MustGet(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat, ok := m[name]
	if !ok {
		t.Fatalf("category %q not found in test data", name)
	}
	return cat
}

type entry struct {
	name CategoryName
	typ  model.CategoryType
}

// categoryBuilder implements the Builder interface.
type categoryBuilder struct {
	t       *testing.T
	entries []entry
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{t: t}
}

func (b *categoryBuilder) add(name CategoryName, typ model.CategoryType) Builder {
	i := slices.IndexFunc(b.entries, func(e entry) bool { return e.name == name })
	if i >= 0 {
		b.entries[i].typ = typ
		return b
	}
	b.entries = append(b.entries, entry{name: name, typ: typ})
	return b
}

func (b *categoryBuilder) WithCategory(name CategoryName) Builder {
	return b.add(name, TypeOf(name))
}

func (b *categoryBuilder) WithCategories(names ...CategoryName) Builder {
	for _, name := range names {
		b.WithCategory(name)
	}
	return b
}

func (b *categoryBuilder) WithIncomeCategory(name CategoryName) Builder {
	return b.add(name, model.CategoryTypeIncome)
}

func (b *categoryBuilder) WithBasicCategories() Builder {
	return b.WithFixture(FixtureMinimal)
}

func (b *categoryBuilder) WithFixture(fixture Fixture) Builder {
	return b.WithCategories(fixture.Categories()...)
}

func (b *categoryBuilder) Build(ctx context.Context, storage service.CategoryStore) (Categories, error) {
	b.t.Helper()

	result := make(Categories, 0, len(b.entries))
	for _, e := range b.entries {
		cat, err := storage.CreateCategory(ctx, e.name.String(), e.typ, "", "")
		if err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", e.name, err)
		}
		result = append(result, *cat)
	}
	return result, nil
}

func (b *categoryBuilder) BuildMap(ctx context.Context, storage service.CategoryStore) (CategoryMap, error) {
	categories, err := b.Build(ctx, storage)
	if err != nil {
		return nil, err
	}

	m := make(CategoryMap, len(categories))
	for _, cat := range categories {
		m[CategoryName(cat.Name)] = cat
	}
	return m, nil
}
