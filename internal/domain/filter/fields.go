package filter

// Filters accepted by the companies routes.
var (
	Added = DateTime("added", ComparisonOps,
		WithDescription("When the entry was added; supports gt, gte, lt, lte"),
		WithExample("2022-09-15T15:53:00Z"))

	EmployeeCount = Int("employeeCount", ComparisonOps,
		WithDescription("Number of employees; supports gt, gte, lt, lte"),
		WithExample("500"))

	FoundingYear = Int("foundingYear", ComparisonOps,
		WithDescription("Founding year; supports gt, gte, lt, lte"),
		WithExample("2015"))

	Headquarters = String("headquarters", LocationOps,
		WithDescription("Company address; narrow by continent, country, state or city"),
		WithExample("Germany"))
)
