package facts

// FactDefinition is static metadata about one available fact, consumed by
// rule-builder UIs to offer fact pickers and operator dropdowns.
type FactDefinition struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	ValueType string   `json:"valueType"` // string, number, boolean, array
	Operators []string `json:"operators"`
	Category  string   `json:"category"`
}

var (
	stringOperators = []string{
		"equal", "notEqual", "in", "notIn", "contains", "startsWith",
		"endsWith", "matchesRegex", "isEmpty", "isNotEmpty", "isNull", "isNotNull",
	}
	numberOperators = []string{
		"equal", "notEqual", "greaterThan", "greaterThanInclusive",
		"lessThan", "lessThanInclusive", "isNull", "isNotNull",
	}
	hierarchyOperators = []string{"isUnder", "isNotUnder", "in", "notIn", "isEmpty", "isNotEmpty"}
)

// Catalog returns the static catalog of built-in facts. Custom attributes
// appear at evaluation time under the custom. prefix and are not listed
// here; the UI surfaces them from tenant attribute schemas instead.
func Catalog() []FactDefinition {
	return []FactDefinition{
		{Name: "email", Label: "Email", ValueType: "string", Operators: stringOperators, Category: "identity"},
		{Name: "firstName", Label: "First name", ValueType: "string", Operators: stringOperators, Category: "identity"},
		{Name: "lastName", Label: "Last name", ValueType: "string", Operators: stringOperators, Category: "identity"},
		{Name: "jobTitle", Label: "Job title", ValueType: "string", Operators: stringOperators, Category: "employment"},
		{Name: "userType", Label: "User type", ValueType: "string", Operators: stringOperators, Category: "employment"},
		{Name: "status", Label: "Status", ValueType: "string", Operators: stringOperators, Category: "employment"},
		{Name: "costCenter", Label: "Cost center", ValueType: "string", Operators: stringOperators, Category: "employment"},
		{Name: "tenureDays", Label: "Tenure (days)", ValueType: "number", Operators: numberOperators, Category: "employment"},
		{Name: "departmentId", Label: "Department", ValueType: "string", Operators: stringOperators, Category: "hierarchy"},
		{Name: "department", Label: "Department name", ValueType: "string", Operators: stringOperators, Category: "hierarchy"},
		{Name: "departmentPath", Label: "Department path", ValueType: "string", Operators: hierarchyOperators, Category: "hierarchy"},
		{Name: "departmentAncestry", Label: "Department ancestry", ValueType: "array", Operators: hierarchyOperators, Category: "hierarchy"},
		{Name: "locationId", Label: "Location", ValueType: "string", Operators: stringOperators, Category: "hierarchy"},
		{Name: "managerId", Label: "Manager", ValueType: "string", Operators: stringOperators, Category: "hierarchy"},
		{Name: "managerChain", Label: "Management chain", ValueType: "array", Operators: hierarchyOperators, Category: "hierarchy"},
	}
}
