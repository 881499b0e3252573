package catalog

import (
	"github.com/shopspring/decimal"
)

// Role is the meaning assigned to a CSV column through its header.
type Role int

const (
	RoleProduct Role = iota
	RolePrice
	RoleWeight
)

// Roles lists every role in column-resolution order.
var Roles = []Role{RoleProduct, RolePrice, RoleWeight}

func (r Role) String() string {
	switch r {
	case RoleProduct:
		return "product"
	case RolePrice:
		return "price"
	case RoleWeight:
		return "weight"
	default:
		return "unknown"
	}
}

// NotFound marks a role that no header resolved to.
const NotFound = -1

// HeaderRoles maps each role to its zero-based column position.
type HeaderRoles struct {
	Product int
	Price   int
	Weight  int
}

// Index returns the column position of r, or NotFound.
func (h HeaderRoles) Index(r Role) int {
	switch r {
	case RoleProduct:
		return h.Product
	case RolePrice:
		return h.Price
	case RoleWeight:
		return h.Weight
	default:
		return NotFound
	}
}

// Missing returns the roles without a column.
func (h HeaderRoles) Missing() []Role {
	var missing []Role
	for _, r := range Roles {
		if h.Index(r) == NotFound {
			missing = append(missing, r)
		}
	}
	return missing
}

// Resolved reports whether all three roles have a column.
func (h HeaderRoles) Resolved() bool {
	return len(h.Missing()) == 0
}

// width is the minimum number of cells a row needs to cover every role.
func (h HeaderRoles) width() int {
	return max(h.Product, h.Price, h.Weight) + 1
}

// Record is one product line parsed from a price list.
type Record struct {
	Name       string
	Price      decimal.Decimal
	Weight     decimal.Decimal // kilograms, always > 0
	SourceFile string
	PricePerKg decimal.Decimal
}

// SkippedFile is a candidate file that contributed no records.
type SkippedFile struct {
	File   string
	Reason string
}

// LoadResult summarizes one call to Engine.Load.
type LoadResult struct {
	RunID       string
	Dir         string
	Files       []string      // files whose rows were added
	Skipped     []SkippedFile // files dropped entirely
	Records     int           // records appended to the catalog
	RowsSkipped int           // rows dropped, silent or not
	Diagnostics []Diagnostic
}

// Summary is a cumulative view over every load of an engine.
type Summary struct {
	Files         []string
	Skipped       []SkippedFile
	Records       int
	MaxNameLength int
	Diagnostics   []Diagnostic
}
