package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// synonyms lists the accepted header names per role.
// Headers are compared after trimming, NFC normalization and case folding.
var synonyms = map[Role][]string{
	RoleProduct: {"название", "продукт", "товар", "наименование"},
	RolePrice:   {"цена", "розница"},
	RoleWeight:  {"фасовка", "масса", "вес"},
}

// roleBySynonym maps a folded header to its role. Built once at init.
var roleBySynonym = buildSynonymIndex(synonyms)

func buildSynonymIndex(src map[Role][]string) map[string]Role {
	idx := make(map[string]Role)
	for role, names := range src {
		for _, name := range names {
			idx[normalizeHeader(name)] = role
		}
	}
	return idx
}

// Synonyms returns a copy of the header names accepted for r.
func Synonyms(r Role) []string {
	return append([]string(nil), synonyms[r]...)
}

// normalizeHeader folds a header for comparison.
func normalizeHeader(h string) string {
	return fold(strings.TrimSpace(h))
}

// fold returns the NFC, case-folded form of s.
// A Caser is stateful, so a fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// ResolveHeaders returns the column position of each role.
// The leftmost header matching a role wins; roles with no matching header
// are set to NotFound.
func ResolveHeaders(headers []string) HeaderRoles {
	roles := HeaderRoles{Product: NotFound, Price: NotFound, Weight: NotFound}

	for i, h := range headers {
		role, ok := roleBySynonym[normalizeHeader(h)]
		if !ok {
			continue
		}
		switch role {
		case RoleProduct:
			if roles.Product == NotFound {
				roles.Product = i
			}
		case RolePrice:
			if roles.Price == NotFound {
				roles.Price = i
			}
		case RoleWeight:
			if roles.Weight == NotFound {
				roles.Weight = i
			}
		}
	}

	return roles
}
