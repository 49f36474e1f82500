// File: internal/ein/mapping.go
// Static lookup tables translating free-text business attributes into the
// form's internal radio and option identifiers. Every function here is
// total: unmapped input resolves to an explicit default, never an error.
package ein

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entity categories as the form names them on its first classification page.
const (
	CategorySoleProprietor = "Sole Proprietor"
	CategoryPartnership    = "Partnership"
	CategoryCorporation    = "Corporations"
	CategoryLLC            = "Limited Liability Company (LLC)"
	CategoryEstate         = "Estate"
	CategoryTrust          = "Trusts"
	CategoryAdditional     = "View Additional Types, Including Tax-Exempt and Governmental Organizations"
)

// Sub-types the form offers on its second classification page.
const (
	SubTypeNonProfit = "Non-Profit/Tax-Exempt Organization"
	SubTypeOther     = "Other"
)

var stateAbbreviations = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID",
	"ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS",
	"KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD",
	"MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS",
	"MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY",
	"NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK",
	"OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC",
	"SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT",
	"VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY", "DISTRICT OF COLUMBIA": "DC",
}

var entityTypeCategories = map[string]string{
	"Sole Proprietorship":                           CategorySoleProprietor,
	"Individual":                                    CategorySoleProprietor,
	"Partnership":                                   CategoryPartnership,
	"Joint venture":                                 CategoryPartnership,
	"Limited Partnership":                           CategoryPartnership,
	"General Partnership":                           CategoryPartnership,
	"C-Corporation":                                 CategoryCorporation,
	"S-Corporation":                                 CategoryCorporation,
	"Professional Corporation":                      CategoryCorporation,
	"Corporation":                                   CategoryCorporation,
	"Non-Profit Corporation":                        CategoryAdditional,
	"Limited Liability":                             CategoryLLC,
	"Company (LLC)":                                 CategoryLLC,
	"LLC":                                           CategoryLLC,
	"Limited Liability Company":                     CategoryLLC,
	"Limited Liability Company (LLC)":               CategoryLLC,
	"Professional Limited Liability Company":        CategoryLLC,
	"Limited Liability Partnership":                 CategoryPartnership,
	"LLP":                                           CategoryPartnership,
	"Professional Limited Liability Company (PLLC)": CategoryLLC,
	"Association":                                   CategoryAdditional,
	"Co-Ownership":                                  CategoryPartnership,
	"Doing Business As (DBA)":                       CategorySoleProprietor,
	"Trusteeship":                                   CategoryTrust,
}

var categoryRadioIDs = map[string]string{
	CategorySoleProprietor: "sole",
	CategoryPartnership:    "partnerships",
	CategoryCorporation:    "corporations",
	CategoryLLC:            "limited",
	CategoryEstate:         "estate",
	CategoryTrust:          "trusts",
	CategoryAdditional:     "viewadditional",
}

// entityTypeSubTypes keys on the caller's free-text entity type, not the
// mapped category; "Non-Profit Corporation" is handled in MapSubType because
// its sub-type depends on the business description.
var entityTypeSubTypes = map[string]string{
	"Sole Proprietorship":                           "Sole Proprietor",
	"Individual":                                    "Sole Proprietor",
	"Partnership":                                   "Partnership",
	"Joint venture":                                 "Joint Venture",
	"Limited Partnership":                           "Partnership",
	"General Partnership":                           "Partnership",
	"C-Corporation":                                 "Corporation",
	"S-Corporation":                                 "S Corporation",
	"Professional Corporation":                      "Personal Service Corporation",
	"Corporation":                                   "Corporation",
	"Limited Liability Partnership":                 "Partnership",
	"LLP":                                           "Partnership",
	"Co-Ownership":                                  "Partnership",
	"Trusteeship":                                   "Irrevocable Trust",
}

var subTypeRadioIDs = map[string]string{
	"Sole Proprietor":              "sole",
	"Household Employer":           "house",
	"Partnership":                  "parnership",
	"Joint Venture":                "joint",
	"Corporation":                  "corp",
	"S Corporation":                "scorp",
	"Personal Service Corporation": "personalservice",
	"Irrevocable Trust":            "irrevocable",
	SubTypeNonProfit:               "nonprofit",
	SubTypeOther:                   "other_option",
}

var monthAliases = map[string]string{
	"january": "JANUARY", "jan": "JANUARY", "1": "JANUARY",
	"february": "FEBRUARY", "feb": "FEBRUARY", "2": "FEBRUARY",
	"march": "MARCH", "mar": "MARCH", "3": "MARCH",
	"april": "APRIL", "apr": "APRIL", "4": "APRIL",
	"may": "MAY", "5": "MAY",
	"june": "JUNE", "jun": "JUNE", "6": "JUNE",
	"july": "JULY", "jul": "JULY", "7": "JULY",
	"august": "AUGUST", "aug": "AUGUST", "8": "AUGUST",
	"september": "SEPTEMBER", "sep": "SEPTEMBER", "9": "SEPTEMBER",
	"october": "OCTOBER", "oct": "OCTOBER", "10": "OCTOBER",
	"november": "NOVEMBER", "nov": "NOVEMBER", "11": "NOVEMBER",
	"december": "DECEMBER", "dec": "DECEMBER", "12": "DECEMBER",
}

// nonPartnershipLLCStates are the states for which the form inserts an
// extra confirmation page asking whether the LLC files as a partnership.
var nonPartnershipLLCStates = map[string]bool{
	"AZ": true, "CA": true, "ID": true, "LA": true, "NV": true,
	"NM": true, "TX": true, "WA": true, "WI": true,
}

var nonProfitKeywords = []string{
	"non-profit", "nonprofit", "charity", "charitable", "501(c)", "tax-exempt",
}

// NormalizeState maps a free-text state to its two-letter code. Full names
// match case- and whitespace-insensitively; an already-two-letter input
// passes through; everything else defaults to TX.
func NormalizeState(state string) string {
	if state == "" {
		return "TX"
	}
	clean := strings.ToUpper(strings.TrimSpace(state))
	if abbr, ok := stateAbbreviations[clean]; ok {
		return abbr
	}
	if len(clean) == 2 {
		return clean
	}
	return "TX"
}

// MapEntityType resolves a free-text entity type to the form's category.
// Unknown input yields the empty string; callers treat that as a mandatory
// selection failure.
func MapEntityType(entityType string) string {
	return entityTypeCategories[strings.TrimSpace(entityType)]
}

// CategoryRadioID returns the radio button id for a mapped category.
func CategoryRadioID(category string) string {
	return categoryRadioIDs[category]
}

// MapSubType resolves the form's sub-type for a free-text entity type.
// Non-profit corporations resolve to the tax-exempt sub-type only when the
// business description mentions one of the non-profit keywords; everything
// unmapped falls back to "Other".
func MapSubType(entityType, businessDescription string) string {
	entityType = strings.TrimSpace(entityType)
	if entityType == "Non-Profit Corporation" {
		desc := strings.ToLower(businessDescription)
		for _, kw := range nonProfitKeywords {
			if strings.Contains(desc, kw) {
				return SubTypeNonProfit
			}
		}
		return SubTypeOther
	}
	if sub, ok := entityTypeSubTypes[entityType]; ok {
		return sub
	}
	return SubTypeOther
}

// SubTypeRadioID returns the radio button id for a sub-type, defaulting to
// the "Other" option for anything unmapped (including "N/A").
func SubTypeRadioID(subType string) string {
	if id, ok := subTypeRadioIDs[subType]; ok {
		return id
	}
	return "other_option"
}

// NormalizeMonth maps a free-text or numeric month to the canonical name
// used by the fiscal-month dropdown. The second return is false when the
// input has no mapping.
func NormalizeMonth(month string) (string, bool) {
	canonical, ok := monthAliases[strings.ToLower(strings.TrimSpace(month))]
	return canonical, ok
}

// RequiresNonPartnershipConfirmation reports whether an LLC formed in the
// given state triggers the extra non-partnership confirmation page.
func RequiresNonPartnershipConfirmation(stateCode string) bool {
	return nonPartnershipLLCStates[stateCode]
}

var formationDateFormats = []string{"2006-01-02", "01/02/2006", "2006/01/02"}

// ParseFormationDate parses a formation date trying the supported formats
// in fixed order and returns the first successful month/year pair.
// Unparsable or empty input defaults to June 2024.
func ParseFormationDate(date string) (month, year int) {
	date = strings.TrimSpace(date)
	if date != "" {
		for _, layout := range formationDateFormats {
			if t, err := time.Parse(layout, date); err == nil {
				return int(t.Month()), t.Year()
			}
		}
	}
	return 6, 2024
}

// ParseMemberCount parses an LLC member count, defaulting non-numeric input
// to 1 and clamping anything below 1 up to 1.
func ParseMemberCount(count string) int {
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

var legalNameSuffixes = []string{"CORP", "INC", "LLC", "LC", "PLLC", "PA"}

// namePunctuation matches every character the form rejects in a legal name.
var namePunctuation = regexp.MustCompile(`[^\w\s&-]`)

// CleanBusinessName strips one trailing legal-suffix token (Corp, Inc, LLC,
// LC, PLLC, PA) from the entity name, then removes all characters except
// word characters, whitespace, hyphen and ampersand.
func CleanBusinessName(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	if len(fields) > 1 {
		last := namePunctuation.ReplaceAllString(fields[len(fields)-1], "")
		for _, suffix := range legalNameSuffixes {
			if strings.EqualFold(last, suffix) {
				fields = fields[:len(fields)-1]
				break
			}
		}
	}
	cleaned := namePunctuation.ReplaceAllString(strings.Join(fields, " "), "")
	return strings.TrimSpace(cleaned)
}
