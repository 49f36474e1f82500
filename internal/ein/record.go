// File: internal/ein/record.go
package ein

import "strings"

// Run outcome statuses persisted alongside the captured artifacts.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Member is one owner of the entity. Name and OwnershipPercent are carried
// for the outcome document; the navigation only consumes the first member's
// name and phone.
type Member struct {
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Name             string `json:"name,omitempty"`
	OwnershipPercent string `json:"ownership_percent,omitempty"`
}

// Address is a mailing address in the form's own field vocabulary.
type Address struct {
	Street string `json:"mailingStreet,omitempty"`
	City   string `json:"mailingCity,omitempty"`
	State  string `json:"mailingState,omitempty"`
	Zip    string `json:"mailingZip,omitempty"`
}

// HasAny reports whether at least one address field carries a value.
func (a *Address) HasAny() bool {
	if a == nil {
		return false
	}
	return strings.TrimSpace(a.Street) != "" || strings.TrimSpace(a.City) != "" ||
		strings.TrimSpace(a.State) != "" || strings.TrimSpace(a.Zip) != ""
}

// EmployeeDetails carries the free-text activity detail used when the
// primary activity resolves to "Other".
type EmployeeDetails struct {
	Other string `json:"other,omitempty"`
}

// ThirdPartyDesignee is carried through to the outcome document only; the
// form's designee pages are answered "no" unconditionally.
type ThirdPartyDesignee struct {
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Fax        string `json:"fax,omitempty"`
	Authorized string `json:"authorized,omitempty"`
}

// LLCDetails holds the member count as received, unparsed.
type LLCDetails struct {
	NumberOfMembers string `json:"number_of_members,omitempty"`
}

// Record is the normalized description of one entity to file for. RecordID
// is the only strictly required field; every navigation input has a
// deterministic fallback supplied by Resolve.
type Record struct {
	RecordID               string              `json:"record_id"`
	FormType               string              `json:"form_type,omitempty"`
	EntityName             string              `json:"entity_name,omitempty"`
	EntityType             string              `json:"entity_type,omitempty"`
	FormationDate          string              `json:"formation_date,omitempty"`
	BusinessCategory       string              `json:"business_category,omitempty"`
	BusinessDescription    string              `json:"business_description,omitempty"`
	BusinessAddress1       string              `json:"business_address_1,omitempty"`
	BusinessAddress2       string              `json:"business_address_2,omitempty"`
	City                   string              `json:"city,omitempty"`
	ZipCode                string              `json:"zip_code,omitempty"`
	EntityState            string              `json:"entity_state,omitempty"`
	EntityStateRecordState string              `json:"entity_state_record_state,omitempty"`
	County                 string              `json:"county,omitempty"`
	TradeName              string              `json:"trade_name,omitempty"`
	CareOfName             string              `json:"care_of_name,omitempty"`
	ClosingMonth           string              `json:"closing_month,omitempty"`
	FilingRequirement      string              `json:"filing_requirement,omitempty"`
	QuarterOfFirstPayroll  string              `json:"quarter_of_first_payroll,omitempty"`
	CaseContactName        string              `json:"case_contact_name,omitempty"`
	SSN                    string              `json:"ssn_decrypted,omitempty"`
	EntityMembers          []Member            `json:"entity_members,omitempty"`
	MailingAddress         *Address            `json:"mailing_address,omitempty"`
	EmployeeDetails        *EmployeeDetails    `json:"employee_details,omitempty"`
	ThirdPartyDesignee     *ThirdPartyDesignee `json:"third_party_designee,omitempty"`
	LLCDetails             *LLCDetails         `json:"llc_details,omitempty"`
}

// Outcome is the per-run result document written to blob storage next to
// the screenshot. It embeds the input record verbatim.
type Outcome struct {
	Record
	ResponseStatus string `json:"response_status"`
}

// Resolved is the view of a record with every navigation fallback applied.
// Defaults mirror what the form operators historically filed with when a
// caller omitted a field.
type Resolved struct {
	FirstName     string
	LastName      string
	Phone         string
	SSN           string
	EntityName    string
	Street        string
	City          string
	Zip           string
	Description   string
	FormationDate string
	County        string
}

// Resolve applies per-field fallbacks: the first entity member supplies the
// responsible-party identity when present, and hard defaults cover the rest.
func (r *Record) Resolve() Resolved {
	res := Resolved{
		FirstName:     "Rob",
		LastName:      "Chuchla",
		Phone:         "2812173123",
		SSN:           "123456789",
		EntityName:    "Lane Four Capital Partners LLC",
		Street:        "3315 Cherry Ln",
		City:          "Austin",
		Zip:           "78703",
		Description:   "Any and lawful business",
		FormationDate: "2024-05-24",
		County:        "Travis",
	}
	if len(r.EntityMembers) > 0 {
		m := r.EntityMembers[0]
		if m.FirstName != "" {
			res.FirstName = m.FirstName
		}
		if m.LastName != "" {
			res.LastName = m.LastName
		}
		if m.Phone != "" {
			res.Phone = m.Phone
		}
	}
	if r.SSN != "" {
		res.SSN = r.SSN
	}
	if r.EntityName != "" {
		res.EntityName = r.EntityName
	}
	if r.BusinessAddress1 != "" {
		res.Street = r.BusinessAddress1
	}
	if r.City != "" {
		res.City = r.City
	}
	if r.ZipCode != "" {
		res.Zip = r.ZipCode
	}
	if r.BusinessDescription != "" {
		res.Description = r.BusinessDescription
	}
	if r.FormationDate != "" {
		res.FormationDate = r.FormationDate
	}
	if r.County != "" {
		res.County = r.County
	}
	return res
}

// MemberCount returns the parsed LLC member count, defaulting to 1.
func (r *Record) MemberCount() int {
	if r.LLCDetails == nil {
		return 1
	}
	return ParseMemberCount(r.LLCDetails.NumberOfMembers)
}

// StateCode returns the normalized two-letter state of formation.
func (r *Record) StateCode() string {
	return NormalizeState(r.EntityState)
}
