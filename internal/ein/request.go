// File: internal/ein/request.go
// Inbound payload types and their translation into a normalized Record.
package ein

import (
	"fmt"
	"strings"
)

// FlexString accepts a JSON string or number; callers send member counts
// both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	*f = FlexString(strings.Trim(s, `"`))
	return nil
}

// ResponsiblePartyRequest identifies the person the filing is made under.
type ResponsiblePartyRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Phone          string `json:"phone"`
	SSNOrItinOrEin string `json:"ssnOrItinOrEin"`
}

// OwnershipDetailRequest is one owner as sent by the caller.
type OwnershipDetailRequest struct {
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	OwnershipPercentage *float64 `json:"ownershipPercentage"`
}

// MailingAddressRequest is the optional separate mailing address.
type MailingAddressRequest struct {
	MailingStreet string `json:"mailingStreet"`
	MailingCity   string `json:"mailingCity"`
	MailingState  string `json:"mailingState"`
	MailingZip    string `json:"mailingZip"`
}

// PhysicalAddressRequest is the entity's physical location. Zip is the key
// the upstream caller actually populates; physicalZip is carried for
// completeness but not consumed.
type PhysicalAddressRequest struct {
	PhysicalStreet string `json:"physicalStreet"`
	PhysicalCity   string `json:"physicalCity"`
	PhysicalState  string `json:"physicalState"`
	PhysicalZip    string `json:"physicalZip"`
	Zip            string `json:"Zip"`
}

// EmployeeDetailsRequest carries the free-text activity description.
type EmployeeDetailsRequest struct {
	Other string `json:"other"`
}

// ThirdPartyDesigneeRequest is accepted and echoed into the outcome.
type ThirdPartyDesigneeRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Fax        string `json:"fax"`
	Authorized string `json:"authorized"`
}

// LLCDetailsRequest holds the member count.
type LLCDetailsRequest struct {
	NumberOfMembers FlexString `json:"numberOfMembers"`
}

// FilingRequest is the inbound run payload.
type FilingRequest struct {
	EntityProcessID         string                     `json:"entityProcessId"`
	FormType                string                     `json:"formType"`
	LegalName               string                     `json:"legalName"`
	EntityType              string                     `json:"entityType"`
	StartDate               string                     `json:"startDate"`
	PrincipalLineOfBusiness string                     `json:"principalLineOfBusiness"`
	PrincipalActivity       string                     `json:"principalActivity"`
	FirstWagesDate          string                     `json:"firstWagesDate"`
	County                  string                     `json:"county"`
	TradeName               string                     `json:"tradeName"`
	CareOfName              string                     `json:"careOfName"`
	ClosingMonth            string                     `json:"closingMonth"`
	FilingRequirement       string                     `json:"filingRequirement"`
	ResponsibleParty        ResponsiblePartyRequest    `json:"responsibleParty"`
	OwnershipDetails        []OwnershipDetailRequest   `json:"ownershipDetails"`
	MailingAddress          MailingAddressRequest      `json:"mailingAddress"`
	PhysicalAddress         PhysicalAddressRequest     `json:"physicalAddress"`
	EmployeeDetails         EmployeeDetailsRequest     `json:"employeeDetails"`
	ThirdPartyDesignee      ThirdPartyDesigneeRequest  `json:"thirdPartyDesignee"`
	LLCDetails              LLCDetailsRequest          `json:"llcDetails"`
}

// Validate checks the two fields every run requires.
func (req *FilingRequest) Validate() error {
	if strings.TrimSpace(req.EntityProcessID) == "" {
		return fmt.Errorf("entityProcessId is required")
	}
	if req.FormType != "EIN" {
		return fmt.Errorf("formType must be EIN, got %q", req.FormType)
	}
	return nil
}

// ToRecord maps the inbound payload into the normalized record the
// navigation consumes. The responsible party becomes the first entity
// member; when an ownership detail matches the responsible party by name,
// its ownership percentage is attached.
func (req *FilingRequest) ToRecord() *Record {
	entityType := strings.TrimSpace(req.EntityType)
	if entityType == "" {
		entityType = "Limited Liability Company (LLC)"
	}

	rp := req.ResponsibleParty
	member := Member{
		FirstName: rp.FirstName,
		LastName:  rp.LastName,
		Phone:     rp.Phone,
		Name:      strings.TrimSpace(rp.FirstName + " " + rp.LastName),
	}
	for _, od := range req.OwnershipDetails {
		if strings.EqualFold(od.FirstName, rp.FirstName) && strings.EqualFold(od.LastName, rp.LastName) {
			if od.OwnershipPercentage != nil {
				member.OwnershipPercent = fmt.Sprintf("%g", *od.OwnershipPercentage)
			}
			break
		}
	}

	rec := &Record{
		RecordID:              req.EntityProcessID,
		FormType:              req.FormType,
		EntityName:            req.LegalName,
		EntityType:            entityType,
		FormationDate:         req.StartDate,
		BusinessCategory:      req.PrincipalLineOfBusiness,
		BusinessDescription:   req.PrincipalActivity,
		BusinessAddress1:      req.PhysicalAddress.PhysicalStreet,
		City:                  req.PhysicalAddress.PhysicalCity,
		ZipCode:               req.PhysicalAddress.Zip,
		EntityState:           req.PhysicalAddress.PhysicalState,
		EntityStateRecordState: req.PhysicalAddress.PhysicalState,
		County:                req.County,
		TradeName:             req.TradeName,
		CareOfName:            req.CareOfName,
		ClosingMonth:          req.ClosingMonth,
		FilingRequirement:     req.FilingRequirement,
		QuarterOfFirstPayroll: req.FirstWagesDate,
		CaseContactName:       member.Name,
		SSN:                   rp.SSNOrItinOrEin,
		EntityMembers:         []Member{member},
	}

	mailing := Address{
		Street: req.MailingAddress.MailingStreet,
		City:   req.MailingAddress.MailingCity,
		State:  req.MailingAddress.MailingState,
		Zip:    req.MailingAddress.MailingZip,
	}
	if mailing.HasAny() {
		rec.MailingAddress = &mailing
	}

	if req.EmployeeDetails.Other != "" {
		rec.EmployeeDetails = &EmployeeDetails{Other: req.EmployeeDetails.Other}
	}
	if req.ThirdPartyDesignee != (ThirdPartyDesigneeRequest{}) {
		rec.ThirdPartyDesignee = &ThirdPartyDesignee{
			Name:       req.ThirdPartyDesignee.Name,
			Phone:      req.ThirdPartyDesignee.Phone,
			Fax:        req.ThirdPartyDesignee.Fax,
			Authorized: req.ThirdPartyDesignee.Authorized,
		}
	}
	if req.LLCDetails.NumberOfMembers != "" {
		rec.LLCDetails = &LLCDetails{NumberOfMembers: string(req.LLCDetails.NumberOfMembers)}
	}
	return rec
}
