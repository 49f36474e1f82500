// File: internal/ein/record_test.go
package ein

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	rec := &Record{RecordID: "rec-1"}
	res := rec.Resolve()

	assert.Equal(t, "Rob", res.FirstName)
	assert.Equal(t, "Chuchla", res.LastName)
	assert.Equal(t, "2812173123", res.Phone)
	assert.Equal(t, "123456789", res.SSN)
	assert.Equal(t, "Lane Four Capital Partners LLC", res.EntityName)
	assert.Equal(t, "3315 Cherry Ln", res.Street)
	assert.Equal(t, "Austin", res.City)
	assert.Equal(t, "78703", res.Zip)
	assert.Equal(t, "Any and lawful business", res.Description)
	assert.Equal(t, "2024-05-24", res.FormationDate)
	assert.Equal(t, "Travis", res.County)
}

func TestResolvePrefersRecordValues(t *testing.T) {
	rec := &Record{
		RecordID:            "rec-2",
		EntityName:          "Blue Bonnet Trading LLC",
		BusinessAddress1:    "100 Congress Ave",
		City:                "Houston",
		ZipCode:             "77002",
		SSN:                 "987654321",
		BusinessDescription: "Retail",
		FormationDate:       "2023-01-15",
		County:              "Harris",
		EntityMembers: []Member{
			{FirstName: "Dana", LastName: "Reyes", Phone: "7135550100"},
			{FirstName: "Ignored", LastName: "Second"},
		},
	}
	res := rec.Resolve()

	assert.Equal(t, "Dana", res.FirstName)
	assert.Equal(t, "Reyes", res.LastName)
	assert.Equal(t, "7135550100", res.Phone)
	assert.Equal(t, "987654321", res.SSN)
	assert.Equal(t, "Blue Bonnet Trading LLC", res.EntityName)
	assert.Equal(t, "Harris", res.County)
}

func TestResolvePartialMemberFallsBack(t *testing.T) {
	rec := &Record{
		RecordID:      "rec-3",
		EntityMembers: []Member{{FirstName: "Dana"}},
	}
	res := rec.Resolve()
	assert.Equal(t, "Dana", res.FirstName)
	assert.Equal(t, "Chuchla", res.LastName)
	assert.Equal(t, "2812173123", res.Phone)
}

func TestMemberCount(t *testing.T) {
	assert.Equal(t, 1, (&Record{}).MemberCount())
	assert.Equal(t, 3, (&Record{LLCDetails: &LLCDetails{NumberOfMembers: "3"}}).MemberCount())
	assert.Equal(t, 1, (&Record{LLCDetails: &LLCDetails{NumberOfMembers: "many"}}).MemberCount())
}

func TestAddressHasAny(t *testing.T) {
	var nilAddr *Address
	assert.False(t, nilAddr.HasAny())
	assert.False(t, (&Address{}).HasAny())
	assert.False(t, (&Address{City: "   "}).HasAny())
	assert.True(t, (&Address{Zip: "78703"}).HasAny())
}

func TestFilingRequestValidate(t *testing.T) {
	req := &FilingRequest{EntityProcessID: "rec-1", FormType: "EIN"}
	require.NoError(t, req.Validate())

	assert.Error(t, (&FilingRequest{FormType: "EIN"}).Validate())
	assert.Error(t, (&FilingRequest{EntityProcessID: "rec-1", FormType: "SS4"}).Validate())
}

func TestFilingRequestToRecord(t *testing.T) {
	pct := 60.0
	req := &FilingRequest{
		EntityProcessID:         "rec-9",
		FormType:                "EIN",
		LegalName:               "Blue Bonnet Trading LLC",
		EntityType:              "LLC",
		StartDate:               "2023-01-15",
		PrincipalLineOfBusiness: "Retail",
		PrincipalActivity:       "General store",
		County:                  "Harris",
		ResponsibleParty: ResponsiblePartyRequest{
			FirstName: "Dana", LastName: "Reyes",
			Phone: "7135550100", SSNOrItinOrEin: "987654321",
		},
		OwnershipDetails: []OwnershipDetailRequest{
			{FirstName: "Sam", LastName: "Lee"},
			{FirstName: "dana", LastName: "REYES", OwnershipPercentage: &pct},
		},
		PhysicalAddress: PhysicalAddressRequest{
			PhysicalStreet: "100 Congress Ave",
			PhysicalCity:   "Houston",
			PhysicalState:  "Texas",
			Zip:            "77002",
		},
		MailingAddress: MailingAddressRequest{MailingStreet: "PO Box 12", MailingCity: "Houston", MailingState: "TX", MailingZip: "77001"},
		LLCDetails:     LLCDetailsRequest{NumberOfMembers: "2"},
	}

	rec := req.ToRecord()
	assert.Equal(t, "rec-9", rec.RecordID)
	assert.Equal(t, "Blue Bonnet Trading LLC", rec.EntityName)
	assert.Equal(t, "LLC", rec.EntityType)
	assert.Equal(t, "Texas", rec.EntityState)
	assert.Equal(t, "77002", rec.ZipCode)
	assert.Equal(t, "Harris", rec.County)
	assert.Equal(t, "987654321", rec.SSN)
	assert.Equal(t, "Dana Reyes", rec.CaseContactName)

	require.Len(t, rec.EntityMembers, 1)
	member := rec.EntityMembers[0]
	assert.Equal(t, "Dana", member.FirstName)
	assert.Equal(t, "7135550100", member.Phone)
	assert.Equal(t, "60", member.OwnershipPercent, "ownership matched case-insensitively by name")

	require.NotNil(t, rec.MailingAddress)
	assert.Equal(t, "PO Box 12", rec.MailingAddress.Street)

	require.NotNil(t, rec.LLCDetails)
	assert.Equal(t, "2", rec.LLCDetails.NumberOfMembers)
	assert.Equal(t, 2, rec.MemberCount())
}

func TestFilingRequestToRecordDefaults(t *testing.T) {
	req := &FilingRequest{EntityProcessID: "rec-10", FormType: "EIN"}
	rec := req.ToRecord()

	assert.Equal(t, "Limited Liability Company (LLC)", rec.EntityType)
	assert.Nil(t, rec.MailingAddress)
	assert.Nil(t, rec.LLCDetails)
	assert.Nil(t, rec.ThirdPartyDesignee)
}

func TestFlexStringAcceptsNumbersAndStrings(t *testing.T) {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary

	var d1 LLCDetailsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"numberOfMembers": 4}`), &d1))
	assert.Equal(t, FlexString("4"), d1.NumberOfMembers)

	var d2 LLCDetailsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"numberOfMembers": "7"}`), &d2))
	assert.Equal(t, FlexString("7"), d2.NumberOfMembers)

	var d3 LLCDetailsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"numberOfMembers": null}`), &d3))
	assert.Equal(t, FlexString(""), d3.NumberOfMembers)
}

func TestOutcomeJSONShape(t *testing.T) {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary

	out := Outcome{
		Record:         Record{RecordID: "rec-11", EntityName: "Acme LLC"},
		ResponseStatus: StatusSuccess,
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "rec-11", m["record_id"])
	assert.Equal(t, "success", m["response_status"])
	_, hasMailing := m["mailing_address"]
	assert.False(t, hasMailing, "empty optional sections are omitted")
}
