// File: internal/navigator/navigator_test.go
package navigator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/einfill/internal/browser/browsertest"
	"github.com/xkilldash9x/einfill/internal/config"
	"github.com/xkilldash9x/einfill/internal/ein"
	"github.com/xkilldash9x/einfill/internal/interact"
)

const testFormURL = "https://forms.example.test/ein/index.jsp"

func newNavigator(t *testing.T, page *browsertest.FakePage) *Navigator {
	t.Helper()
	logger := zaptest.NewLogger(t)
	prims := interact.New(page, config.BrowserConfig{ClickRetries: 2}, logger)
	return New(prims, testFormURL, logger)
}

func llcRecord() *ein.Record {
	return &ein.Record{
		RecordID:    "rec-llc",
		EntityType:  "LLC",
		EntityState: "Texas",
		EntityName:  "Blue Bonnet Trading LLC",
		LLCDetails:  &ein.LLCDetails{NumberOfMembers: "3"},
	}
}

func TestRunLLCNineStatePath(t *testing.T) {
	page := browsertest.NewFakePage()
	nav := newNavigator(t, page)

	require.NoError(t, nav.Run(context.Background(), llcRecord()))

	// Radio order is the page order of the form.
	assert.Equal(t, []string{
		"limited",
		"radio_n",
		"newbiz",
		"iamsole",
		"radioAnotherAddress_n",
		"radioTrucking_n",
		"radioInvolveGambling_n",
		"radioExciseTax_n",
		"radioSellTobacco_n",
		"radioHasEmployees_n",
		"other",
		"other",
		"receiveonline",
	}, page.SelectorsFor("radio"))

	// LLC page: member count typed, state picked by code.
	members, ok := page.ValueFor("type", "input#numbermem, input[name='numbermem']")
	require.True(t, ok)
	assert.Equal(t, "3", members)
	state, ok := page.ValueFor("select_value", "#state")
	require.True(t, ok)
	assert.Equal(t, "TX", state)

	assert.Equal(t, 1, page.Count("navigate", testFormURL))
	assert.Equal(t, 1, page.Count("click", beginButton))
	assert.Equal(t, 13, page.Count("click", continueButton))
}

func TestRunCorporationSubTypePath(t *testing.T) {
	page := browsertest.NewFakePage()
	nav := newNavigator(t, page)

	rec := &ein.Record{
		RecordID:    "rec-corp",
		EntityType:  "S-Corporation",
		EntityState: "New York",
	}
	require.NoError(t, nav.Run(context.Background(), rec))

	radios := page.SelectorsFor("radio")
	require.GreaterOrEqual(t, len(radios), 2)
	assert.Equal(t, "corporations", radios[0])
	assert.Equal(t, "scorp", radios[1])
	assert.NotContains(t, radios, "radio_n", "non-LLC entities never see the partnership confirmation")

	// No LLC members page for a corporation.
	_, filledMembers := page.ValueFor("type", "input#numbermem, input[name='numbermem']")
	assert.False(t, filledMembers)

	assert.Equal(t, 12, page.Count("click", continueButton))
}

func TestRunUnknownEntityTypeAborts(t *testing.T) {
	page := browsertest.NewFakePage()
	nav := newNavigator(t, page)

	err := nav.Run(context.Background(), &ein.Record{RecordID: "rec-x", EntityType: "Space Agency"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select entity category")
	assert.Empty(t, page.SelectorsFor("radio"))
}

func TestRunResponsiblePartyDefaultsAndSSNSplit(t *testing.T) {
	page := browsertest.NewFakePage()
	nav := newNavigator(t, page)

	require.NoError(t, nav.Run(context.Background(), llcRecord()))

	first, _ := page.ValueFor("type", "#responsiblePartyFirstName")
	assert.Equal(t, "Rob", first)
	last, _ := page.ValueFor("type", "#responsiblePartyLastName")
	assert.Equal(t, "Chuchla", last)

	ssn3, _ := page.ValueFor("type", "#responsiblePartySSN3")
	ssn2, _ := page.ValueFor("type", "#responsiblePartySSN2")
	ssn4, _ := page.ValueFor("type", "#responsiblePartySSN4")
	assert.Equal(t, "123", ssn3)
	assert.Equal(t, "45", ssn2)
	assert.Equal(t, "6789", ssn4)

	// Default phone is 10 digits and gets split across the three boxes.
	p1, _ := page.ValueFor("type", "#phoneFirst3")
	p2, _ := page.ValueFor("type", "#phoneMiddle3")
	p3, _ := page.ValueFor("type", "#phoneLast4")
	assert.Equal(t, "281", p1)
	assert.Equal(t, "217", p2)
	assert.Equal(t, "3123", p3)
}

func TestRunApplicantFieldFallback(t *testing.T) {
	page := browsertest.NewFakePage()
	page.Errs["wait:#responsiblePartyFirstName"] = errors.New("no such element")
	page.Errs["wait:#responsiblePartyLastName"] = errors.New("no such element")
	nav := newNavigator(t, page)

	require.NoError(t, nav.Run(context.Background(), llcRecord()))

	first, ok := page.ValueFor("type", "#applicantFirstName")
	require.True(t, ok)
	assert.Equal(t, "Rob", first)
	last, ok := page.ValueFor("type", "#applicantLastName")
	require.True(t, ok)
	assert.Equal(t, "Chuchla", last)
}

func TestRunMailingAddressBranch(t *testing.T) {
	page := browsertest.NewFakePage()
	// The standardization page never shows up; every strategy fails.
	page.Errs["click:"+acceptAsEntered] = errors.New("no such element")
	page.Errs["click_script:"+acceptAsEntered] = errors.New("no such element")
	page.Errs["click_pointer:"+acceptAsEntered] = errors.New("no such element")
	nav := newNavigator(t, page)

	rec := llcRecord()
	rec.MailingAddress = &ein.Address{Street: "PO Box 12", City: "Austin", State: "TX", Zip: "78701"}
	require.NoError(t, nav.Run(context.Background(), rec), "a missing Accept As Entered page must not abort the run")

	radios := page.SelectorsFor("radio")
	assert.Contains(t, radios, "radioAnotherAddress_y")
	assert.NotContains(t, radios, "radioAnotherAddress_n")

	street, ok := page.ValueFor("type", "#mailingAddressStreet")
	require.True(t, ok)
	assert.Equal(t, "PO Box 12", street)
	zip, ok := page.ValueFor("type", "#mailingAddressPostalCode")
	require.True(t, ok)
	assert.Equal(t, "78701", zip)
}

func TestRunBusinessDetails(t *testing.T) {
	page := browsertest.NewFakePage()
	nav := newNavigator(t, page)

	rec := llcRecord()
	rec.County = "Travis"
	rec.TradeName = "Bluebonnet Goods"
	rec.FormationDate = "2023-09-14"
	require.NoError(t, nav.Run(context.Background(), rec))

	legal, ok := page.ValueFor("type", "input#businessOperationalLegalName")
	require.True(t, ok)
	assert.Equal(t, "Blue Bonnet Trading", legal, "legal suffix is stripped")

	// The county box receives the normalized state code; the articles
	// dropdown receives the normalized county.
	county, _ := page.ValueFor("type", "#businessOperationalCounty")
	assert.Equal(t, "TX", county)
	articles, _ := page.ValueFor("select_value", "#articalsFiledState")
	assert.Equal(t, "TX", articles)

	trade, _ := page.ValueFor("type", "#businessOperationalTradeName")
	assert.Equal(t, "Bluebonnet Goods", trade)

	month, _ := page.ValueFor("select_value", "#BUSINESS_OPERATIONAL_MONTH_ID")
	assert.Equal(t, "9", month)
	year, _ := page.ValueFor("type", "#BUSINESS_OPERATIONAL_YEAR_ID")
	assert.Equal(t, "2023", year)
}

func TestRunArticlesFiledStateFallback(t *testing.T) {
	page := browsertest.NewFakePage()
	page.Errs["wait:#articalsFiledState"] = errors.New("no such element")
	nav := newNavigator(t, page)

	require.NoError(t, nav.Run(context.Background(), llcRecord()))
	assert.Equal(t, 1, page.Count("select_value", "#businessOperationalState"))
}

func TestRunFiscalMonth(t *testing.T) {
	t.Run("selected when offered", func(t *testing.T) {
		page := browsertest.NewFakePage()
		page.Options["#fiscalMonth"] = []string{"JANUARY", "DECEMBER"}
		nav := newNavigator(t, page)

		rec := llcRecord()
		rec.ClosingMonth = "dec"
		require.NoError(t, nav.Run(context.Background(), rec))

		month, ok := page.ValueFor("select_text", "#fiscalMonth")
		require.True(t, ok)
		assert.Equal(t, "DECEMBER", month)
	})

	t.Run("skipped when not offered", func(t *testing.T) {
		page := browsertest.NewFakePage()
		page.Options["#fiscalMonth"] = []string{"JANUARY"}
		nav := newNavigator(t, page)

		rec := llcRecord()
		rec.ClosingMonth = "December"
		require.NoError(t, nav.Run(context.Background(), rec))
		assert.Zero(t, page.Count("select_text", "#fiscalMonth"))
	})

	t.Run("skipped on unmapped month", func(t *testing.T) {
		page := browsertest.NewFakePage()
		nav := newNavigator(t, page)

		rec := llcRecord()
		rec.ClosingMonth = "13"
		require.NoError(t, nav.Run(context.Background(), rec))
		assert.Zero(t, page.Count("options", "#fiscalMonth"))
	})
}

func TestRunCriticalFailureStopsEarly(t *testing.T) {
	page := browsertest.NewFakePage()
	page.RadioUncheckable["newbiz"] = true
	page.Errs["wait:#newbiz"] = errors.New("no such element")
	nav := newNavigator(t, page)

	err := nav.Run(context.Background(), llcRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select application reason")
	assert.Zero(t, page.Count("radio", "iamsole"), "nothing past the failed step runs")
}

func TestRunShortSSNAborts(t *testing.T) {
	page := browsertest.NewFakePage()
	nav := newNavigator(t, page)

	rec := llcRecord()
	rec.SSN = "12-34"
	err := nav.Run(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identify responsible party")
}
