// File: internal/navigator/navigator.go
// Drives the multi-page EIN application as an ordered list of steps. Each
// step is either critical (failure aborts the run) or best-effort (failure
// is logged and the run continues), mirroring how the form itself behaves:
// some pages only appear for some entity types, and some controls only
// exist in certain standardization flows.
package navigator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/einfill/internal/ein"
	"github.com/xkilldash9x/einfill/internal/interact"
)

// Submit button selectors shared by nearly every page of the form.
const (
	beginButton     = `input[type='submit'][name='submit'][value='Begin Application >>']`
	continueButton  = `input[type='submit'][value='Continue >>']`
	acceptAsEntered = `input[type='submit'][name='Submit'][value='Accept As Entered']`
)

var nonDigits = regexp.MustCompile(`\D`)

// Navigator walks a record through the application.
type Navigator struct {
	prims   *interact.Primitives
	logger  *zap.Logger
	formURL string
}

func New(prims *interact.Primitives, formURL string, logger *zap.Logger) *Navigator {
	return &Navigator{prims: prims, logger: logger, formURL: formURL}
}

// state carries the derived values shared across steps.
type state struct {
	record   *ein.Record
	resolved ein.Resolved
	category string
	// llcState is the normalized state used on the LLC members page; it
	// falls back to the record-state field when the entity state is blank.
	llcState string
}

type step struct {
	name     string
	critical bool
	when     func(*state) bool
	run      func(ctx context.Context, st *state) error
}

// Run executes the full procedure for one record. The returned error is nil
// only when every critical step succeeded; best-effort failures are logged
// and swallowed.
func (n *Navigator) Run(ctx context.Context, rec *ein.Record) error {
	llcState := rec.EntityState
	if strings.TrimSpace(llcState) == "" {
		llcState = rec.EntityStateRecordState
	}
	st := &state{
		record:   rec,
		resolved: rec.Resolve(),
		category: ein.MapEntityType(rec.EntityType),
		llcState: ein.NormalizeState(llcState),
	}

	log := n.logger.With(zap.String("record_id", rec.RecordID))
	log.Info("Starting form navigation.",
		zap.String("entity_type", rec.EntityType),
		zap.String("category", st.category),
		zap.String("state", st.llcState))

	for _, s := range n.steps() {
		if s.when != nil && !s.when(st) {
			log.Debug("Skipping step.", zap.String("step", s.name))
			continue
		}
		if err := s.run(ctx, st); err != nil {
			if s.critical {
				return fmt.Errorf("step %q failed: %w", s.name, err)
			}
			log.Warn("Best-effort step failed, continuing.",
				zap.String("step", s.name), zap.Error(err))
			continue
		}
		log.Debug("Step completed.", zap.String("step", s.name))
	}

	log.Info("Form navigation completed.")
	return nil
}

func (n *Navigator) steps() []step {
	isLLC := func(st *state) bool { return st.category == ein.CategoryLLC }
	needsSubType := func(st *state) bool {
		return st.category != ein.CategoryLLC && st.category != ein.CategoryEstate
	}
	nineStateLLC := func(st *state) bool {
		return isLLC(st) && ein.RequiresNonPartnershipConfirmation(st.llcState)
	}

	return []step{
		{
			name:     "open form",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				if err := n.prims.Page().Navigate(ctx, n.formURL); err != nil {
					return err
				}
				if err := n.prims.ClickButton(ctx, beginButton); err != nil {
					return err
				}
				return n.prims.Page().WaitVisible(ctx, "#individual-leftcontent")
			},
		},
		{
			name:     "select entity category",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				radioID := ein.CategoryRadioID(st.category)
				if radioID == "" {
					return fmt.Errorf("no category mapping for entity type %q", st.record.EntityType)
				}
				if err := n.prims.SelectRadio(ctx, radioID); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "select entity sub-type",
			critical: true,
			when:     needsSubType,
			run: func(ctx context.Context, st *state) error {
				subType := ein.MapSubType(st.record.EntityType, st.record.BusinessDescription)
				if err := n.prims.SelectRadio(ctx, ein.SubTypeRadioID(subType)); err != nil {
					return err
				}
				// The sub-type choice is followed by its own confirmation
				// page, hence the double continue.
				if err := n.prims.ClickButton(ctx, continueButton); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "confirm entity category",
			critical: true,
			when:     func(st *state) bool { return !needsSubType(st) },
			run: func(ctx context.Context, st *state) error {
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "enter llc members and state",
			critical: true,
			when:     isLLC,
			run: func(ctx context.Context, st *state) error {
				members := strconv.Itoa(st.record.MemberCount())
				if err := n.prims.FillField(ctx, "input#numbermem, input[name='numbermem']", members); err != nil {
					return err
				}
				if err := n.prims.SelectDropdownByValue(ctx, "#state", st.llcState); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "confirm non-partnership filing",
			critical: true,
			when:     nineStateLLC,
			run: func(ctx context.Context, st *state) error {
				if err := n.prims.SelectRadio(ctx, "radio_n"); err != nil {
					return err
				}
				if err := n.prims.ClickButton(ctx, continueButton); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "confirm classification",
			critical: true,
			when:     func(st *state) bool { return !nineStateLLC(st) },
			run: func(ctx context.Context, st *state) error {
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "select application reason",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				if err := n.prims.SelectRadio(ctx, "newbiz"); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "identify responsible party",
			critical: true,
			run:      n.identifyResponsibleParty,
		},
		{
			name:     "enter physical address",
			critical: true,
			run:      n.enterPhysicalAddress,
		},
		{
			name:     "enter care of name",
			critical: false,
			when:     func(st *state) bool { return st.record.CareOfName != "" },
			run: func(ctx context.Context, st *state) error {
				return n.prims.FillField(ctx, "#physicalAddressCareofName", st.record.CareOfName)
			},
		},
		{
			name:     "choose mailing address option",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				radioID := "radioAnotherAddress_n"
				if st.record.MailingAddress.HasAny() {
					radioID = "radioAnotherAddress_y"
				}
				if err := n.prims.SelectRadio(ctx, radioID); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			// The address standardization page only appears when the IRS
			// service suggests a correction.
			name:     "accept physical address as entered",
			critical: false,
			run: func(ctx context.Context, st *state) error {
				return n.prims.ClickButton(ctx, acceptAsEntered)
			},
		},
		{
			name:     "enter mailing address",
			critical: true,
			when:     func(st *state) bool { return st.record.MailingAddress.HasAny() },
			run: func(ctx context.Context, st *state) error {
				m := st.record.MailingAddress
				if err := n.prims.FillField(ctx, "#mailingAddressStreet", m.Street); err != nil {
					return err
				}
				if err := n.prims.FillField(ctx, "#mailingAddressCity", m.City); err != nil {
					return err
				}
				if err := n.prims.FillField(ctx, "#mailingAddressState", m.State); err != nil {
					return err
				}
				if err := n.prims.FillField(ctx, "#mailingAddressPostalCode", m.Zip); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "accept mailing address as entered",
			critical: false,
			when:     func(st *state) bool { return st.record.MailingAddress.HasAny() },
			run: func(ctx context.Context, st *state) error {
				return n.prims.ClickButton(ctx, acceptAsEntered)
			},
		},
		{
			name:     "enter legal name",
			critical: false,
			run: func(ctx context.Context, st *state) error {
				cleaned := ein.CleanBusinessName(st.resolved.EntityName)
				return n.prims.FillField(ctx, "input#businessOperationalLegalName", cleaned)
			},
		},
		{
			name:     "enter county",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				// The county box historically receives the normalized state
				// code, not the county name.
				return n.prims.FillField(ctx, "#businessOperationalCounty", ein.NormalizeState(st.record.EntityState))
			},
		},
		{
			name:     "select articles filed state",
			critical: false,
			run: func(ctx context.Context, st *state) error {
				value := ein.NormalizeState(st.record.County)
				if err := n.prims.SelectDropdownByValue(ctx, "#articalsFiledState", value); err == nil {
					return nil
				}
				return n.prims.SelectDropdownByValue(ctx, "#businessOperationalState", value)
			},
		},
		{
			name:     "enter trade name",
			critical: true,
			when:     func(st *state) bool { return st.record.TradeName != "" },
			run: func(ctx context.Context, st *state) error {
				return n.prims.FillField(ctx, "#businessOperationalTradeName", st.record.TradeName)
			},
		},
		{
			name:     "enter formation date",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				month, year := ein.ParseFormationDate(st.resolved.FormationDate)
				if err := n.prims.SelectDropdownByValue(ctx, "#BUSINESS_OPERATIONAL_MONTH_ID", strconv.Itoa(month)); err != nil {
					return err
				}
				return n.prims.FillField(ctx, "#BUSINESS_OPERATIONAL_YEAR_ID", strconv.Itoa(year))
			},
		},
		{
			name:     "select fiscal closing month",
			critical: false,
			when:     func(st *state) bool { return st.record.ClosingMonth != "" },
			run:      n.selectFiscalMonth,
		},
		{
			name:     "continue after business details",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "answer excise questions",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				for _, radioID := range []string{
					"radioTrucking_n",
					"radioInvolveGambling_n",
					"radioExciseTax_n",
					"radioSellTobacco_n",
					"radioHasEmployees_n",
				} {
					if err := n.prims.SelectRadio(ctx, radioID); err != nil {
						return fmt.Errorf("radio %s: %w", radioID, err)
					}
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "describe business activity",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				if err := n.prims.SelectRadio(ctx, "other"); err != nil {
					return err
				}
				if err := n.prims.ClickButton(ctx, continueButton); err != nil {
					return err
				}
				if err := n.prims.SelectRadio(ctx, "other"); err != nil {
					return err
				}
				if err := n.prims.FillField(ctx, "#pleasespecify", st.resolved.Description); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
		{
			name:     "choose letter delivery",
			critical: true,
			run: func(ctx context.Context, st *state) error {
				if err := n.prims.SelectRadio(ctx, "receiveonline"); err != nil {
					return err
				}
				return n.prims.ClickButton(ctx, continueButton)
			},
		},
	}
}

// identifyResponsibleParty fills the name and SSN boxes, trying the
// responsibleParty ids first and the applicant ids when a box is absent,
// then confirms sole responsibility.
func (n *Navigator) identifyResponsibleParty(ctx context.Context, st *state) error {
	res := st.resolved
	if err := n.fillWithFallback(ctx, "#responsiblePartyFirstName", "#applicantFirstName", res.FirstName); err != nil {
		return fmt.Errorf("first name: %w", err)
	}
	if err := n.fillWithFallback(ctx, "#responsiblePartyLastName", "#applicantLastName", res.LastName); err != nil {
		return fmt.Errorf("last name: %w", err)
	}

	ssn := nonDigits.ReplaceAllString(res.SSN, "")
	if len(ssn) < 9 {
		return fmt.Errorf("ssn has %d digits, need 9", len(ssn))
	}
	if err := n.fillWithFallback(ctx, "#responsiblePartySSN3", "#applicantSSN3", ssn[:3]); err != nil {
		return fmt.Errorf("ssn first 3: %w", err)
	}
	if err := n.fillWithFallback(ctx, "#responsiblePartySSN2", "#applicantSSN2", ssn[3:5]); err != nil {
		return fmt.Errorf("ssn middle 2: %w", err)
	}
	if err := n.fillWithFallback(ctx, "#responsiblePartySSN4", "#applicantSSN4", ssn[5:9]); err != nil {
		return fmt.Errorf("ssn last 4: %w", err)
	}

	if err := n.prims.SelectRadio(ctx, "iamsole"); err != nil {
		return err
	}
	return n.prims.ClickButton(ctx, continueButton)
}

func (n *Navigator) enterPhysicalAddress(ctx context.Context, st *state) error {
	res := st.resolved
	if err := n.prims.FillField(ctx, "#physicalAddressStreet", res.Street); err != nil {
		return err
	}
	if err := n.prims.FillField(ctx, "#physicalAddressCity", res.City); err != nil {
		return err
	}
	if err := n.prims.SelectDropdownByValue(ctx, "#physicalAddressState", ein.NormalizeState(st.record.EntityState)); err != nil {
		return err
	}
	if err := n.prims.FillField(ctx, "#physicalAddressZipCode", res.Zip); err != nil {
		return err
	}

	phone := nonDigits.ReplaceAllString(res.Phone, "")
	if len(phone) == 10 {
		if err := n.prims.FillField(ctx, "#phoneFirst3", phone[:3]); err != nil {
			return err
		}
		if err := n.prims.FillField(ctx, "#phoneMiddle3", phone[3:6]); err != nil {
			return err
		}
		if err := n.prims.FillField(ctx, "#phoneLast4", phone[6:10]); err != nil {
			return err
		}
	} else {
		n.logger.Warn("Phone number is not 10 digits, leaving phone boxes empty.",
			zap.String("record_id", st.record.RecordID), zap.Int("digits", len(phone)))
	}
	return nil
}

// selectFiscalMonth picks the fiscal closing month by its visible text, but
// only after confirming the dropdown actually offers it.
func (n *Navigator) selectFiscalMonth(ctx context.Context, st *state) error {
	month, ok := ein.NormalizeMonth(st.record.ClosingMonth)
	if !ok {
		n.logger.Warn("Unmapped closing month, skipping fiscal month selection.",
			zap.String("record_id", st.record.RecordID),
			zap.String("closing_month", st.record.ClosingMonth))
		return nil
	}
	options, err := n.prims.DropdownOptions(ctx, "#fiscalMonth")
	if err != nil {
		return err
	}
	offered := false
	for _, o := range options {
		if o == month {
			offered = true
			break
		}
	}
	if !offered {
		n.logger.Warn("Fiscal month not offered by the dropdown, skipping.",
			zap.String("record_id", st.record.RecordID),
			zap.String("month", month), zap.Strings("options", options))
		return nil
	}
	return n.prims.SelectDropdownByText(ctx, "#fiscalMonth", month)
}

func (n *Navigator) fillWithFallback(ctx context.Context, primary, fallback, value string) error {
	if err := n.prims.FillField(ctx, primary, value); err == nil {
		return nil
	} else {
		n.logger.Debug("Primary field not fillable, trying fallback.",
			zap.String("primary", primary), zap.String("fallback", fallback), zap.Error(err))
	}
	return n.prims.FillField(ctx, fallback, value)
}
