package gateway

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/colonyops/wiz/internal/core/logging"
)

// DefaultBriefLength is the maximum brief length accepted by CreateDesignJob.
const DefaultBriefLength = 1000

// OnboardResult reports an onboarding run. ContactErr is set when the
// organization was created but the follow-up contact was not.
type OnboardResult struct {
	Organization OrganizationRecord
	Contact      *ContactRecord
	ContactErr   error
}

// Onboard creates the organization and then, best effort, its contact. A
// contact failure never undoes the organization.
func Onboard(ctx context.Context, gw OrganizationCreator, org OrganizationPayload, contact *ContactPayload) (OnboardResult, error) {
	rec, err := gw.CreateOrganization(ctx, org)
	if err != nil {
		return OnboardResult{}, Wrap("create organization", err)
	}

	res := OnboardResult{Organization: rec}
	if contact == nil || strings.TrimSpace(contact.Name) == "" {
		return res, nil
	}

	c := *contact
	c.OrganizationID = rec.ID
	crec, err := gw.CreateContact(ctx, c)
	if err != nil {
		logger := logging.Component("gateway")
		logger.Warn().Ctx(ctx).Err(err).
			Str("organization_id", rec.ID).
			Msg("organization created but contact failed")
		res.ContactErr = Wrap("create contact", err)
		return res, nil
	}

	res.Contact = &crec
	return res, nil
}

// TruncateBrief shortens text to at most max runes.
func TruncateBrief(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}
