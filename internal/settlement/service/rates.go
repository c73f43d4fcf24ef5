package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/smallbiznis/revshare/internal/partner/domain"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
)

type resolvedRate struct {
	Percent     float64
	AgreementID *snowflake.ID
	Source      string
}

// resolveRate returns the revenue-share percentage in force for the partner at
// the attribution instant. The directory resolves overlapping agreement
// windows to the most recently starting one; with no agreement in force the
// partner's default rate applies.
func (s *Service) resolveRate(ctx context.Context, partner *partnerdomain.Partner, at time.Time) (resolvedRate, error) {
	agreement, err := s.partners.FindAgreementAt(ctx, partner.ID, at)
	if err != nil {
		return resolvedRate{}, err
	}
	if agreement != nil {
		agreementID := agreement.ID
		return resolvedRate{
			Percent:     agreement.SharePercent,
			AgreementID: &agreementID,
			Source:      settlementdomain.RateSourceAgreement,
		}, nil
	}
	return resolvedRate{
		Percent: partner.DefaultSharePercent,
		Source:  settlementdomain.RateSourceDefault,
	}, nil
}
