package service

import "github.com/spec-kit/prioritization-service/internal/domain"

// SampleTicketInputs returns the demo seed set used by system reset and
// DSN-less runs.
func SampleTicketInputs() []TicketCreateInput {
	return []TicketCreateInput{
		{
			Text:              "Cannot access my account after password reset. Getting error 403 when trying to login. This is blocking my entire team from working.",
			CustomerTier:      domain.TierEnterprise,
			SLAHoursRemaining: 2.5,
			CustomerName:      "Sarah Johnson",
			CustomerEmail:     "sarah.johnson@acmecorp.com",
			CustomerAccountID: "ACC-ENT-10234",
		},
		{
			Text:              "Would like to know if we can upgrade our plan to include the new analytics features announced last week.",
			CustomerTier:      domain.TierBusiness,
			SLAHoursRemaining: 24.0,
			CustomerName:      "Michael Chen",
			CustomerEmail:     "mchen@techstartup.io",
			CustomerAccountID: "ACC-BUS-50891",
		},
		{
			Text:              "Dashboard loading is very slow, taking 10+ seconds. Started happening after yesterday's update.",
			CustomerTier:      domain.TierEnterprise,
			SLAHoursRemaining: 6.0,
			CustomerName:      "Emily Rodriguez",
			CustomerEmail:     "e.rodriguez@globalfinance.com",
			CustomerAccountID: "ACC-ENT-10567",
		},
		{
			Text:              "Quick question - how do I export data to CSV format? Checked docs but couldn't find it.",
			CustomerTier:      domain.TierStandard,
			SLAHoursRemaining: 48.0,
			CustomerName:      "David Park",
			CustomerEmail:     "david.park@email.com",
			CustomerAccountID: "ACC-STD-78234",
		},
		{
			Text:              "URGENT: Production system is down! All customers are affected. Need immediate assistance!",
			CustomerTier:      domain.TierEnterprise,
			SLAHoursRemaining: 1.0,
			CustomerName:      "Jessica Williams",
			CustomerEmail:     "j.williams@enterprise-solutions.com",
			CustomerAccountID: "ACC-ENT-10001",
		},
		{
			Text:              "Love the new UI update! Just wanted to provide some positive feedback. The dark mode looks great.",
			CustomerTier:      domain.TierBusiness,
			SLAHoursRemaining: 72.0,
			CustomerName:      "Robert Taylor",
			CustomerEmail:     "rtaylor@designstudio.co",
			CustomerAccountID: "ACC-BUS-52341",
		},
	}
}
