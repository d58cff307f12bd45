package segment

// Strategy is a suggested marketing action for a segment.
type Strategy struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

// Info is the catalog entry of a segment.
type Info struct {
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Strategies  []Strategy `json:"strategies"`
}

const fallbackColor = "hsl(0, 0%, 50%)"

var defaultStrategies = []Strategy{
	{
		Title:       "Analyze behavior patterns",
		Description: "Study how customers in this segment buy.",
		Examples: []string{
			"Track purchase frequency and seasonality",
			"Analyze product preferences",
			"Identify triggers for purchase decisions",
		},
	},
	{
		Title:       "Targeted engagement campaigns",
		Description: "Run campaigns built for this segment.",
		Examples: []string{
			"Segmented email campaigns",
			"Personalized offers based on behavior",
			"A/B test the messaging",
		},
	},
	{
		Title:       "Regular progress monitoring",
		Description: "Watch customers move between segments.",
		Examples: []string{
			"Monthly segment health check",
			"Track segment movement",
			"Measure campaign effectiveness",
		},
	},
}

var catalog = map[Segment]Info{
	Champions: {
		Description: "Best customers, highest frequency and spend",
		Color:       "hsl(0, 0%, 0%)",
		Strategies: []Strategy{
			{
				Title:       "Exclusive benefits and early access",
				Description: "Give them first access to new products, private events and exclusive promotions.",
				Examples:    []string{"Pre-launch access to new collections", "VIP event or private sale invitations", "Priority delivery"},
			},
			{
				Title:       "VIP program with dedicated rewards",
				Description: "A tier with benefits other customers cannot get.",
				Examples:    []string{"Higher reward point multiplier", "Birthday or anniversary rewards", "Limited edition products"},
			},
			{
				Title:       "Brand ambassador and referral program",
				Description: "Turn their word of mouth into referrals.",
				Examples:    []string{"Referral rewards for them and their friends", "User generated content campaign", "Review rewards"},
			},
		},
	},
	LoyalCustomers: {
		Description: "Regular customers with consistent purchases",
		Color:       "hsl(45, 93%, 47%)",
		Strategies: []Strategy{
			{
				Title:       "Loyalty program",
				Description: "Consistent but not yet Champions. Keep them with a loyalty program.",
				Examples:    []string{"Tiered loyalty program", "Milestone rewards on the 10th and 20th purchase", "Member exclusive discounts"},
			},
			{
				Title:       "Personalized recommendations",
				Description: "Use their purchase history to recommend relevant products.",
				Examples:    []string{"Recommendation emails", "Replenishment reminders", "Bundles that complement past purchases"},
			},
			{
				Title:       "Upgrade path to Champions",
				Description: "Give a clear incentive to reach the Champions tier.",
				Examples:    []string{"Explain the Champions benefits", "Limited time upgrade promotion", "Progress tracker"},
			},
		},
	},
	AtRisk: {
		Description: "Previously active customers drifting away",
		Color:       "hsl(354, 100%, 50%)",
		Strategies: []Strategy{
			{
				Title:       "Win-back campaign with special offers",
				Description: "They are drifting away and need immediate action.",
				Examples:    []string{"Personal discount code with a deadline", "\"We miss you\" email with an offer", "Free gift with the next purchase"},
			},
			{
				Title:       "Survey their pain points",
				Description: "Find out why they are leaving.",
				Examples:    []string{"Short survey with an incentive", "Personal outreach by email or phone", "Review request with follow-up"},
			},
			{
				Title:       "Re-engagement email series",
				Description: "An automated sequence that rebuilds the relationship.",
				Examples:    []string{"Progressively stronger offers", "Testimonials email", "Last chance email before list removal"},
			},
		},
	},
	RecentCustomers: {
		Description: "Customers who purchased recently",
		Color:       "hsl(0, 0%, 80%)",
	},
	Lost: {
		Description: "Customers who have not purchased for a long time",
		Color:       "hsl(0, 0%, 60%)",
		Strategies: []Strategy{
			{
				Title:       "Aggressive win-back offers",
				Description: "They stopped buying long ago and need a stronger approach.",
				Examples:    []string{"High value discount or BOGO offer", "Store credit or voucher", "Clearance sale access"},
			},
			{
				Title:       "Investigate churn reasons",
				Description: "Understand why they left to prevent future churn.",
				Examples:    []string{"Exit survey with an incentive", "Competitor analysis", "Product audit based on feedback"},
			},
			{
				Title:       "Evaluate re-engagement worth",
				Description: "Spend the effort on the high value ones only.",
				Examples:    []string{"Compute customer lifetime value", "Rank by past purchase value", "Archive inactive customers"},
			},
		},
	},
	NeedAttention: {
		Description: "Customers who need special attention",
		Color:       "hsl(0, 0%, 50%)",
	},
	PotentialLoyalists: {
		Description: "New customers with the potential to become loyal",
		Color:       "hsl(0, 0%, 40%)",
	},
	CantLoseThem: {
		Description: "Valuable customers becoming inactive",
		Color:       "hsl(45, 93%, 60%)",
	},
	BigSpenders: {
		Description: "Customers with high transaction value",
		Color:       "hsl(0, 0%, 20%)",
	},
}

// Describe returns the catalog entry of s. Segments without their own
// strategies get the default ones; Unknown gets a generic description.
func Describe(s Segment) Info {
	info, ok := catalog[s]
	if !ok {
		info = Info{Description: "Customer segment based on RFM analysis", Color: fallbackColor}
	}
	if len(info.Strategies) == 0 {
		info.Strategies = defaultStrategies
	}
	return info
}

// Color returns the chart color of s.
func (s Segment) Color() string {
	return Describe(s).Color
}
