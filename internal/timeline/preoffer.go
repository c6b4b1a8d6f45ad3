package timeline

// PreOfferBuyer returns the fixed buyer checklist shown before an offer is
// accepted.
func PreOfferBuyer() []Step {
	return []Step{
		{
			Title:       "Complete Profile",
			Description: "Fill in your details and verify your identity",
			Icon:        "user",
			Status:      StatusCompleted,
		},
		{
			Title:       "Mortgage in Principle",
			Description: "Obtain a mortgage in principle from your lender",
			Icon:        "piggy-bank",
			Status:      StatusPending,
		},
		{
			Title:       "Schedule Viewing",
			Description: "Book a viewing for properties you're interested in",
			Icon:        "calendar",
			Status:      StatusPending,
		},
		{
			Title:       "Attend Viewing",
			Description: "Visit and evaluate the property",
			Icon:        "eye",
			Status:      StatusPending,
		},
		{
			Title:       "Make an Offer",
			Description: "Submit your offer for the property",
			Icon:        "handshake",
			Status:      StatusPending,
		},
		{
			Title:       "Offer Accepted",
			Description: "Your offer has been accepted by the seller",
			Icon:        "check-circle-2",
			Status:      StatusPending,
		},
	}
}

// PreOfferSeller returns the fixed seller checklist shown before an offer is
// accepted.
func PreOfferSeller() []Step {
	return []Step{
		{
			Title:       "Complete Profile",
			Description: "Fill in your details and verify your identity",
			Icon:        "user",
			Status:      StatusCompleted,
		},
		{
			Title:       "Property Photos",
			Description: "Upload high-quality photos of your property",
			Icon:        "camera",
			Status:      StatusCompleted,
		},
		{
			Title:       "Set Price",
			Description: "Determine your asking price based on market value",
			Icon:        "dollar-sign",
			Status:      StatusCompleted,
		},
		{
			Title:       "Property Listed",
			Description: "Your property goes live on the market",
			Icon:        "home",
			Status:      StatusCurrent,
		},
		{
			Title:       "Set Viewing Availability",
			Description: "Set your available times for property viewings",
			Icon:        "calendar",
			Status:      StatusPending,
		},
		{
			Title:       "Complete Viewings",
			Description: "Host and complete property viewings with potential buyers",
			Icon:        "home",
			Status:      StatusPending,
		},
		{
			Title:       "Receive Offers",
			Description: "Review and consider offers from potential buyers",
			Icon:        "file-text",
			Status:      StatusPending,
		},
		{
			Title:       "Accept Offer",
			Description: "Choose and accept the best offer",
			Icon:        "check-circle-2",
			Status:      StatusPending,
		},
	}
}
