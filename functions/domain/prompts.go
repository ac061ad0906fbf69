package domain

import "github.com/mervel/storefront/validations"

var pagePrompts = map[string]string{
	validations.PageShippingPolicy: `You are a content writer for MERVEL, a luxury perfume brand based in Bangladesh. Write a professional, detailed Shipping Policy page in markdown format. Include:
- Domestic shipping within Bangladesh (delivery times, costs)
- International shipping options
- Order processing times
- Tracking information
- Shipping restrictions for perfumes
- Packaging and handling care
Keep the tone luxurious and professional. Use proper markdown headings (##, ###). Write in English.`,

	validations.PageReturns: `You are a content writer for MERVEL, a luxury perfume brand based in Bangladesh. Write a professional, detailed Returns & Refund Policy page in markdown format. Include:
- Return eligibility and timeframe (e.g., 7-14 days)
- Conditions for returns (unopened, sealed products)
- Refund process and timeline
- Exchange policy
- Damaged or defective items
- How to initiate a return
Keep the tone luxurious, customer-friendly and professional. Use proper markdown headings (##, ###). Write in English.`,

	validations.PageContact: `You are a content writer for MERVEL, a luxury perfume brand based in Bangladesh. Write a professional Contact Us page in markdown format. Include:
- Brand introduction (1-2 sentences)
- Email: support@mervel.com
- Phone: +880 1234-567890
- Business hours
- Social media links (Facebook, LinkedIn)
- Physical address in Bangladesh
- A warm invitation to reach out
Keep the tone luxurious and welcoming. Use proper markdown headings (##, ###). Write in English.`,
}

// PagePrompt returns the writing brief for a page type.
func PagePrompt(pageType string) (string, bool) {
	p, ok := pagePrompts[pageType]
	return p, ok
}
