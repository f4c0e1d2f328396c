package classifier

import "fmt"

// promptTemplate frames the task as a binary question with explicit
// inclusion and exclusion lists. The response format instruction keeps
// token usage minimal and the answer parseable.
const promptTemplate = `You are an expert analyst specializing in the insurance industry.

Based on the following content about the organization "%s", determine whether this organization operates in the INSURANCE industry.

INSURANCE industry includes:
- Insurance companies (life, health, property, casualty, auto, travel)
- Reinsurance companies
- Insurance brokers and agencies
- Insurance technology (insurtech) companies
- Mutual insurance associations
- Pension and annuity providers

NOT insurance industry:
- Banks and financial services without insurance products
- Investment and asset management firms
- Consulting firms advising insurers
- Healthcare providers and hospitals
- Government regulators
- Industry associations that do not sell insurance

Content:
%s

Is this organization in the insurance industry? Respond with ONLY "Yes" or "No".`

// BuildPrompt renders the classification prompt for an organization and
// its extracted content.
func BuildPrompt(orgName, content string) string {
	return fmt.Sprintf(promptTemplate, orgName, content)
}
