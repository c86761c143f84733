package mining

import (
	"fmt"
	"strings"
)

// DefaultPrompt is used when a request does not carry its own prompt. It asks
// the model for structured indicator results; the worker does not parse the
// output, downstream consumers do.
const DefaultPrompt = `
Analyze the provided document(s) and extract all results related only to these indicators:
    • "Capacity Sharing for Development"
    • "Policy Change"

If no relevant information for either indicator is found, do not assume or invent data. Instead, return a JSON object with an empty array of results, like this:

{
    "results": []
}

Instructions for Each Identified Result

1. Indicator Type

Determine whether the result is one of the following:

Capacity Sharing for Development
    • Involves individual and group activities and engagement aimed at changing knowledge, attitudes, skills, or practices.
    • The main goal is to capture gender composition and the number of people trained long-term or short-term (including Masters' and PhD students).
    • Possible keywords: "capacity", "capacity sharing", "capacity building", "training", "trained", "trainee", "workshop", "webinar", "attendance", "participants", "male", "female", "learning", "mentored", "seminar", "conference", "e-learning", "degree", "masters", "university", "bachelor".

Policy Change
    • Refers to the introduction or modification of policies, strategies, or regulations addressing specific issues.
    • Must show measurable impacts or outcomes aligned with the project/organization's goals.

2. General Information Fields

Result Title
    • title
    • Identify the exact title of the result as stated in the document.

Result Description
    • description
    • Provide a brief description of the result.

Keywords
    • keywords
    • List relevant keywords in lowercase, as an array of strings.

Geoscope (Geographical Scope)
    • geoscope
For each result, specify:
    • level: "Global", "Regional", "National", "Sub-national", or "This is yet to be determined"
    • sub_list:
        • If level = "Regional", return an array with the appropriate UN49 code(s).
        • If level = "National", return an array with the ISO Alpha-2 country code(s) (e.g., ["KE"]).
        • If level = "Sub-national", return an array of objects, each containing the country code and an array of subnational areas.
        • If not applicable, set "sub_list": null.

3. Additional Requirements for "Capacity Sharing for Development"

Training Type
    • training_type: "Individual training" or "Group training"
    • For "Group training", extract participant counts (total, male, female, non_binary); use "Not collected" for any count the document does not provide, and never invent additional participants.
    • start_date and end_date should capture the training period in YYYY-MM-DD format; length_of_training is the time elapsed between them. Long-term training goes for 3 or more months.

4. Additional Requirements for "Policy Change"

Policy Type
    • policy_type: "Policy or Strategy", "Legal instrument", or "Program, Budget, or Investment"
    • Include stage_in_policy_process and evidence_for_stage when stated.

Return one JSON object: {"results": [ ... ]} with one entry per identified result. Output JSON only, no commentary.
`

// BuildQuery merges the retrieved context with the caller's question into the
// generation request.
func BuildQuery(contextRecords []string, prompt string) string {
	return fmt.Sprintf("Based on this context:\n%s\n\nAnswer the question:\n%s",
		strings.Join(contextRecords, "\n"), prompt)
}
