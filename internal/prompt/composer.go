// Package prompt assembles the constrained generation request for a rationale.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"kdigo-rationale-server/internal/guideline"
	"kdigo-rationale-server/internal/models"
)

// Title is the first line the generated rationale must carry.
const Title = "KDIGO-Aligned Rationale"

// Disclaimer is the literal closing sentence every rationale ends with.
const Disclaimer = "This explanation does not modify the underlying rule-based recommendation."

const preamble = `System:
You are a constrained documentation assistant. You explain rule-based outputs using KDIGO guideline language only.

Developer:
You must not provide medical advice, change values, calculate doses, or introduce new recommendations.
Treat every number in the rule outputs as a fixed fact to reference, never as something to recompute.
Cite only the KDIGO bullets listed below.`

// Composer turns validated inputs and rule output into a single prompt.
// Compose is pure: the same inputs and knowledge base always give the same bytes.
type Composer struct {
	kb *guideline.KnowledgeBase
}

func NewComposer(kb *guideline.KnowledgeBase) *Composer {
	return &Composer{kb: kb}
}

// Edition reports the guideline edition the composer grounds prompts on.
func (c *Composer) Edition() string { return c.kb.Edition() }

func (c *Composer) Compose(inputs models.PatientInputs, ruleOutput models.RuleOutput) (string, error) {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return "", fmt.Errorf("serialize inputs: %w", err)
	}
	outputJSON, err := json.Marshal(ruleOutput)
	if err != nil {
		return "", fmt.Errorf("serialize rule output: %w", err)
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\nUser:\nProvide:\n")
	fmt.Fprintf(&b, "- Structured inputs: %s\n", inputsJSON)
	fmt.Fprintf(&b, "- Deterministic rule outputs: %s\n", outputJSON)
	fmt.Fprintf(&b, "- KDIGO basis bullets (%s):\n", c.kb.Edition())
	b.WriteString(c.kb.Text())
	b.WriteString("\nOutput format:\n")
	fmt.Fprintf(&b, "Title: %q\n", Title)
	b.WriteString("4-6 concise sentences explaining WHY the rule utilized the specific KDIGO bullet points based on the patient's Hb, trend, and timing.\n")
	b.WriteString("Plain text only, no code fences.\n")
	b.WriteString("Final disclaimer line:\n")
	fmt.Fprintf(&b, "%q\n", Disclaimer)
	return b.String(), nil
}
