package guideline

// DefaultEdition labels the built-in bullet set.
const DefaultEdition = "KDIGO 2025 Anemia in CKD"

var kdigo2025 = mustNew(DefaultEdition, []Bullet{
	{Anchor: "Recommendation 3.2.1 (CKD G5D)", Rule: "Initiate ESA when Hb is between 9.0 and 10.0 g/dL."},
	{Anchor: "Recommendation 3.3.1", Rule: "In adults, target Hb < 11.5 g/dL."},
	{Anchor: "Table 7", Rule: "Initial epoetin alfa/beta dose: 50-100 units/kg/dose, 3x/week."},
	{Anchor: "Table 7", Rule: "Initial darbepoetin dose: 0.45 mcg/kg/week or 0.75 mcg/kg every 2 weeks."},
	{Anchor: "Table 7", Rule: "Initial Mircera dose: 0.6 mcg/kg every 2 weeks."},
	{Anchor: "Practice Point 3.4.1.2", Rule: "Avoid adjusting ESA dose more frequently than every 4 weeks."},
	{Anchor: "Practice Point 3.4.1.2 Exception", Rule: "If Hb increases by > 1.0 g/dL in 2-4 weeks after initiation, reduce dose by 25-50%."},
	{Anchor: "Practice Point 3.4.1.3", Rule: "Use the lowest ESA dose to achieve and maintain Hb goals."},
	{Anchor: "Table 7 Adjustment", Rule: "If Hb rise < 1.0 g/dL over 4 weeks, increase dose (+25% or specific amount)."},
	{Anchor: "Table 7 Adjustment", Rule: "If Hb rise > 2.0 g/dL over 4 weeks, decrease dose (-25% or specific amount)."},
})

// Default returns the built-in KDIGO 2025 knowledge base.
func Default() *KnowledgeBase { return kdigo2025 }

func mustNew(edition string, bullets []Bullet) *KnowledgeBase {
	kb, err := New(edition, bullets)
	if err != nil {
		panic(err)
	}
	return kb
}
