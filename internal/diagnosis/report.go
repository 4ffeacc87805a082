package diagnosis

// Threshold separates the two outcomes. A score equal to it is healthy.
const Threshold = 0.5

type Outcome string

const (
	Healthy  Outcome = "healthy"
	Diabetic Outcome = "diabetic"
)

func Classify(score float64) Outcome {
	if score <= Threshold {
		return Healthy
	}
	return Diabetic
}

type Report struct {
	Outcome  Outcome  `json:"outcome"`
	Score    float64  `json:"score"`
	Headline string   `json:"headline"`
	Intro    string   `json:"intro"`
	Advice   []string `json:"advice"`
	Closing  string   `json:"closing,omitempty"`
}

func NewReport(score float64) Report {
	outcome := Classify(score)
	r := Report{Outcome: outcome, Score: score}
	if outcome == Healthy {
		r.Headline = "You are healthy 🎉"
		r.Intro = "Keep up the good work! Here are evidence-based habits to maintain optimal metabolic health:"
		r.Advice = append([]string(nil), healthyAdvice...)
		return r
	}
	r.Headline = "You are Diabetic ⚠️"
	r.Intro = "Action plan to regain control:"
	r.Advice = append([]string(nil), diabeticAdvice...)
	r.Closing = "Remember, small consistent steps outperform drastic unsustainable changes."
	return r
}

var healthyAdvice = []string{
	"Stay active: aim for at least 150 minutes of moderate-intensity exercise (e.g., brisk walking, cycling) each week.",
	"Balanced plate: fill half your plate with colourful vegetables, one quarter with lean protein, and one quarter with whole-grain carbs.",
	"Limit added sugars & ultra-processed foods; they spike glucose and promote weight gain.",
	"Hydrate wisely: water or unsweetened drinks instead of sugary sodas or juices.",
	"Sleep 7–8 hours nightly: poor sleep increases insulin resistance.",
	"Stress management: practice yoga, meditation, or deep-breathing; chronic stress raises cortisol and blood sugar.",
	"Annual check-up: include fasting glucose / HbA1c to catch any early changes.",
}

var diabeticAdvice = []string{
	"Consult a diabetologist or certified diabetes educator to personalise medication and lifestyle targets.",
	"Adopt a low-GI, high-fibre diet: swap white rice/bread for brown rice, oats, and legumes; increase non-starchy veggies.",
	"Structured exercise: mix 150–300 minutes of aerobic activity with 2 days of resistance training weekly to improve insulin sensitivity.",
	"Weight management: losing just 5–7 % of body weight can markedly reduce HbA1c.",
	"Regular self-monitoring: track fasting glucose and (if prescribed) post-meal levels; keep a log for your clinician.",
	"Stay hydrated & avoid sugary drinks; choose water, soda-water with lime, or unsweetened tea.",
	"Quit smoking & limit alcohol; both impair glucose control and raise cardiovascular risk.",
	"Stress reduction: mindfulness, journaling, or counselling can blunt cortisol-driven glucose surges.",
}
