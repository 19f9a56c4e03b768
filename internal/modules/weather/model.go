// README: Weather context model shared read-only across one decision cycle.
package weather

type Condition string

const (
	ConditionClear Condition = "clear"
	ConditionRain  Condition = "rain"
	ConditionSnow  Condition = "snow"
	ConditionStorm Condition = "storm"
	ConditionOther Condition = "other"
)

// Context is the ambient-conditions input to scoring. It is fetched once per
// decision cycle and shared read-only across every quote in that cycle.
type Context struct {
	Condition       Condition
	ScoreAdjustment float64

	// Degraded is set when the weather lookup failed and a neutral context
	// was substituted. The engine surfaces this in the rationale.
	Degraded bool
}

// Neutral is the fallback context used when the weather service is down.
func Neutral() Context {
	return Context{Condition: ConditionClear, ScoreAdjustment: 0, Degraded: true}
}

// Adverse reports whether the condition should penalize slow pickups.
func (c Context) Adverse() bool {
	switch c.Condition {
	case ConditionRain, ConditionSnow, ConditionStorm:
		return true
	}
	return false
}
