package metrics

// Raw provider payloads. Every field is optional: the provider omits fields
// freely and the merge layer treats anything missing as "no data". These
// structs deliberately carry no validation — defensive nil checks at the
// merge boundary are the contract.

// ActivityStats is the raw daily activity payload from the provider.
// The provider reports totalSteps = 0 for days it has no real data for,
// so zero steps and a missing steps field mean the same thing.
type ActivityStats struct {
	TotalSteps          *int     `json:"totalSteps"`
	TotalKilocalories   *float64 `json:"totalKilocalories"`
	TotalDistanceMeters *float64 `json:"totalDistanceMeters"`
}

// SleepStats is the raw daily sleep payload from the provider.
type SleepStats struct {
	DailySleep *DailySleepDTO `json:"dailySleepDTO"`
}

// DailySleepDTO holds the per-stage sleep durations in seconds.
// Stage fields default to zero seconds when the provider omits them;
// sleepTimeSeconds is the gate for the whole block.
type DailySleepDTO struct {
	SleepTimeSeconds  *int `json:"sleepTimeSeconds"`
	DeepSleepSeconds  int  `json:"deepSleepSeconds"`
	LightSleepSeconds int  `json:"lightSleepSeconds"`
	RemSleepSeconds   int  `json:"remSleepSeconds"`
	AwakeSleepSeconds int  `json:"awakeSleepSeconds"`
}
