package models

// Lifecycle classifies how quickly a tool's cached answer goes stale.
type Lifecycle string

const (
	LifecycleRealtime    Lifecycle = "realtime"
	LifecycleIntraday    Lifecycle = "intraday"
	LifecyclePeriodic    Lifecycle = "periodic"
	LifecycleStatic      Lifecycle = "static"
	LifecycleEventDriven Lifecycle = "event_driven"
)

// AfterHoursMode selects realtime TTL behavior outside the trading session.
type AfterHoursMode string

const (
	AfterHoursFixed     AfterHoursMode = "fixed"
	AfterHoursUntilOpen AfterHoursMode = "dynamic_until_open"
)

// ToolLifecycleDescriptor is the static freshness policy for one tool.
// Immutable for the process lifetime; owned by the lifecycle registry.
type ToolLifecycleDescriptor struct {
	Lifecycle         Lifecycle      `yaml:"lifecycle" json:"lifecycle"`
	TradingHoursTTLS  int            `yaml:"trading_hours_ttl_s" json:"trading_hours_ttl_s,omitempty"`
	AfterHoursMode    AfterHoursMode `yaml:"after_hours_mode" json:"after_hours_mode,omitempty"`
	StaticTTLS        int            `yaml:"static_ttl_s" json:"static_ttl_s,omitempty"`
	JitterPct         int            `yaml:"jitter_pct" json:"jitter_pct"`
}
