package analysis

// Params holds the engine's tuning values. Tests and alternate policies
// override fields here instead of patching engine internals.
type Params struct {
	CTLDays int // chronic load time constant, days
	ATLDays int // acute load time constant, days

	DueSoonPercent float64 // wear item flagged due_soon at or above this
	OverduePercent float64 // wear item flagged overdue at or above this

	DefaultFTP float64 // fallback when an athlete has no FTP on file

	HeadlineWindowDays int // trailing window for activity-summary aggregates
	LoadLookbackDays   int // activity fetch window for load integration
	WearLookbackDays   int // activity fetch window for wear evaluation

	ChunkSize            int // ids per repository query
	RecentActivitiesCap  int // bound on the recent-activity list per summary
}

// DefaultParams returns the engine defaults
func DefaultParams() Params {
	return Params{
		CTLDays:             42,
		ATLDays:             7,
		DueSoonPercent:      85,
		OverduePercent:      100,
		DefaultFTP:          200,
		HeadlineWindowDays:  7,
		LoadLookbackDays:    180,
		WearLookbackDays:    42,
		ChunkSize:           100,
		RecentActivitiesCap: 200,
	}
}
