package service

const (
	// Laps are fetched in batches to stay inside the 15-minute rate window
	LapSyncBatchSize = 50

	// Chart and list sizing for the TUI
	TSBChartDays          = 90
	RecentActivitiesLimit = 10

	SecondsPerMinute = 60
)
