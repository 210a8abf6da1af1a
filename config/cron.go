package config

import (
	"retail.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"overduesweep":  {Schedule: "@every 15m", Job: jobs.OverdueSweepJob},
	"transferindex": {Schedule: "@every 5m", Job: jobs.TransferIndexJob},
	// Add more jobs here
}
