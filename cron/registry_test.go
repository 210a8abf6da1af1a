package cron

import (
	"testing"

	"retail.GO/core/registry"
)

func TestRegisterAndJobs(t *testing.T) {
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryCron)

	ran := false
	Register("testjob", "@every 1h", func(...string) { ran = true })
	t.Cleanup(func() { Unregister("testjob") })

	jobs := Jobs()
	j, ok := jobs["testjob"]
	if !ok {
		t.Fatal("testjob not in Jobs()")
	}
	if j.Schedule != "@every 1h" {
		t.Errorf("schedule = %q, want @every 1h", j.Schedule)
	}
	j.Run()
	if !ran {
		t.Error("job func did not run")
	}
}

func TestJobsLocksRegistry(t *testing.T) {
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryCron)
	Jobs()

	defer func() {
		if recover() == nil {
			t.Error("Register after Jobs() did not panic")
		}
		registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryCron)
	}()
	Register("late", "@every 1h", func(...string) {})
}

func TestRegisterDuplicatePanics(t *testing.T) {
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryCron)
	Register("dup", "@every 1h", func(...string) {})
	t.Cleanup(func() { Unregister("dup") })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register("dup", "@every 1h", func(...string) {})
}
