package resumesrv

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/errx"
	"github.com/Abraxas-365/resumelens/pkg/logx"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/Abraxas-365/resumelens/recruitment/viewmodel"
	"github.com/robfig/cron/v3"
)

const MinWatchInterval = time.Second

// Watcher refreshes the selected resume on a fixed schedule while its
// analysis is in progress. Watching is opt-in; the controller itself never
// polls.
type Watcher struct {
	ctrl     *Controller
	interval time.Duration
}

func NewWatcher(ctrl *Controller, interval time.Duration) *Watcher {
	if interval < MinWatchInterval {
		interval = MinWatchInterval
	}
	return &Watcher{ctrl: ctrl, interval: interval}
}

type watchResult struct {
	vm  viewmodel.ViewModel
	err error
}

// Watch blocks until the resume reaches a terminal status, a refresh fails
// or ctx is done. Failed refreshes are not retried.
func (w *Watcher) Watch(ctx context.Context) (viewmodel.ViewModel, error) {
	if vm, done, err := settled(w.ctrl.View(), nil); done {
		return vm, err
	}

	results := make(chan watchResult, 1)
	sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	schedule := fmt.Sprintf("@every %s", w.interval)
	if _, err := sched.AddFunc(schedule, func() {
		vm, err := w.ctrl.Refresh(ctx)
		if vm, done, err := settled(vm, err); done {
			select {
			case results <- watchResult{vm: vm, err: err}:
			default:
			}
		}
	}); err != nil {
		return w.ctrl.View(), errx.Wrap(err, "invalid watch interval", errx.TypeValidation)
	}

	logx.Debug("watching resume", "resume_id", w.ctrl.View().ResumeID, "interval", w.interval)
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	select {
	case <-ctx.Done():
		return w.ctrl.View(), ctx.Err()
	case r := <-results:
		return r.vm, r.err
	}
}

// settled reports whether watching should stop after vm was produced.
func settled(vm viewmodel.ViewModel, err error) (viewmodel.ViewModel, bool, error) {
	if err != nil {
		return vm, true, err
	}
	if vm.ResumeID.IsEmpty() {
		return vm, true, resume.ErrNoResumeSelected()
	}

	switch vm.Resume.State {
	case viewmodel.StateError, viewmodel.StateUnavailable:
		return vm, true, nil
	}
	if vm.Status == nil {
		return vm, false, nil
	}
	return vm, vm.Status.Status.IsTerminal(), nil
}
