package scheduler

import (
	"context"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// NAVRefresher is implemented by service.SnapshotService.
type NAVRefresher interface {
	RefreshNAV(ctx context.Context) (model.OperationResult, error)
}

// NAVRefreshJob asks upstream for fresh NAVs and reloads the snapshot.
type NAVRefreshJob struct {
	refresher NAVRefresher
}

func NewNAVRefreshJob(refresher NAVRefresher) *NAVRefreshJob {
	return &NAVRefreshJob{refresher: refresher}
}

func (j *NAVRefreshJob) Name() string { return "nav_refresh" }

func (j *NAVRefreshJob) Run(ctx context.Context) error {
	_, err := j.refresher.RefreshNAV(ctx)
	return err
}
