package usecase

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/admin/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/admin/application/ports/out"
	"github.com/spartan077/Taxi-Share/internal/admin/domain"
	rideout "github.com/spartan077/Taxi-Share/internal/ride/application/ports/out"
	ridedomain "github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"golang.org/x/sync/errgroup"
)

// OverviewService реализует OverviewUseCase
type OverviewService struct {
	requests rideout.RequestRepository
	groups   rideout.GroupRepository
	statuses out.StatusRepository
	log      *logger.Logger
}

func NewOverviewService(requests rideout.RequestRepository, groups rideout.GroupRepository, statuses out.StatusRepository, log *logger.Logger) *OverviewService {
	return &OverviewService{requests: requests, groups: groups, statuses: statuses, log: log}
}

// Overview грузит группы, запросы и отметки параллельно и склеивает их
func (s *OverviewService) Overview(ctx context.Context) ([]in.GroupOverview, error) {
	var (
		groups   []*ridedomain.RideGroup
		requests []*ridedomain.RideRequest
		statuses map[string]*domain.RideStatus
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		groups, err = s.groups.List(egCtx)
		return err
	})
	eg.Go(func() (err error) {
		requests, err = s.requests.List(egCtx)
		return err
	})
	eg.Go(func() (err error) {
		statuses, err = s.statuses.ListAll(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*ridedomain.RideRequest, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}

	out := make([]in.GroupOverview, 0, len(groups))
	for _, g := range groups {
		req, ok := byID[g.RideRequestID]
		if !ok {
			// группа удалена между двумя чтениями или осталась сиротой
			s.log.Warn(logger.Entry{
				Action:  "overview_orphan_group",
				Message: g.RideRequestID,
				GroupID: g.ID,
			})
			continue
		}
		out = append(out, in.GroupOverview{
			Group:             g,
			Request:           req,
			EffectiveMembers:  ridedomain.EffectiveMembers(g, req),
			RemainingCapacity: g.RemainingCapacity,
			PricePerPerson:    ridedomain.PricePerPerson(req.CarDetails),
			Status:            statuses[g.ID],
		})
	}
	return out, nil
}
