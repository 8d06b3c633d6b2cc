package usecase

import (
	"context"
	"time"

	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/out"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"golang.org/x/sync/errgroup"
)

// ListRequestsService реализует ListRequestsUseCase
type ListRequestsService struct {
	requests out.RequestRepository
	groups   out.GroupRepository
	loc      *time.Location
	log      *logger.Logger
}

func NewListRequestsService(requests out.RequestRepository, groups out.GroupRepository, loc *time.Location, log *logger.Logger) *ListRequestsService {
	if loc == nil {
		loc = time.UTC
	}
	return &ListRequestsService{requests: requests, groups: groups, loc: loc, log: log}
}

// ListRequests — новые первыми; отфильтрованы по Filter и правилу видимости
func (s *ListRequestsService) ListRequests(ctx context.Context, viewer auth.Viewer, filter domain.Filter) ([]in.RequestView, error) {
	var (
		requests []*domain.RideRequest
		groups   []*domain.RideGroup
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		requests, err = s.requests.List(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		groups, err = s.groups.List(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		s.log.Error(logger.Entry{
			Action:  "list_requests_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, err
	}

	byRequest := make(map[string]*domain.RideGroup, len(groups))
	for _, g := range groups {
		byRequest[g.RideRequestID] = g
	}

	views := make([]in.RequestView, 0, len(requests))
	for _, req := range requests {
		if !filter.Matches(req, viewer, s.loc) {
			continue
		}
		g := byRequest[req.ID]
		if !domain.IsVisible(g, req, viewer) {
			continue
		}
		views = append(views, buildView(req, g, viewer))
	}
	return views, nil
}

func buildView(req *domain.RideRequest, g *domain.RideGroup, viewer auth.Viewer) in.RequestView {
	v := in.RequestView{
		Request:          req,
		Group:            g,
		PricePerPerson:   domain.PricePerPerson(req.CarDetails),
		IsCreator:        req.UserID == viewer.UserID,
		EffectiveMembers: []string{req.UserID},
	}
	if g != nil {
		v.EffectiveMembers = domain.EffectiveMembers(g, req)
		v.RemainingCapacity = g.RemainingCapacity
		v.IsMember = g.HasMember(viewer.UserID)
		v.IsFull = g.IsFull()
	}
	return v
}
