package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ringside-hq/ringside/internal/app"
	"github.com/ringside-hq/ringside/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Services bundles the application services the API exposes.
type Services struct {
	Roster       *app.RosterService
	Lifecycle    *app.LifecycleService
	Membership   *app.MembershipService
	Availability *app.AvailabilityService
	Championship *app.ChampionshipService
}

// EntityResponse is the API representation of a roster entity.
type EntityResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Type      string `json:"type" doc:"Entity type"`
	Name      string `json:"name" doc:"Ring name"`
	Hometown  string `json:"hometown,omitempty" doc:"Billed hometown"`
	Status    string `json:"status" doc:"Current lifecycle status"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toEntityResponse(e domain.Entity) EntityResponse {
	return EntityResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		Name:      e.Name,
		Hometown:  e.Hometown,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt.Format(timeFormat),
		UpdatedAt: e.UpdatedAt.Format(timeFormat),
	}
}

// PeriodResponse is the API representation of one period record.
type PeriodResponse struct {
	ID          string  `json:"id" doc:"Unique identifier"`
	Kind        string  `json:"kind" doc:"Period kind"`
	Counterpart *string `json:"counterpart_id,omitempty" doc:"Related entity, if any"`
	StartedAt   string  `json:"started_at" doc:"Period start (ISO 8601)"`
	EndedAt     *string `json:"ended_at,omitempty" doc:"Period end; absent while open"`
}

func toPeriodResponse(p domain.Period) PeriodResponse {
	resp := PeriodResponse{
		ID:        p.ID,
		Kind:      string(p.Kind),
		StartedAt: p.StartedAt.Format(timeFormat),
	}
	if p.Counterpart != nil {
		id := p.Counterpart.ID
		resp.Counterpart = &id
	}
	if p.EndedAt != nil {
		ended := p.EndedAt.Format(timeFormat)
		resp.EndedAt = &ended
	}
	return resp
}

// --- Create Entity ---

type CreateEntityInput struct {
	Body struct {
		Type     string `json:"type" doc:"Entity type" enum:"wrestler,manager,referee,tag_team,stable,title"`
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Ring name"`
		Hometown string `json:"hometown,omitempty" maxLength:"255" doc:"Billed hometown"`
	}
}

type CreateEntityOutput struct {
	Body EntityResponse
}

// --- Get Entity ---

type GetEntityInput struct {
	ID string `path:"id" doc:"Entity ID"`
}

type GetEntityOutput struct {
	Body EntityResponse
}

// --- List Entities ---

type ListEntitiesInput struct {
	Type   string `query:"type" required:"false" doc:"Filter by entity type"`
	Status string `query:"status" required:"false" doc:"Filter by status"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListEntitiesOutput struct {
	Body []EntityResponse
}

// --- Transition ---

type TransitionInput struct {
	ID   string `path:"id" doc:"Entity ID"`
	Body struct {
		Event       string    `json:"event" doc:"Lifecycle event to trigger" enum:"employ,release,injure,clear_injury,suspend,reinstate,retire,unretire,activate,deactivate,disband,reunite"`
		EffectiveAt time.Time `json:"effective_at,omitempty" doc:"When the event takes effect; defaults to now. May lie in the past or future."`
	}
}

type TransitionOutput struct {
	Body EntityResponse
}

// --- Status as of ---

type StatusInput struct {
	ID   string    `path:"id" doc:"Entity ID"`
	AsOf time.Time `query:"as_of" required:"false" doc:"Instant to derive the status at; defaults to now"`
}

type StatusOutput struct {
	Body struct {
		Status string `json:"status" doc:"Status derived from the period history"`
	}
}

// --- History ---

type HistoryInput struct {
	ID string `path:"id" doc:"Entity ID"`
}

type HistoryOutput struct {
	Body []PeriodResponse
}

// --- Availability ---

type AvailabilityInput struct {
	ID   string    `path:"id" doc:"Entity ID"`
	Date time.Time `query:"date" required:"false" doc:"Event date to check; defaults to now"`
}

type AvailabilityOutput struct {
	Body struct {
		Available bool `json:"available" doc:"Whether the entity can be booked on the date"`
	}
}

// Register adds all roster API routes to the Huma API.
func Register(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-entity",
		Method:      http.MethodPost,
		Path:        "/api/v1/roster",
		Summary:     "Create a roster entity",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *CreateEntityInput) (*CreateEntityOutput, error) {
		e, err := svc.Roster.Create(ctx, domain.EntityType(input.Body.Type), input.Body.Name, input.Body.Hometown)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateEntityOutput{Body: toEntityResponse(e)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-entity",
		Method:      http.MethodGet,
		Path:        "/api/v1/roster/{id}",
		Summary:     "Get an entity by ID",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *GetEntityInput) (*GetEntityOutput, error) {
		e, err := svc.Roster.Get(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetEntityOutput{Body: toEntityResponse(e)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-entities",
		Method:      http.MethodGet,
		Path:        "/api/v1/roster",
		Summary:     "List roster entities",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *ListEntitiesInput) (*ListEntitiesOutput, error) {
		filter := domain.ListFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Type != "" {
			t := domain.EntityType(input.Type)
			filter.Type = &t
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			filter.Status = &s
		}

		entities, err := svc.Roster.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]EntityResponse, len(entities))
		for i, e := range entities {
			resp[i] = toEntityResponse(e)
		}
		return &ListEntitiesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-entity",
		Method:      http.MethodPost,
		Path:        "/api/v1/roster/{id}/transitions",
		Summary:     "Trigger a lifecycle transition",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *TransitionInput) (*TransitionOutput, error) {
		e, err := svc.Lifecycle.Apply(ctx, input.ID, domain.Event(input.Body.Event), input.Body.EffectiveAt)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionOutput{Body: toEntityResponse(e)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-entity-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/roster/{id}/status",
		Summary:     "Derive the status as of an instant",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *StatusInput) (*StatusOutput, error) {
		status, err := svc.Lifecycle.CurrentStatus(ctx, input.ID, input.AsOf)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &StatusOutput{}
		out.Body.Status = string(status)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-entity-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/roster/{id}/history",
		Summary:     "Get the full period history",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
		periods, err := svc.Roster.History(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]PeriodResponse, len(periods))
		for i, p := range periods {
			resp[i] = toPeriodResponse(p)
		}
		return &HistoryOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-entity-availability",
		Method:      http.MethodGet,
		Path:        "/api/v1/roster/{id}/availability",
		Summary:     "Check match availability on a date",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *AvailabilityInput) (*AvailabilityOutput, error) {
		available, err := svc.Availability.IsAvailable(ctx, input.ID, input.Date)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &AvailabilityOutput{}
		out.Body.Available = available
		return out, nil
	})

	registerMembership(api, svc)
	registerChampionship(api, svc)
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrEntityNotFound) {
		return huma.Error404NotFound("entity not found")
	}

	var nameErr *domain.NameConflictError
	if errors.As(err, &nameErr) {
		return huma.Error409Conflict(nameErr.Error())
	}

	var openErr *domain.OpenPeriodExistsError
	if errors.As(err, &openErr) {
		return huma.Error409Conflict(openErr.Error())
	}

	var ambErr *domain.AmbiguousMemberError
	if errors.As(err, &ambErr) {
		return huma.Error409Conflict(ambErr.Error())
	}

	var noPeriodErr *domain.NoOpenPeriodError
	if errors.As(err, &noPeriodErr) {
		return huma.Error409Conflict(noPeriodErr.Error())
	}

	var overlapErr *domain.PeriodOverlapError
	if errors.As(err, &overlapErr) {
		return huma.Error409Conflict(overlapErr.Error())
	}

	var boundsErr *domain.PeriodBoundsError
	if errors.As(err, &boundsErr) {
		return huma.Error422UnprocessableEntity(boundsErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var memberErr *domain.InvalidMemberError
	if errors.As(err, &memberErr) {
		return huma.Error422UnprocessableEntity(memberErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
