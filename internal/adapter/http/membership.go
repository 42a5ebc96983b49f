package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// --- Add / remove member ---

type AddMemberInput struct {
	ID   string `path:"id" doc:"Group entity ID (stable or tag team)"`
	Body struct {
		MemberID string    `json:"member_id" minLength:"1" doc:"Joining entity ID"`
		JoinedAt time.Time `json:"joined_at,omitempty" doc:"When the membership starts; defaults to now"`
	}
}

type RemoveMemberInput struct {
	ID       string    `path:"id" doc:"Group entity ID"`
	MemberID string    `path:"memberId" doc:"Leaving entity ID"`
	LeftAt   time.Time `query:"left_at" required:"false" doc:"When the membership ends; defaults to now"`
}

// --- Replace members ---

type ReplaceMembersInput struct {
	ID   string `path:"id" doc:"Group entity ID"`
	Body struct {
		MemberIDs   []string  `json:"member_ids" doc:"Desired member set; current members not listed leave the group"`
		EffectiveAt time.Time `json:"effective_at,omitempty" doc:"When the roster change takes effect; defaults to now"`
	}
}

// --- Current members ---

type ListMembersInput struct {
	ID string `path:"id" doc:"Group entity ID"`
}

type ListMembersOutput struct {
	Body []EntityResponse
}

// --- Manager assignment ---

type AssignManagerInput struct {
	ID   string `path:"id" doc:"Manager entity ID"`
	Body struct {
		ClientID  string    `json:"client_id" minLength:"1" doc:"Managed wrestler or tag team ID"`
		StartedAt time.Time `json:"started_at,omitempty" doc:"When the management starts; defaults to now"`
	}
}

type RemoveManagerInput struct {
	ID       string    `path:"id" doc:"Manager entity ID"`
	ClientID string    `path:"clientId" doc:"Managed entity ID"`
	EndedAt  time.Time `query:"ended_at" required:"false" doc:"When the management ends; defaults to now"`
}

type ListClientsInput struct {
	ID string `path:"id" doc:"Manager entity ID"`
}

type ListClientsOutput struct {
	Body []EntityResponse
}

func registerMembership(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-member",
		Method:        http.MethodPost,
		Path:          "/api/v1/groups/{id}/members",
		Summary:       "Add a member to a stable or tag team",
		Tags:          []string{"Membership"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *AddMemberInput) (*struct{}, error) {
		if err := svc.Membership.AddMember(ctx, input.ID, input.Body.MemberID, input.Body.JoinedAt); err != nil {
			return nil, toHumaError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-member",
		Method:        http.MethodDelete,
		Path:          "/api/v1/groups/{id}/members/{memberId}",
		Summary:       "Remove a member from a stable or tag team",
		Tags:          []string{"Membership"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RemoveMemberInput) (*struct{}, error) {
		if err := svc.Membership.RemoveMember(ctx, input.ID, input.MemberID, input.LeftAt); err != nil {
			return nil, toHumaError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "replace-members",
		Method:        http.MethodPut,
		Path:          "/api/v1/groups/{id}/members",
		Summary:       "Replace the member set of a stable or tag team",
		Tags:          []string{"Membership"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ReplaceMembersInput) (*struct{}, error) {
		if err := svc.Membership.ReplaceMembers(ctx, input.ID, input.Body.MemberIDs, input.Body.EffectiveAt); err != nil {
			return nil, toHumaError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-members",
		Method:      http.MethodGet,
		Path:        "/api/v1/groups/{id}/members",
		Summary:     "List the current members of a stable or tag team",
		Tags:        []string{"Membership"},
	}, func(ctx context.Context, input *ListMembersInput) (*ListMembersOutput, error) {
		members, err := svc.Membership.CurrentMembers(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]EntityResponse, len(members))
		for i, m := range members {
			resp[i] = toEntityResponse(m)
		}
		return &ListMembersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "assign-manager",
		Method:        http.MethodPost,
		Path:          "/api/v1/managers/{id}/clients",
		Summary:       "Put a wrestler or tag team under management",
		Tags:          []string{"Membership"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *AssignManagerInput) (*struct{}, error) {
		if err := svc.Membership.AssignManager(ctx, input.ID, input.Body.ClientID, input.Body.StartedAt); err != nil {
			return nil, toHumaError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-manager",
		Method:        http.MethodDelete,
		Path:          "/api/v1/managers/{id}/clients/{clientId}",
		Summary:       "End a management relationship",
		Tags:          []string{"Membership"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RemoveManagerInput) (*struct{}, error) {
		if err := svc.Membership.RemoveManager(ctx, input.ID, input.ClientID, input.EndedAt); err != nil {
			return nil, toHumaError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-clients",
		Method:      http.MethodGet,
		Path:        "/api/v1/managers/{id}/clients",
		Summary:     "List the entities a manager currently manages",
		Tags:        []string{"Membership"},
	}, func(ctx context.Context, input *ListClientsInput) (*ListClientsOutput, error) {
		clients, err := svc.Membership.CurrentClients(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]EntityResponse, len(clients))
		for i, c := range clients {
			resp[i] = toEntityResponse(c)
		}
		return &ListClientsOutput{Body: resp}, nil
	})
}
