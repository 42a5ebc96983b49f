package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ringside-hq/ringside/internal/app"
)

// ReignResponse is the API representation of a title reign.
type ReignResponse struct {
	ChampionID   string  `json:"champion_id" doc:"Champion entity ID"`
	ChampionName string  `json:"champion_name" doc:"Champion ring name"`
	WonAt        string  `json:"won_at" doc:"When the reign began (ISO 8601)"`
	LostAt       *string `json:"lost_at,omitempty" doc:"When the reign ended; absent while ongoing"`
	Days         int     `json:"days" doc:"Reign length in whole days, ongoing reigns measured up to now"`
}

func toReignResponse(r app.ReignSummary) ReignResponse {
	resp := ReignResponse{
		ChampionID:   r.Champion.ID,
		ChampionName: r.ChampionName,
		WonAt:        r.WonAt.Format(timeFormat),
		Days:         r.Days,
	}
	if r.LostAt != nil {
		lost := r.LostAt.Format(timeFormat)
		resp.LostAt = &lost
	}
	return resp
}

// --- Win title ---

type WinTitleInput struct {
	ID   string `path:"id" doc:"Title entity ID"`
	Body struct {
		ChampionID string    `json:"champion_id" minLength:"1" doc:"Winning wrestler or tag team ID"`
		WonAt      time.Time `json:"won_at,omitempty" doc:"When the title changed hands; defaults to now"`
	}
}

type WinTitleOutput struct {
	Body PeriodResponse
}

// --- Vacate title ---

type VacateTitleInput struct {
	ID   string `path:"id" doc:"Title entity ID"`
	Body struct {
		VacatedAt time.Time `json:"vacated_at,omitempty" doc:"When the title was vacated; defaults to now"`
	}
}

// --- Reign queries ---

type ChampionInput struct {
	ID string `path:"id" doc:"Title entity ID"`
}

type LongestReignInput struct {
	ID string `path:"id" doc:"Title entity ID"`
}

type ChampionOutput struct {
	Body struct {
		Reign *ReignResponse `json:"reign,omitempty" doc:"Current reign; absent when the title is vacant"`
	}
}

type LongestReignOutput struct {
	Body struct {
		Reign *ReignResponse `json:"reign,omitempty" doc:"Longest reign on record; absent when the title has never been held"`
	}
}

func registerChampionship(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "win-title",
		Method:      http.MethodPost,
		Path:        "/api/v1/titles/{id}/reigns",
		Summary:     "Crown a new champion",
		Tags:        []string{"Championships"},
	}, func(ctx context.Context, input *WinTitleInput) (*WinTitleOutput, error) {
		champ, err := svc.Roster.Get(ctx, input.Body.ChampionID)
		if err != nil {
			return nil, toHumaError(err)
		}
		reign, err := svc.Championship.WinTitle(ctx, input.ID, champ.Ref(), input.Body.WonAt)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &WinTitleOutput{Body: toPeriodResponse(reign)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "vacate-title",
		Method:        http.MethodPost,
		Path:          "/api/v1/titles/{id}/vacate",
		Summary:       "Vacate the title without a successor",
		Tags:          []string{"Championships"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *VacateTitleInput) (*struct{}, error) {
		if err := svc.Championship.VacateTitle(ctx, input.ID, input.Body.VacatedAt); err != nil {
			return nil, toHumaError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-champion",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{id}/champion",
		Summary:     "Get the current champion",
		Tags:        []string{"Championships"},
	}, func(ctx context.Context, input *ChampionInput) (*ChampionOutput, error) {
		summary, err := svc.Championship.CurrentChampion(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &ChampionOutput{}
		if summary != nil {
			r := toReignResponse(*summary)
			out.Body.Reign = &r
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-longest-reign",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{id}/reigns/longest",
		Summary:     "Get the longest reign on record",
		Tags:        []string{"Championships"},
	}, func(ctx context.Context, input *LongestReignInput) (*LongestReignOutput, error) {
		summary, err := svc.Championship.LongestReigningChampion(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &LongestReignOutput{}
		if summary != nil {
			r := toReignResponse(*summary)
			out.Body.Reign = &r
		}
		return out, nil
	})
}
