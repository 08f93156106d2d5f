package server

import (
	"time"

	"loadfinder/internal/loads"
)

// Request and response payloads use the feed's dashed field names so HTTP
// callers can reuse feed records verbatim.

type filterPayload struct {
	Tag               string `json:"tag,omitempty"`
	Date              string `json:"date,omitempty"`
	OriginCity        string `json:"O-City,omitempty"`
	OriginState       string `json:"O-St,omitempty"`
	DestCity          string `json:"D-City,omitempty"`
	DestState         string `json:"D-St,omitempty"`
	MaxOriginDeadhead *int64 `json:"O-DH,omitempty"`
	MaxDestDeadhead   *int64 `json:"D-DH,omitempty"`
}

func (p filterPayload) toSpec() loads.FilterSpec {
	return loads.FilterSpec{
		Tag:               p.Tag,
		Date:              p.Date,
		OriginCity:        p.OriginCity,
		OriginState:       p.OriginState,
		DestCity:          p.DestCity,
		DestState:         p.DestState,
		MaxOriginDeadhead: p.MaxOriginDeadhead,
		MaxDestDeadhead:   p.MaxDestDeadhead,
	}
}

type ingestRequest struct {
	FeedPath  string `json:"feed_path,omitempty"`
	Overwrite bool   `json:"overwrite,omitempty"`
}

type ingestResponse struct {
	RunID    string `json:"run_id"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
}

type shortlistRequest struct {
	filterPayload
	Replace      bool `json:"replace,omitempty"`
	OnlyUnscored bool `json:"only_unscored,omitempty"`
	Limit        int  `json:"limit,omitempty"`
}

type shortlistResponse struct {
	Tag    string `json:"tag"`
	Marked int    `json:"marked"`
	Total  int    `json:"total"`
}

type scoreRequest struct {
	Tag          string `json:"tag"`
	OnlyUnscored bool   `json:"only_unscored,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type scoreResponse struct {
	Tag    string `json:"tag"`
	Scored int    `json:"scored"`
}

type queryRequest struct {
	filterPayload
	OnlyUnscored bool `json:"only_unscored,omitempty"`
	Limit        int  `json:"limit,omitempty"`
	Offset       int  `json:"offset,omitempty"`
}

type queryResponse struct {
	Count int           `json:"count"`
	Loads []loadPayload `json:"loads"`
}

type pipelineRequest struct {
	Ingest    *ingestRequest    `json:"ingest,omitempty"`
	Shortlist *shortlistRequest `json:"shortlist,omitempty"`
	Score     *scoreRequest     `json:"score,omitempty"`
}

type pipelineResponse struct {
	Ingest    *ingestResponse    `json:"ingest,omitempty"`
	Shortlist *shortlistResponse `json:"shortlist,omitempty"`
	Score     *scoreResponse     `json:"score,omitempty"`
}

type stateRequest struct {
	LoadKey string `json:"load_key"`
	State   string `json:"state"`
}

type stateResponse struct {
	LoadKey string `json:"load_key"`
	State   string `json:"state"`
}

type statsResponse struct {
	Total  int            `json:"total"`
	States map[string]int `json:"states"`
	Runs   []runPayload   `json:"recent_runs"`
}

type runPayload struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Mode      string    `json:"mode"`
	Source    string    `json:"source,omitempty"`
	Inserted  int       `json:"inserted"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
}

type loadPayload struct {
	LoadKey        string     `json:"load_key"`
	OriginCity     string     `json:"O-City,omitempty"`
	OriginState    string     `json:"O-St,omitempty"`
	DestCity       string     `json:"D-City,omitempty"`
	DestState      string     `json:"D-St,omitempty"`
	OriginDeadhead *int64     `json:"O-DH,omitempty"`
	DestDeadhead   *int64     `json:"D-DH,omitempty"`
	Distance       *int64     `json:"Distance,omitempty"`
	Rate           string     `json:"Rate,omitempty"`
	RPM            string     `json:"RPM,omitempty"`
	Weight         *int64     `json:"Weight,omitempty"`
	Length         *int64     `json:"Length,omitempty"`
	Equipment      string     `json:"Equip,omitempty"`
	Mode           string     `json:"Mode,omitempty"`
	Pickup         string     `json:"Pickup,omitempty"`
	Company        string     `json:"Company,omitempty"`
	Updated        string     `json:"Updated,omitempty"`
	D2P            string     `json:"D2P,omitempty"`
	State          string     `json:"state"`
	ShortlistTag   string     `json:"shortlist_tag,omitempty"`
	ShortlistedAt  *time.Time `json:"shortlisted_at,omitempty"`
	MatchScore     *float64   `json:"match_score,omitempty"`
	FirstSeenAt    time.Time  `json:"first_seen_at"`
	LastSeenAt     time.Time  `json:"last_seen_at"`
}

func fromLoad(load *loads.Load) loadPayload {
	return loadPayload{
		LoadKey:        load.Key,
		OriginCity:     load.OriginCity,
		OriginState:    load.OriginState,
		DestCity:       load.DestCity,
		DestState:      load.DestState,
		OriginDeadhead: load.OriginDeadhead,
		DestDeadhead:   load.DestDeadhead,
		Distance:       load.Distance,
		Rate:           load.Rate,
		RPM:            load.RPM,
		Weight:         load.Weight,
		Length:         load.Length,
		Equipment:      load.Equipment,
		Mode:           load.Mode,
		Pickup:         load.Pickup,
		Company:        load.Company,
		Updated:        load.Updated,
		D2P:            load.D2P,
		State:          string(load.State),
		ShortlistTag:   load.ShortlistTag,
		ShortlistedAt:  load.ShortlistedAt,
		MatchScore:     load.MatchScore,
		FirstSeenAt:    load.FirstSeenAt,
		LastSeenAt:     load.LastSeenAt,
	}
}
