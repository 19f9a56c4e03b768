// README: RPC method dispatch; params map onto BookingIntent fields.
package rpc

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"smartride/internal/modules/intent"
	"smartride/internal/modules/rides"
	"smartride/internal/pipeline"
	"smartride/internal/types"
)

type bookParams struct {
	// Utterance routes the request through the intent parser first. When it
	// is set every other field is ignored.
	Utterance string `json:"utterance"`

	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Time        string `json:"time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Constraint  string `json:"constraint" validate:"omitempty,oneof=cheapest fastest best_value none"`
	AvoidShared bool   `json:"avoid_shared"`
}

type listParams struct {
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
}

type rideRefParams struct {
	RideID string `json:"ride_id" validate:"required"`
}

type updateParams struct {
	RideID string `json:"ride_id" validate:"required"`
	Time   string `json:"time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func (s *Server) dispatch(c *gin.Context, req *request) (any, *rpcError) {
	switch req.Method {
	case "chat":
		return s.chat(c, req.Params)
	case "book":
		return s.book(c, req.Params)
	case "compareOffers":
		return s.compare(c, req.Params)
	case "listRides":
		return s.listRides(c, req.Params)
	case "updateRide":
		return s.updateRide(c, req.Params)
	case "cancelRide":
		return s.cancelRide(c, req.Params)
	case "status":
		return s.status(c, req.Params)
	default:
		return nil, &rpcError{Code: CodeMethodNotFound, Message: "unknown method: " + req.Method}
	}
}

func (s *Server) decodeParams(raw json.RawMessage, into any) *rpcError {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return &rpcError{Code: CodeInvalidRequest, Message: "malformed params: " + err.Error()}
	}
	if err := s.validate.Struct(into); err != nil {
		return &rpcError{Code: CodeInvalidRequest, Message: err.Error()}
	}
	return nil
}

func (s *Server) wrap(res *pipeline.Result, err error) (any, *rpcError) {
	if err != nil {
		return nil, &rpcError{Code: codeFor(err), Message: err.Error()}
	}
	return res, nil
}

func (s *Server) chat(c *gin.Context, raw json.RawMessage) (any, *rpcError) {
	var p struct {
		Utterance string `json:"utterance" validate:"required"`
	}
	if rpcErr := s.decodeParams(raw, &p); rpcErr != nil {
		return nil, rpcErr
	}
	return s.wrap(s.pipeline.Chat(c.Request.Context(), p.Utterance))
}

func (s *Server) book(c *gin.Context, raw json.RawMessage) (any, *rpcError) {
	var p bookParams
	if rpcErr := s.decodeParams(raw, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if p.Utterance != "" {
		// The utterance form of book is pinned to booking actions; the chat
		// method is the one that routes freely.
		return s.wrap(s.pipeline.BookUtterance(c.Request.Context(), p.Utterance))
	}
	bi, rpcErr := p.toIntent(intent.ActionBook)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return s.wrap(s.pipeline.Book(c.Request.Context(), bi))
}

func (s *Server) compare(c *gin.Context, raw json.RawMessage) (any, *rpcError) {
	var p bookParams
	if rpcErr := s.decodeParams(raw, &p); rpcErr != nil {
		return nil, rpcErr
	}
	bi, rpcErr := p.toIntent(intent.ActionCompare)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return s.wrap(s.pipeline.Compare(c.Request.Context(), bi))
}

func (s *Server) listRides(c *gin.Context, raw json.RawMessage) (any, *rpcError) {
	var p listParams
	if rpcErr := s.decodeParams(raw, &p); rpcErr != nil {
		return nil, rpcErr
	}
	var f rides.Filter
	if p.Status != "" {
		st := rides.Status(p.Status)
		f.Status = &st
	}
	return s.wrap(s.pipeline.ListRides(c.Request.Context(), f))
}

func (s *Server) updateRide(c *gin.Context, raw json.RawMessage) (any, *rpcError) {
	var p updateParams
	if rpcErr := s.decodeParams(raw, &p); rpcErr != nil {
		return nil, rpcErr
	}
	t, err := time.Parse(time.RFC3339, p.Time)
	if err != nil {
		return nil, &rpcError{Code: CodeInvalidTime, Message: "time must be RFC3339"}
	}
	return s.wrap(s.pipeline.UpdateRide(c.Request.Context(), p.RideID, t))
}

func (s *Server) cancelRide(c *gin.Context, raw json.RawMessage) (any, *rpcError) {
	var p rideRefParams
	if rpcErr := s.decodeParams(raw, &p); rpcErr != nil {
		return nil, rpcErr
	}
	return s.wrap(s.pipeline.CancelRide(c.Request.Context(), p.RideID))
}

func (s *Server) status(c *gin.Context, raw json.RawMessage) (any, *rpcError) {
	var p rideRefParams
	if rpcErr := s.decodeParams(raw, &p); rpcErr != nil {
		return nil, rpcErr
	}
	return s.wrap(s.pipeline.Status(c.Request.Context(), p.RideID))
}

// toIntent builds a BookingIntent from structured params, enforcing the same
// invariants the parser applies to free text.
func (p bookParams) toIntent(action intent.Action) (*intent.BookingIntent, *rpcError) {
	if p.Destination == "" {
		return nil, &rpcError{Code: CodeInvalidRequest, Message: "destination is required"}
	}
	bi := &intent.BookingIntent{
		Action:      action,
		Destination: &types.Location{Label: p.Destination},
		Constraint:  intent.Constraint(p.Constraint),
		AvoidShared: p.AvoidShared,
	}
	if bi.Constraint == "" {
		bi.Constraint = intent.ConstraintNone
	}
	if p.Origin != "" {
		bi.Origin = &types.Location{Label: p.Origin}
	}
	if p.Time != "" {
		t, err := time.Parse(time.RFC3339, p.Time)
		if err != nil {
			return nil, &rpcError{Code: CodeInvalidTime, Message: "time must be RFC3339"}
		}
		if t.Before(time.Now().Add(-time.Minute)) {
			return nil, &rpcError{Code: CodeInvalidTime, Message: "requested time is in the past"}
		}
		bi.RequestedTime = &t
	}
	return bi, nil
}
