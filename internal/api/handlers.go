package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sprite-ai/revlog/internal/derive"
	"github.com/sprite-ai/revlog/internal/merge"
	"github.com/sprite-ai/revlog/internal/model"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Review ---

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

// --- Derived state ---

type stateJSON struct {
	Status    string   `json:"status"`
	Reviewers []string `json:"reviewers"`
	Resolved  []string `json:"resolved"`
	Visible   []string `json:"visible"`
	Warnings  []string `json:"warnings,omitempty"`
}

func stateFor(review *model.Review) stateJSON {
	st := derive.Run(review)
	return stateJSON{
		Status:    string(st.Status),
		Reviewers: st.Reviewers,
		Resolved:  st.ResolvedIDs,
		Visible:   st.VisibleIDs,
		Warnings:  st.Warnings,
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateFor(s.snapshot()))
}

// --- Append ---

type appendRequest struct {
	// Parent is the id of the activity to reply to; empty appends at
	// the top level.
	Parent   string         `json:"parent,omitempty"`
	Activity model.Activity `json:"activity"`
}

type appendResponse struct {
	ID    string    `json:"id"`
	State stateJSON `json:"state"`
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	a := req.Activity
	if a.ID == "" {
		a.ID = model.NewID()
	}
	if a.Created == nil {
		now := time.Now().UTC()
		a.Created = &now
	}
	if err := model.ValidateActivity(&a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.withReview(func(review *model.Review) (*model.Review, error) {
		if req.Parent == "" {
			review.Append(a)
			return review, nil
		}
		for _, f := range review.Flatten() {
			if f.Activity.ID == req.Parent {
				f.Activity.Replies = append(f.Activity.Replies, a)
				return review, nil
			}
		}
		return nil, errors.New("parent activity not found: " + req.Parent)
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast()
	writeJSON(w, http.StatusOK, appendResponse{ID: a.ID, State: stateFor(s.snapshot())})
}

// --- Merge ---

type mergeResponse struct {
	Activities int       `json:"activities"`
	State      stateJSON `json:"state"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var other model.Review
	if err := readJSON(r, &other); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := model.ValidateReview(&other); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.withReview(func(review *model.Review) (*model.Review, error) {
		return merge.Reviews(review, &other)
	})
	if err != nil {
		var conflict *merge.ConflictError
		if errors.As(err, &conflict) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast()
	review := s.snapshot()
	writeJSON(w, http.StatusOK, mergeResponse{
		Activities: len(review.Flatten()),
		State:      stateFor(review),
	})
}
