package httpapi

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/events"
	"daymark-engine/internal/skills"
	"daymark-engine/internal/store"
)

type ProfileHandler struct {
	Store  *store.DB
	Engine *assign.Engine
	CfgVal *atomic.Value // stores config.Config
	Hub    *events.Hub
	Now    func() time.Time
}

type profileReq struct {
	Skills domain.UserSkills `json:"skills"`
}

type resumeReq struct {
	FileName string             `json:"fileName"`
	Text     string             `json:"text"`
	Skills   *domain.UserSkills `json:"skills"`
}

type resumeResp struct {
	Profile domain.Profile            `json:"profile"`
	Daily   domain.DailyJobAssignment `json:"daily"`
}

func (h ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	p, err := h.Store.Profile(r.Context(), cfg.App.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// Put replaces the skill lists. Resume metadata is kept.
func (h ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	var req profileReq
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Store.Profile(r.Context(), cfg.App.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	p.Skills = cleanSkills(req.Skills)
	if err := h.Store.SaveProfile(r.Context(), p); err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.ProfileUpdated, nil)
	WriteJSON(w, http.StatusOK, p)
}

// PutResume records a resume. Skill evidence comes from the skills field
// when present, otherwise it is extracted from text. The user's role types
// are kept and today's slate is reassigned under the new skills.
func (h ProfileHandler) PutResume(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	var req resumeReq
	if !decodeJSON(w, r, &req) {
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	if req.FileName == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_file_name", "fileName is required")
		return
	}
	if req.Skills == nil && strings.TrimSpace(req.Text) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_resume", "text or skills is required")
		return
	}

	p, err := h.Store.Profile(r.Context(), cfg.App.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	var evidence domain.UserSkills
	if req.Skills != nil {
		evidence = *req.Skills
	} else {
		evidence = skills.Extract(req.Text)
	}
	evidence.RoleTypes = p.Skills.RoleTypes
	p.Skills = cleanSkills(evidence)

	now := h.Now().UTC()
	p.ResumeFileName = req.FileName
	p.ResumeUploadedAt = &now
	if err := h.Store.SaveProfile(r.Context(), p); err != nil {
		internalError(w, r, err)
		return
	}

	today := assign.Today(h.Now(), cfg.Location())
	a, err := h.Engine.ReassignForResume(r.Context(), cfg.App.UserID, today)
	if err != nil {
		internalError(w, r, err)
		return
	}
	reqID := RequestIDFrom(r.Context())
	h.Hub.Emit(reqID, events.ProfileUpdated, map[string]any{"resume": p.ResumeFileName})
	h.Hub.Emit(reqID, events.DailyUpdated, map[string]any{"date": today})
	WriteJSON(w, http.StatusOK, resumeResp{Profile: p, Daily: a})
}

// DeleteResume drops the resume and the skill evidence taken from it.
// Role types stay.
func (h ProfileHandler) DeleteResume(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	p, err := h.Store.Profile(r.Context(), cfg.App.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	p.Skills = p.Skills.ClearEvidence()
	p.ResumeFileName = ""
	p.ResumeUploadedAt = nil
	if err := h.Store.SaveProfile(r.Context(), p); err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.ProfileUpdated, nil)
	WriteJSON(w, http.StatusOK, p)
}

func cleanSkills(s domain.UserSkills) domain.UserSkills {
	return domain.UserSkills{
		Languages:     skills.NormalizeAll(s.Languages),
		Frameworks:    skills.NormalizeAll(s.Frameworks),
		Tools:         skills.NormalizeAll(s.Tools),
		OtherKeywords: skills.NormalizeAll(s.OtherKeywords),
		RoleTypes:     trimmed(s.RoleTypes),
	}
}

func trimmed(xs []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" || seen[strings.ToLower(x)] {
			continue
		}
		seen[strings.ToLower(x)] = true
		out = append(out, x)
	}
	return out
}
