package domain

import (
	"hash/fnv"
	"strings"
	"time"
)

// UserSkills is the user's declared skill evidence. RoleTypes is curated by
// hand; the other four lists usually come from a resume.
type UserSkills struct {
	Languages     []string `json:"languages"`
	Frameworks    []string `json:"frameworks"`
	Tools         []string `json:"tools"`
	OtherKeywords []string `json:"otherKeywords"`
	RoleTypes     []string `json:"roleTypes"`
}

// Tokens returns every resume-derived token in declaration order.
func (s UserSkills) Tokens() []string {
	out := make([]string, 0, len(s.Languages)+len(s.Frameworks)+len(s.Tools)+len(s.OtherKeywords))
	out = append(out, s.Languages...)
	out = append(out, s.Frameworks...)
	out = append(out, s.Tools...)
	out = append(out, s.OtherKeywords...)
	return out
}

// ClearEvidence drops resume-derived tokens and keeps RoleTypes.
func (s UserSkills) ClearEvidence() UserSkills {
	return UserSkills{
		Languages:     []string{},
		Frameworks:    []string{},
		Tools:         []string{},
		OtherKeywords: []string{},
		RoleTypes:     s.RoleTypes,
	}
}

// Fingerprint is a stable hash of the skill lists, used as a cache key.
func (s UserSkills) Fingerprint() uint64 {
	h := fnv.New64a()
	for _, list := range [][]string{s.Languages, s.Frameworks, s.Tools, s.OtherKeywords, s.RoleTypes} {
		for _, t := range list {
			_, _ = h.Write([]byte(strings.ToLower(t)))
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{1})
	}
	return h.Sum64()
}

// Profile is the per-user skill state plus the resume it was derived from.
type Profile struct {
	UserID           string     `json:"userId"`
	Skills           UserSkills `json:"skills"`
	ResumeFileName   string     `json:"resumeFileName,omitempty"`
	ResumeUploadedAt *time.Time `json:"resumeUploadedAt,omitempty"`
}

// HasResume reports whether skill evidence from a resume is present.
func (p Profile) HasResume() bool {
	return p.ResumeFileName != ""
}
