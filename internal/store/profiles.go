package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"daymark-engine/internal/domain"
)

// Profile returns the user's profile, or an empty one when none was saved.
func (d *DB) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	var skillsJSON, resume, uploaded string
	err := d.Pool.QueryRowContext(ctx, `
SELECT skills, resume_file_name, resume_uploaded_at
FROM profiles WHERE user_id = ?;`, userID).Scan(&skillsJSON, &resume, &uploaded)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyProfile(userID), nil
	}
	if err != nil {
		return domain.Profile{}, err
	}

	p := emptyProfile(userID)
	if err := json.Unmarshal([]byte(skillsJSON), &p.Skills); err != nil {
		return domain.Profile{}, fmt.Errorf("decode skills: %w", err)
	}
	p.Skills = nonNilSkills(p.Skills)
	p.ResumeFileName = resume
	p.ResumeUploadedAt = parseTimePtr(uploaded)
	return p, nil
}

func (d *DB) SaveProfile(ctx context.Context, p domain.Profile) error {
	b, err := json.Marshal(nonNilSkills(p.Skills))
	if err != nil {
		return err
	}
	_, err = d.Pool.ExecContext(ctx, `
INSERT INTO profiles (user_id, skills, resume_file_name, resume_uploaded_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  skills = excluded.skills,
  resume_file_name = excluded.resume_file_name,
  resume_uploaded_at = excluded.resume_uploaded_at;`,
		p.UserID, string(b), p.ResumeFileName, formatTimePtr(p.ResumeUploadedAt))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func emptyProfile(userID string) domain.Profile {
	return domain.Profile{UserID: userID, Skills: nonNilSkills(domain.UserSkills{})}
}

func nonNilSkills(s domain.UserSkills) domain.UserSkills {
	for _, l := range []*[]string{&s.Languages, &s.Frameworks, &s.Tools, &s.OtherKeywords, &s.RoleTypes} {
		if *l == nil {
			*l = []string{}
		}
	}
	return s
}
