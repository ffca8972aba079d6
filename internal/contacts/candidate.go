package contacts

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	CandidateIDField      = "ID"
	CandidateEmailField   = "Email"
	CandidateCompanyField = "Company"
)

type Candidates struct {
	Items []*Candidate
}

// Candidate is a prospective contact returned by the people search provider.
// Schools and Skills arrive either as plain text or as JSON-encoded lists
// depending on the provider; keep them raw here and normalize on access.
type Candidate struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Title        string `json:"title,omitempty"`
	Company      string `json:"company,omitempty"`
	Email        string `json:"email,omitempty"`
	LinkedinURL  string `json:"linkedin_url,omitempty"`
	Location     string `json:"location,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Source       string `json:"source,omitempty"`
	Schools      string `json:"schools,omitempty"`
	Skills       string `json:"skills,omitempty"`
	ProfilePhoto string `json:"profile_photo,omitempty"`

	// Score is populated by the scoring strategy, in [0, 1].
	Score float64 `json:"score"`
}

// SchoolsText returns the candidate's school data normalized to plain text.
func (c *Candidate) SchoolsText() string {
	return ParseFlexibleList(c.Schools).Text()
}

// SkillsText returns the candidate's skill data normalized to plain text.
func (c *Candidate) SkillsText() string {
	return ParseFlexibleList(c.Skills).Text()
}

type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	ID          string
	Name        string
	CompanyName string
	ExcludedAt  time.Time
	Reason      string
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

func (ca *Candidate) GetStringField(name string) string {
	switch name {
	case CandidateIDField:
		return ca.ID
	case CandidateEmailField:
		return ca.Email
	case CandidateCompanyField:
		return ca.Company
	default:
		return ""
	}
}

// Exclude removes candidates from the list matching targets by field.
func (c *Candidates) Exclude(name string, targets []string) []string {
	var excluded []string
	for _, target := range targets {
		for idx, candidate := range c.Items {
			if candidate.GetStringField(name) == target {
				c.RemoveByIndex(idx)
				excluded = append(excluded, candidate.ID)
				break
			}
		}
	}
	return excluded
}

// RemoveByIndex removes a candidate from the list by index. Do not preserve order.
func (c *Candidates) RemoveByIndex(idx int) {
	c.Items[idx] = c.Items[len(c.Items)-1]
	c.Items = c.Items[:len(c.Items)-1]
}

// ReportByCompany groups candidates by company for the report prompt action.
func (c *Candidates) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, candidate := range c.Items {
		key := candidate.Company
		if key == "" {
			key = "(unknown company)"
		}
		report[key] = append(report[key], map[string]string{
			"name":     candidate.Name,
			"title":    candidate.Title,
			"location": candidate.Location,
			"email":    candidate.Email,
			"linkedin": candidate.LinkedinURL,
			"score":    fmt.Sprintf("%.3f", candidate.Score),
		})
	}
	return report
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (c *Candidates) ToExcluded(reason string) *ExcludedCandidates {
	excluded := &ExcludedCandidates{}
	for _, candidate := range c.Items {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			ID:          candidate.ID,
			Name:        candidate.Name,
			CompanyName: candidate.Company,
			ExcludedAt:  time.Now().UTC(),
			Reason:      reason,
		})
	}
	return excluded
}

func GetExcludedCandidatesFromFile(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedCandidates{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedCandidates) Append(s *ExcludedCandidates) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedCandidates) CandidateIDs() []string {
	ids := make([]string, 0)
	for _, candidate := range e.Items {
		ids = append(ids, candidate.ID)
	}
	return ids
}

func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
