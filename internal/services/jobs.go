package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"alfredoptarigan/resume-shortlister/internal/models"
)

var defaultJobDescriptions = []models.JobDescription{
	{
		Role: "Project Manager",
		Description: `We are seeking a results-oriented Project Manager with 5+ years of experience managing cross-functional teams in agile environments. 
The candidate should have excellent communication skills, experience with tools like Jira and Confluence, and a proven ability to deliver projects on time and within budget.
Note: Candidates located in Hyderabad, India and women are especially encouraged to apply, as this role aims to improve gender representation in leadership.`,
	},
	{
		Role: "Software Developer",
		Description: `We are looking for a Full Stack Software Developer with 3+ years of experience in front-end frameworks (React, Angular) and back-end technologies (Node.js, Python, or Java).
Experience with RESTful APIs, cloud platforms (AWS, Azure), and CI/CD pipelines is highly desirable. The role is remote-friendly and open to diverse candidates from all locations.`,
	},
	{
		Role: "Intern",
		Description: `We are looking for a motivated and quick-learning Intern to assist in software testing, documentation, and market research. 
Strong communication and a willingness to explore new tools are key. This is a 3-month internship with mentorship from senior staff.`,
	},
	{
		Role: "Team Lead",
		Description: `We are hiring a Team Lead to mentor engineers, coordinate sprints, and ensure high-quality deliverables.
Ideal candidates should have 6+ years of software development experience and at least 1 year of people management. Strong leadership and technical skills are a must.`,
	},
	{
		Role: "HR Manager",
		Description: `We are seeking an HR Manager with experience in talent acquisition, employee engagement, and HR compliance.
Candidates should be familiar with labor laws, performance appraisal systems, and DEI (Diversity, Equity & Inclusion) best practices. Hybrid role based in Bangalore.`,
	},
	{
		Role: "Sales Expert",
		Description: `We need a Sales Expert with a proven record in B2B SaaS sales, excellent negotiation skills, and the ability to manage key accounts. 
This is a target-driven role requiring travel across India. Candidates from any gender or location are welcome; multilingual skills are a plus.`,
	},
}

// JobCatalog is the immutable role -> job description table.
type JobCatalog interface {
	Roles() []string
	Get(role string) (models.JobDescription, error)
	All() []models.JobDescription
}

type jobCatalog struct {
	entries []models.JobDescription
	byRole  map[string]int
}

// NewJobCatalog builds a catalog from entries. Role names must be unique and non-empty.
func NewJobCatalog(entries []models.JobDescription) (JobCatalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("job catalog must contain at least one role")
	}

	c := &jobCatalog{
		entries: make([]models.JobDescription, 0, len(entries)),
		byRole:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		role := strings.TrimSpace(e.Role)
		if role == "" {
			return nil, fmt.Errorf("job catalog entry has an empty role name")
		}
		if _, dup := c.byRole[role]; dup {
			return nil, fmt.Errorf("duplicate role %q in job catalog", role)
		}
		c.byRole[role] = len(c.entries)
		c.entries = append(c.entries, models.JobDescription{Role: role, Description: e.Description})
	}

	return c, nil
}

// DefaultJobCatalog returns the six built-in roles.
func DefaultJobCatalog() JobCatalog {
	c, _ := NewJobCatalog(defaultJobDescriptions)
	return c
}

// LoadJobCatalog reads a JSON role file, or returns the built-in catalog when path is empty.
func LoadJobCatalog(path string) (JobCatalog, error) {
	if path == "" {
		return DefaultJobCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job descriptions file: %w", err)
	}

	var entries []models.JobDescription
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode job descriptions file: %w", err)
	}

	return NewJobCatalog(entries)
}

func (c *jobCatalog) Roles() []string {
	roles := make([]string, len(c.entries))
	for i, e := range c.entries {
		roles[i] = e.Role
	}
	return roles
}

func (c *jobCatalog) Get(role string) (models.JobDescription, error) {
	idx, ok := c.byRole[strings.TrimSpace(role)]
	if !ok {
		return models.JobDescription{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return c.entries[idx], nil
}

func (c *jobCatalog) All() []models.JobDescription {
	out := make([]models.JobDescription, len(c.entries))
	copy(out, c.entries)
	return out
}
