package model

// Content is the structured resume document. List order is user-controlled and
// preserved on every write.
type Content struct {
	Personal     Personal      `json:"personal"`
	Experience   []Experience  `json:"experience" validate:"dive"`
	Education    []Education   `json:"education" validate:"dive"`
	Skills       Skills        `json:"skills"`
	Projects     []Project     `json:"projects" validate:"dive"`
	Certificates []Certificate `json:"certificates" validate:"dive"`
	Activities   []Activity    `json:"activities" validate:"dive"`
}

// Personal captures identity and contact details. Email, Phone and Address are
// stored encrypted at rest.
type Personal struct {
	FullName string `json:"fullName" validate:"max=200"`
	Title    string `json:"title" validate:"max=200"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Website  string `json:"website" validate:"omitempty,url"`
	LinkedIn string `json:"linkedIn" validate:"omitempty,url"`
	Summary  string `json:"summary" validate:"max=5000"`
	// Photo is an http(s) URL, a data: URI, or "store:<key>" for an uploaded object.
	Photo string `json:"photo"`
}

// Experience represents a work history entry.
type Experience struct {
	ID          string `json:"id"`
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate" validate:"omitempty,resumedate"`
	EndDate     string `json:"endDate" validate:"omitempty,resumedate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Education represents an education entry.
type Education struct {
	ID          string `json:"id"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	School      string `json:"school"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate" validate:"omitempty,resumedate"`
	EndDate     string `json:"endDate" validate:"omitempty,resumedate"`
	Current     bool   `json:"current"`
	GPA         string `json:"gpa"`
	Description string `json:"description"`
}

// Skills groups skill lists.
type Skills struct {
	Technical []string     `json:"technical"`
	Soft      []string     `json:"soft"`
	Languages []string     `json:"languages"`
	Rated     []RatedSkill `json:"rated" validate:"dive"`
}

// RatedSkill is a skill with a 1..5 proficiency level.
type RatedSkill struct {
	Name  string `json:"name" validate:"required"`
	Level int    `json:"level" validate:"min=1,max=5"`
}

// Project represents a notable project.
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	URL          string   `json:"url" validate:"omitempty,url"`
	StartDate    string   `json:"startDate" validate:"omitempty,resumedate"`
	EndDate      string   `json:"endDate" validate:"omitempty,resumedate"`
	Current      bool     `json:"current"`
	Technologies []string `json:"technologies"`
	Description  string   `json:"description"`
}

// Certificate represents a certification entry.
type Certificate struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	Date         string `json:"date" validate:"omitempty,resumedate"`
	ExpiryDate   string `json:"expiryDate" validate:"omitempty,resumedate"`
	CredentialID string `json:"credentialId"`
	URL          string `json:"url" validate:"omitempty,url"`
}

// Activity represents volunteering, clubs and similar entries.
type Activity struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Location     string `json:"location"`
	StartDate    string `json:"startDate" validate:"omitempty,resumedate"`
	EndDate      string `json:"endDate" validate:"omitempty,resumedate"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// IsEmpty reports whether no skill list has entries.
func (s Skills) IsEmpty() bool {
	return len(s.Technical) == 0 && len(s.Soft) == 0 && len(s.Languages) == 0 && len(s.Rated) == 0
}

// HasHeader reports whether any personal field that renders in the header is set.
func (p Personal) HasHeader() bool {
	for _, v := range []string{p.FullName, p.Title, p.Email, p.Phone, p.Address, p.Website, p.LinkedIn} {
		if v != "" {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so snapshots never share slices with the live document.
func (c Content) Clone() Content {
	out := c
	out.Experience = append([]Experience(nil), c.Experience...)
	out.Education = append([]Education(nil), c.Education...)
	out.Skills = Skills{
		Technical: append([]string(nil), c.Skills.Technical...),
		Soft:      append([]string(nil), c.Skills.Soft...),
		Languages: append([]string(nil), c.Skills.Languages...),
		Rated:     append([]RatedSkill(nil), c.Skills.Rated...),
	}
	out.Projects = make([]Project, len(c.Projects))
	for i, p := range c.Projects {
		p.Technologies = append([]string(nil), p.Technologies...)
		out.Projects[i] = p
	}
	if c.Projects == nil {
		out.Projects = nil
	}
	out.Certificates = append([]Certificate(nil), c.Certificates...)
	out.Activities = append([]Activity(nil), c.Activities...)
	return out
}
