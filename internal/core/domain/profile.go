package domain

import "time"

// Social holds the optional links shown on a profile.
type Social struct {
	YouTube   string `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
}

// Profile is the per-user directory document. Each user owns at most one.
type Profile struct {
	ID             string    `json:"_id"`
	UserID         string    `json:"-"`
	Company        string    `json:"company,omitempty"`
	Website        string    `json:"website,omitempty"`
	Location       string    `json:"location,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Status         string    `json:"status"`
	GitHubUsername string    `json:"githubusername,omitempty"`
	Skills         []string  `json:"skills"`
	Social         Social    `json:"social"`
	CreatedAt      time.Time `json:"date"`
	UpdatedAt      time.Time `json:"updated_at"`
}
