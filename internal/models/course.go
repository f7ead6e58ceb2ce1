package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Course defaults applied when a value is absent or zero.
const (
	DefaultCourseWeight  = 0.3
	DefaultPassThreshold = 70
)

// Course is one trainable unit in the catalog.
type Course struct {
	Code          string         `db:"code" json:"code"`
	Title         string         `db:"title" json:"title"`
	Brief         string         `db:"brief" json:"brief"`
	Weight        float64        `db:"weight" json:"weight"`
	PassThreshold int            `db:"pass_threshold" json:"passThreshold"`
	IsRequired    bool           `db:"is_required" json:"isRequired"`
	Tracks        pq.StringArray `db:"tracks" json:"tracks"`
	Active        bool           `db:"active" json:"active"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// UnmarshalJSON treats a record without an active flag as active.
func (c *Course) UnmarshalJSON(data []byte) error {
	type course Course
	aux := struct {
		*course
		Active *bool `json:"active"`
	}{course: (*course)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Active = aux.Active == nil || *aux.Active
	return nil
}

// Threshold returns the pass threshold, defaulting to 70.
func (c Course) Threshold() float64 {
	if c.PassThreshold <= 0 {
		return DefaultPassThreshold
	}
	return float64(c.PassThreshold)
}

// RequiredFor reports whether the course must be completed by trackID.
func (c Course) RequiredFor(trackID string) bool {
	if !c.Active || !c.IsRequired || trackID == "" {
		return false
	}
	for _, t := range c.Tracks {
		if t == trackID {
			return true
		}
	}
	return false
}

// SameCode compares course codes case-insensitively.
func SameCode(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Track is a curriculum path with a minimum graduation average.
type Track struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	MinAverage float64 `json:"minAverage"`
}

// Tracks is the fixed track configuration.
var Tracks = []Track{
	{ID: "t1", Name: "STEM Core", MinAverage: 70},
	{ID: "t2", Name: "Languages", MinAverage: 70},
	{ID: "t3", Name: "ICT", MinAverage: 75},
}

var subjectTracks = map[string]string{
	"math":             "t1",
	"mathematics":      "t1",
	"physics":          "t1",
	"chemistry":        "t1",
	"biology":          "t1",
	"science":          "t1",
	"english":          "t2",
	"arabic":           "t2",
	"french":           "t2",
	"ict":              "t3",
	"computer science": "t3",
	"computing":        "t3",
}

// TrackByID looks up a track.
func TrackByID(id string) (Track, bool) {
	for _, t := range Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}

// SubjectTrack maps a teaching subject to its track ID, or "" when unknown.
func SubjectTrack(subject string) string {
	return subjectTracks[strings.ToLower(strings.TrimSpace(subject))]
}
