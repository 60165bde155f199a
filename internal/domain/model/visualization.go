package model

import "fmt"

// Point places a resolved member at its city's coordinates.
type Point struct {
	MemberID   string  `json:"memberId"`
	MemberName string  `json:"memberName"`
	CityName   string  `json:"cityName"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// Arc connects two points.
type Arc struct {
	StartLat float64 `json:"startLat"`
	StartLng float64 `json:"startLng"`
	EndLat   float64 `json:"endLat"`
	EndLng   float64 `json:"endLng"`
}

// Visualization is the computed presentation graph for a meeting. It is
// never persisted.
type Visualization struct {
	Meeting  Summary   `json:"meeting"`
	Points   []Point   `json:"points"`
	Arcs     []Arc     `json:"arcs"`
	Warnings []Warning `json:"warnings"`
}

// WarningKind classifies a non-fatal, per-participant problem.
type WarningKind string

const (
	WarningUnresolvedCity WarningKind = "unresolved_city"
	WarningMemberFailed   WarningKind = "member_failed"
	WarningMissingMember  WarningKind = "missing_member"
	WarningInvalidLine    WarningKind = "invalid_line"
)

// Warning is attributable to a single participant so a caller can prompt
// for a correction.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	MemberID string      `json:"memberId,omitempty"`
	Name     string      `json:"name,omitempty"`
	City     string      `json:"city,omitempty"`
	Message  string      `json:"message"`
}

func (w Warning) String() string { return w.Message }

// UnresolvedCity reports that name's city has no known coordinates.
func UnresolvedCity(memberID, name, city string) Warning {
	return Warning{
		Kind:     WarningUnresolvedCity,
		MemberID: memberID,
		Name:     name,
		City:     city,
		Message:  fmt.Sprintf("%s: city %q could not be resolved", name, city),
	}
}

// MemberFailed reports that a participant could not be registered.
func MemberFailed(name, city string, err error) Warning {
	return Warning{
		Kind:    WarningMemberFailed,
		Name:    name,
		City:    city,
		Message: fmt.Sprintf("%s (%s): %v", name, city, err),
	}
}

// MissingMember reports a roster entry whose member record does not exist.
func MissingMember(memberID string) Warning {
	return Warning{
		Kind:     WarningMissingMember,
		MemberID: memberID,
		Message:  fmt.Sprintf("member %s not found", memberID),
	}
}

// InvalidLine reports a roster line that could not be parsed.
func InvalidLine(err error) Warning {
	return Warning{Kind: WarningInvalidLine, Message: err.Error()}
}

// Messages flattens warnings into their display strings.
func Messages(warnings []Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Message
	}
	return out
}
