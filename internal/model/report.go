package model

import "time"

// ReportZone identifies the fixed vehicle area a condition report
// refers to. Reports are append-only: historical entries are never
// deleted, a later report for the same zone supersedes the earlier
// one for display purposes.
type ReportZone string

const (
	ZoneFront     ReportZone = "front"
	ZoneBack      ReportZone = "back"
	ZoneLeft      ReportZone = "left"
	ZoneRight     ReportZone = "right"
	ZoneDashboard ReportZone = "dashboard"
	ZoneSeat      ReportZone = "seat"
	ZoneDamage    ReportZone = "damage"
	ZoneGeneral   ReportZone = "general"
)

// Valid reports whether z is one of the fixed vehicle zones.
func (z ReportZone) Valid() bool {
	switch z {
	case ZoneFront, ZoneBack, ZoneLeft, ZoneRight, ZoneDashboard, ZoneSeat, ZoneDamage, ZoneGeneral:
		return true
	}
	return false
}

// ReportKind distinguishes the two condition-report ledgers attached
// to a completed rental.
type ReportKind string

const (
	ReportDamage     ReportKind = "damage"
	ReportInspection ReportKind = "inspection"
)

// ConditionReport is one entry in a booking's damage or inspection
// ledger, recorded by an operator after a completed rental.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – booking the report belongs to.
//  Kind      – damage or inspection.
//  Zone      – vehicle zone the report covers.
//  Checked   – whether an operator has reviewed the entry.
//  Note      – free-text description, sanitized.
//  PhotoURL  – optional blob-store URL of a condition photo.
//  CreatedAt – creation timestamp.
type ConditionReport struct {
	ID        uint64     `json:"id"`        // condition_reports.id
	BookingID uint64     `json:"booking_id"`
	Kind      ReportKind `json:"kind"`      // condition_reports.kind
	Zone      ReportZone `json:"zone"`      // condition_reports.zone
	Checked   bool       `json:"checked"`   // condition_reports.checked
	Note      string     `json:"note,omitempty"`
	PhotoURL  string     `json:"photo_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
