package model

import "time"

// Hangar is a physical building; layouts belong to a hangar.  Hangars
// are reference data managed outside this service.
type Hangar struct {
    ID   uint64 `json:"id"`   // hangars.id
    Name string `json:"name"` // hangars.name
}

// Layout is one named arrangement of stands inside a hangar.  Only one
// layout is typically active per hangar at a time, but the planner does
// not enforce that.
type Layout struct {
    ID       uint64 `json:"id"`        // layouts.id
    HangarID uint64 `json:"hangar_id"` // layouts.hangar_id
    Name     string `json:"name"`      // layouts.name
    IsActive bool   `json:"is_active"` // layouts.is_active
}

// Stand is a single parking/maintenance spot inside a layout.  The
// geometry fields position the stand on the hangar map and play no part
// in scheduling.
//
// Fields:
//  ID        – primary key identifier.
//  LayoutID  – layout this stand belongs to.
//  Name      – display name, unique per layout.
//  GeomX     – map rectangle origin X.
//  GeomY     – map rectangle origin Y.
//  GeomW     – map rectangle width.
//  GeomH     – map rectangle height.
//  IsActive  – whether the stand may receive reservations.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Stand struct {
    ID        uint64    `json:"id"`         // stands.id
    LayoutID  uint64    `json:"layout_id"`  // stands.layout_id
    Name      string    `json:"name"`       // stands.name
    GeomX     float64   `json:"geom_x"`     // stands.geom_x
    GeomY     float64   `json:"geom_y"`     // stands.geom_y
    GeomW     float64   `json:"geom_w"`     // stands.geom_w
    GeomH     float64   `json:"geom_h"`     // stands.geom_h
    IsActive  bool      `json:"is_active"`  // stands.is_active
    CreatedAt time.Time `json:"created_at"` // stands.created_at
    UpdatedAt time.Time `json:"updated_at"` // stands.updated_at
}

// Aircraft is read-only reference data identifying the airframe an
// event works on.
type Aircraft struct {
    ID         uint64 `json:"id"`          // aircraft.id
    TailNumber string `json:"tail_number"` // aircraft.tail_number
    TypeCode   string `json:"type_code"`   // aircraft.type_code
}
