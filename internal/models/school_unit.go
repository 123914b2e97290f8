package models

import (
	"database/sql"
	"strconv"
	"time"
)

// School unit status codes.
const (
	SchoolUnitStatusActive   = "1"
	SchoolUnitStatusInactive = "0"
)

// SchoolUnit is a row of the school_units table.
type SchoolUnit struct {
	ID             int64          `db:"id"`
	Name           string         `db:"name"`
	SecCode        string         `db:"sec_code"`
	UOCode         sql.NullString `db:"uo_code"`
	Status         string         `db:"status"`
	MunicipalityID int64          `db:"municipality_id"`
	TypologyID     sql.NullInt64  `db:"typology_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// SchoolUnitRow is a school unit joined with its municipality, NTE and typology names.
// Absent relations are projected as empty strings by the repository.
type SchoolUnitRow struct {
	SchoolUnit
	TypologyName     string `db:"typology_name"`
	MunicipalityName string `db:"municipality_name"`
	NTEID            int64  `db:"nte_id"`
	NTEName          string `db:"nte_name"`
}

// SchoolUnitSummary is the flattened shape shared by listing, create and update.
type SchoolUnitSummary struct {
	ID               int64  `json:"id"`
	Name             string `json:"schoolUnit"`
	SecCode          string `json:"sec_code"`
	UOCode           string `json:"uo_code"`
	TypologyName     string `json:"typology"`
	MunicipalityName string `json:"municipality"`
	NTEName          string `json:"nte"`
	Status           string `json:"status"`
}

// SchoolUnitDetail extends the summary with relation ids and the derived approval state.
type SchoolUnitDetail struct {
	SchoolUnitSummary
	MunicipalityID    string             `json:"municipality_id"`
	NTEID             string             `json:"nte_id"`
	TypologyID        *string            `json:"typology_id"`
	Active            bool               `json:"active"`
	HomologationState HomologationAction `json:"homologation_state"`
	NextAction        HomologationAction `json:"next_homologation_action"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Active reports whether the unit's status code marks it active. Unknown codes are inactive.
func (s SchoolUnit) Active() bool {
	return s.Status == SchoolUnitStatusActive
}

// Summary projects a joined row into the wire summary.
func (r SchoolUnitRow) Summary() SchoolUnitSummary {
	return SchoolUnitSummary{
		ID:               r.ID,
		Name:             r.Name,
		SecCode:          r.SecCode,
		UOCode:           r.UOCode.String,
		TypologyName:     r.TypologyName,
		MunicipalityName: r.MunicipalityName,
		NTEName:          r.NTEName,
		Status:           r.Status,
	}
}

// Detail projects a joined row and its derived homologation state.
func (r SchoolUnitRow) Detail(state HomologationAction) SchoolUnitDetail {
	detail := SchoolUnitDetail{
		SchoolUnitSummary: r.Summary(),
		MunicipalityID:    strconv.FormatInt(r.MunicipalityID, 10),
		NTEID:             strconv.FormatInt(r.NTEID, 10),
		Active:            r.Active(),
		HomologationState: state,
		NextAction:        NextHomologationAction(state),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.TypologyID.Valid {
		id := strconv.FormatInt(r.TypologyID.Int64, 10)
		detail.TypologyID = &id
	}
	return detail
}

// SortOrder is the direction of a keyset listing on id.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SchoolUnitFilter holds the resolved parameters of a keyset listing.
type SchoolUnitFilter struct {
	PageSize       int
	Cursor         *int64
	Order          SortOrder
	Status         string
	NTEID          *int64
	MunicipalityID *int64
	TypologyID     *int64
	Search         string
}

// SchoolUnitChanges lists the columns a partial update sets. Nil fields are untouched.
type SchoolUnitChanges struct {
	Name           *string
	SecCode        *string
	UOCode         *string
	Status         *string
	MunicipalityID *int64
	TypologyID     *int64
}

// Empty reports whether no column would change.
func (c SchoolUnitChanges) Empty() bool {
	return c.Name == nil && c.SecCode == nil && c.UOCode == nil && c.Status == nil &&
		c.MunicipalityID == nil && c.TypologyID == nil
}
