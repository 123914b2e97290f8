package dto

// SchoolUnitListQuery carries the raw query parameters of the listing endpoint.
type SchoolUnitListQuery struct {
	PageSize       string
	Cursor         string
	Order          string
	Status         string
	NTEID          string
	MunicipalityID string
	TypologyID     string
	Search         string
}

// CreateSchoolUnitRequest is the payload accepted by POST /school_units.
type CreateSchoolUnitRequest struct {
	Name         string      `json:"schoolUnit" validate:"required"`
	SecCode      string      `json:"sec_code"`
	UOCode       *string     `json:"uo_code"`
	Municipality LooseString `json:"municipality" validate:"required"`
	Typology     LooseString `json:"typology"`
	Status       *string     `json:"status"`
}

// UpdateSchoolUnitRequest is a partial update; nil fields are left untouched.
type UpdateSchoolUnitRequest struct {
	Name         *string      `json:"schoolUnit"`
	SecCode      *string      `json:"sec_code"`
	UOCode       *string      `json:"uo_code"`
	Municipality *LooseString `json:"municipality"`
	Typology     *LooseString `json:"typology"`
	Status       *string      `json:"status"`
}

// DeleteResponse acknowledges a physical delete.
type DeleteResponse struct {
	OK bool `json:"ok"`
}
