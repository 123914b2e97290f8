package models

// NTE is a regional education-technology authority.
type NTE struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Municipality belongs to exactly one NTE.
type Municipality struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	NTEID int64  `db:"nte_id"`
}

// Typology is a categorical tag such as SEDE, ANEXO or CEMIT.
type Typology struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// LookupOption is a select option; ids are strings for client form compatibility.
type LookupOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
