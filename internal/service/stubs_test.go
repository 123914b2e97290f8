package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/school-units-api/internal/models"
	"github.com/noah-isme/school-units-api/internal/repository"
)

// memStore is an in-memory stand-in for the school unit, lookup and
// homologation repositories.
type memStore struct {
	mu             sync.Mutex
	units          map[int64]models.SchoolUnit
	municipalities map[int64]models.Municipality
	ntes           map[int64]models.NTE
	typologies     []models.Typology
	events         []models.HomologationEvent
	nextUnitID     int64
	nextEventID    int64
	clock          time.Time

	listErr   error
	listCalls int
}

func newMemStore() *memStore {
	return &memStore{
		units:          map[int64]models.SchoolUnit{},
		municipalities: map[int64]models.Municipality{3: {ID: 3, Name: "Salvador", NTEID: 26}},
		ntes:           map[int64]models.NTE{26: {ID: 26, Name: "NTE 26"}},
		typologies:     []models.Typology{{ID: 1, Name: "SEDE"}, {ID: 2, Name: "ANEXO"}},
		nextUnitID:     1,
		nextEventID:    1,
		clock:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) seedUnits(n int) {
	for i := 0; i < n; i++ {
		_ = m.Create(context.Background(), &models.SchoolUnit{Name: "Unit", Status: "1", MunicipalityID: 3})
	}
}

func (m *memStore) row(u models.SchoolUnit) models.SchoolUnitRow {
	row := models.SchoolUnitRow{SchoolUnit: u}
	if mun, ok := m.municipalities[u.MunicipalityID]; ok {
		row.MunicipalityName = mun.Name
		row.NTEID = mun.NTEID
		row.NTEName = m.ntes[mun.NTEID].Name
	}
	if u.TypologyID.Valid {
		for _, t := range m.typologies {
			if t.ID == u.TypologyID.Int64 {
				row.TypologyName = t.Name
			}
		}
	}
	return row
}

func (m *memStore) List(ctx context.Context, filter models.SchoolUnitFilter, limit int) ([]models.SchoolUnitRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]int64, 0, len(m.units))
	for id := range m.units {
		ids = append(ids, id)
	}
	desc := filter.Order == models.SortDesc
	sort.Slice(ids, func(i, j int) bool {
		if desc {
			return ids[i] > ids[j]
		}
		return ids[i] < ids[j]
	})
	rows := make([]models.SchoolUnitRow, 0)
	for _, id := range ids {
		if filter.Cursor != nil && ((desc && id >= *filter.Cursor) || (!desc && id <= *filter.Cursor)) {
			continue
		}
		u := m.units[id]
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
			continue
		}
		rows = append(rows, m.row(u))
		if len(rows) == limit {
			break
		}
	}
	return rows, nil
}

func (m *memStore) FindByID(ctx context.Context, id int64) (*models.SchoolUnitRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := m.row(u)
	return &row, nil
}

func (m *memStore) Exists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.units[id]
	return ok, nil
}

func (m *memStore) checkRefs(municipalityID int64, typologyID sql.NullInt64) error {
	if _, ok := m.municipalities[municipalityID]; !ok {
		return &repository.ForeignKeyError{Constraint: "school_units_municipality_id_fkey"}
	}
	if typologyID.Valid {
		for _, t := range m.typologies {
			if t.ID == typologyID.Int64 {
				return nil
			}
		}
		return &repository.ForeignKeyError{Constraint: "school_units_typology_id_fkey"}
	}
	return nil
}

func (m *memStore) Create(ctx context.Context, unit *models.SchoolUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRefs(unit.MunicipalityID, unit.TypologyID); err != nil {
		return err
	}
	unit.ID = m.nextUnitID
	m.nextUnitID++
	unit.CreatedAt = m.tick()
	unit.UpdatedAt = unit.CreatedAt
	m.units[unit.ID] = *unit
	return nil
}

func (m *memStore) Update(ctx context.Context, id int64, changes models.SchoolUnitChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[id]
	if !ok {
		return sql.ErrNoRows
	}
	if changes.Name != nil {
		u.Name = *changes.Name
	}
	if changes.SecCode != nil {
		u.SecCode = *changes.SecCode
	}
	if changes.UOCode != nil {
		u.UOCode = sql.NullString{String: *changes.UOCode, Valid: true}
	}
	if changes.Status != nil {
		u.Status = *changes.Status
	}
	if changes.MunicipalityID != nil {
		u.MunicipalityID = *changes.MunicipalityID
	}
	if changes.TypologyID != nil {
		u.TypologyID = sql.NullInt64{Int64: *changes.TypologyID, Valid: true}
	}
	if err := m.checkRefs(u.MunicipalityID, u.TypologyID); err != nil {
		return err
	}
	u.UpdatedAt = m.tick()
	m.units[id] = u
	return nil
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.units, id)
	kept := m.events[:0]
	for _, e := range m.events {
		if e.SchoolUnitID != id {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

func (m *memStore) FindTypologyByName(ctx context.Context, name string) (*models.Typology, error) {
	for _, t := range m.typologies {
		if t.Name == name {
			typology := t
			return &typology, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) ListNTEs(ctx context.Context) ([]models.NTE, error) {
	out := make([]models.NTE, 0, len(m.ntes))
	for _, n := range m.ntes {
		out = append(out, n)
	}
	return out, nil
}

func (m *memStore) ListMunicipalities(ctx context.Context, nteID int64) ([]models.Municipality, error) {
	out := make([]models.Municipality, 0)
	for _, mun := range m.municipalities {
		if mun.NTEID == nteID {
			out = append(out, mun)
		}
	}
	return out, nil
}

func (m *memStore) ListTypologies(ctx context.Context) ([]models.Typology, error) {
	return append([]models.Typology(nil), m.typologies...), nil
}

func (m *memStore) ListByUnit(ctx context.Context, unitID int64, limit int) ([]models.HomologationEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HomologationEvent, 0)
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].SchoolUnitID == unitID {
			out = append(out, m.events[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Latest(ctx context.Context, unitID int64) (*models.HomologationEvent, error) {
	events, _ := m.ListByUnit(ctx, unitID, 1)
	if len(events) == 0 {
		return nil, sql.ErrNoRows
	}
	return &events[0], nil
}

func (m *memStore) CreateEvent(ctx context.Context, event *models.HomologationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = m.nextEventID
	m.nextEventID++
	event.CreatedAt = m.tick()
	m.events = append(m.events, *event)
	return nil
}

// eventRepo adapts memStore to the homologation repository contract, whose
// Create collides with the school unit one.
type eventRepo struct{ *memStore }

func (r eventRepo) Create(ctx context.Context, event *models.HomologationEvent) error {
	return r.memStore.CreateEvent(ctx, event)
}
