package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state
// with the store.
type Storage struct {
	mu sync.RWMutex

	persons     map[model.PersonID]model.Person
	personOrder []model.PersonID
	nameIndex   map[string]model.PersonID
	duties      map[model.DutyRecordID]model.DutyRecord
	dutyIndex   map[model.PersonID][]model.DutyRecordID
	startIndex  map[dutyStartKey]model.DutyRecordID
	projections map[model.PersonID]model.Projection
	processLogs []model.ProcessLog

	processLogLimit int
}

// Option configures a Storage
type Option func(*Storage)

// WithProcessLogLimit keeps only the newest n process log entries.
// Zero or less keeps every entry.
func WithProcessLogLimit(n int64) Option {
	return func(s *Storage) {
		if n > 0 {
			s.processLogLimit = int(n)
		}
	}
}

type dutyStartKey struct {
	personID model.PersonID
	start    string
}

// New creates a new in-memory storage instance
func New(opts ...Option) *Storage {
	s := &Storage{
		persons:     make(map[model.PersonID]model.Person),
		nameIndex:   make(map[string]model.PersonID),
		duties:      make(map[model.DutyRecordID]model.DutyRecord),
		dutyIndex:   make(map[model.PersonID][]model.DutyRecordID),
		startIndex:  make(map[dutyStartKey]model.DutyRecordID),
		projections: make(map[model.PersonID]model.Projection),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Person operations

func (s *Storage) CreatePerson(ctx context.Context, person *model.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nameIndex[person.Name]; ok {
		return model.ErrPersonExists
	}
	s.persons[person.ID] = *person
	s.nameIndex[person.Name] = person.ID
	s.personOrder = append(s.personOrder, person.ID)
	return nil
}

func (s *Storage) GetPerson(ctx context.Context, id model.PersonID) (*model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	person, ok := s.persons[id]
	if !ok {
		return nil, model.ErrPersonNotFound
	}
	return &person, nil
}

func (s *Storage) GetPersonByName(ctx context.Context, name string) (*model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, model.ErrPersonNotFound
	}
	person := s.persons[id]
	return &person, nil
}

func (s *Storage) ListPersons(ctx context.Context) ([]*model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	persons := make([]*model.Person, 0, len(s.personOrder))
	for _, id := range s.personOrder {
		person := s.persons[id]
		persons = append(persons, &person)
	}
	return persons, nil
}

// Duty record operations

func (s *Storage) AppendDutyRecord(ctx context.Context, record *model.DutyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dutyStartKey{personID: record.PersonID, start: storage.DateKey(record.StartDate)}
	if _, ok := s.startIndex[key]; ok {
		return model.ErrDuplicateDuty
	}
	s.duties[record.ID] = *record
	s.startIndex[key] = record.ID

	ids := append(s.dutyIndex[record.PersonID], record.ID)
	sort.SliceStable(ids, func(i, j int) bool {
		return s.duties[ids[i]].StartDate.Before(s.duties[ids[j]].StartDate)
	})
	s.dutyIndex[record.PersonID] = ids
	return nil
}

func (s *Storage) UpdateDutyRecordEnd(ctx context.Context, id model.DutyRecordID, end model.DutyEnd) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.duties[id]
	if !ok {
		return model.ErrDutyRecordNotFound
	}
	record.End = end
	s.duties[id] = record
	return nil
}

func (s *Storage) DeleteDutyRecord(ctx context.Context, id model.DutyRecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.duties[id]
	if !ok {
		return nil
	}
	delete(s.duties, id)
	delete(s.startIndex, dutyStartKey{personID: record.PersonID, start: storage.DateKey(record.StartDate)})

	ids := s.dutyIndex[record.PersonID]
	for i, existing := range ids {
		if existing == id {
			s.dutyIndex[record.PersonID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) ListDutyRecords(ctx context.Context, personID model.PersonID) ([]*model.DutyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.dutyIndex[personID]
	records := make([]*model.DutyRecord, 0, len(ids))
	for _, id := range ids {
		record := s.duties[id]
		records = append(records, &record)
	}
	return records, nil
}

// Projection operations

func (s *Storage) SaveProjection(ctx context.Context, projection *model.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projections[projection.PersonID] = copyProjection(*projection)
	return nil
}

func (s *Storage) GetProjection(ctx context.Context, personID model.PersonID) (*model.Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projection, ok := s.projections[personID]
	if !ok {
		return nil, model.ErrProjectionNotFound
	}
	result := copyProjection(projection)
	return &result, nil
}

func (s *Storage) DeleteProjection(ctx context.Context, personID model.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projections, personID)
	return nil
}

// Process log operations

func (s *Storage) AppendProcessLog(ctx context.Context, entry *model.ProcessLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processLogs = append(s.processLogs, *entry)
	if limit := s.processLogLimit; limit > 0 && len(s.processLogs) > limit {
		n := copy(s.processLogs, s.processLogs[len(s.processLogs)-limit:])
		clear(s.processLogs[n:])
		s.processLogs = s.processLogs[:n]
	}
	return nil
}

func (s *Storage) ListProcessLogs(ctx context.Context, limit int) ([]*model.ProcessLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.processLogs) {
		limit = len(s.processLogs)
	}
	entries := make([]*model.ProcessLog, 0, limit)
	for i := len(s.processLogs) - 1; i >= 0 && len(entries) < limit; i-- {
		entry := s.processLogs[i]
		entries = append(entries, &entry)
	}
	return entries, nil
}

// copyProjection detaches the date pointers from the caller's value
func copyProjection(p model.Projection) model.Projection {
	if p.CareerStartDate != nil {
		d := *p.CareerStartDate
		p.CareerStartDate = &d
	}
	if p.CareerEndDate != nil {
		d := *p.CareerEndDate
		p.CareerEndDate = &d
	}
	return p
}
