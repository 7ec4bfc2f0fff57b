package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Person operations

func (s *Storage) CreatePerson(ctx context.Context, person *model.Person) error {
	data, err := json.Marshal(person)
	if err != nil {
		return err
	}

	// Claim the name first; SETNX makes uniqueness atomic across writers
	claimed, err := s.client.SetNX(ctx, personNameIndexKey(person.Name), string(person.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrPersonExists
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, personKey(person.ID), data, 0)
	pipe.RPush(ctx, personsListKey(), string(person.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the name so a retry can succeed
		_ = s.client.Del(ctx, personNameIndexKey(person.Name)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetPerson(ctx context.Context, id model.PersonID) (*model.Person, error) {
	data, err := s.client.Get(ctx, personKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPersonNotFound
		}
		return nil, err
	}

	var person model.Person
	if err := json.Unmarshal(data, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func (s *Storage) GetPersonByName(ctx context.Context, name string) (*model.Person, error) {
	// Look up person ID from name index
	id, err := s.client.Get(ctx, personNameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPersonNotFound
		}
		return nil, err
	}
	return s.GetPerson(ctx, model.PersonID(id))
}

func (s *Storage) ListPersons(ctx context.Context) ([]*model.Person, error) {
	ids, err := s.client.LRange(ctx, personsListKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Person{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = personKey(model.PersonID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	persons := make([]*model.Person, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var person model.Person
		if err := json.Unmarshal([]byte(str), &person); err != nil {
			return nil, err
		}
		persons = append(persons, &person)
	}
	return persons, nil
}

// Duty record operations

func (s *Storage) AppendDutyRecord(ctx context.Context, record *model.DutyRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	startIdx := dutyStartIndexKey(record.PersonID)
	start := storage.DateKey(record.StartDate)
	claimed, err := s.client.HSetNX(ctx, startIdx, start, string(record.ID)).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrDuplicateDuty
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dutyKey(record.ID), data, 0)
	pipe.ZAdd(ctx, dutiesForPersonIndexKey(record.PersonID), redis.Z{
		Score:  dateScore(record.StartDate),
		Member: string(record.ID),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		_ = s.client.HDel(ctx, startIdx, start).Err()
		return err
	}
	return nil
}

func (s *Storage) UpdateDutyRecordEnd(ctx context.Context, id model.DutyRecordID, end model.DutyEnd) error {
	record, err := s.getDutyRecord(ctx, id)
	if err != nil {
		return err
	}
	record.End = end

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, dutyKey(id), data, 0).Err()
}

func (s *Storage) DeleteDutyRecord(ctx context.Context, id model.DutyRecordID) error {
	record, err := s.getDutyRecord(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrDutyRecordNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, dutyKey(id))
	pipe.ZRem(ctx, dutiesForPersonIndexKey(record.PersonID), string(id))
	pipe.HDel(ctx, dutyStartIndexKey(record.PersonID), storage.DateKey(record.StartDate))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListDutyRecords(ctx context.Context, personID model.PersonID) ([]*model.DutyRecord, error) {
	// ZRANGE returns members ordered by score, i.e. by start date
	ids, err := s.client.ZRange(ctx, dutiesForPersonIndexKey(personID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.DutyRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = dutyKey(model.DutyRecordID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.DutyRecord, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var record model.DutyRecord
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}

func (s *Storage) getDutyRecord(ctx context.Context, id model.DutyRecordID) (*model.DutyRecord, error) {
	data, err := s.client.Get(ctx, dutyKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrDutyRecordNotFound
		}
		return nil, err
	}

	var record model.DutyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Projection operations

func (s *Storage) SaveProjection(ctx context.Context, projection *model.Projection) error {
	data, err := json.Marshal(projection)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, projectionKey(projection.PersonID), data, 0).Err()
}

func (s *Storage) GetProjection(ctx context.Context, personID model.PersonID) (*model.Projection, error) {
	data, err := s.client.Get(ctx, projectionKey(personID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProjectionNotFound
		}
		return nil, err
	}

	var projection model.Projection
	if err := json.Unmarshal(data, &projection); err != nil {
		return nil, err
	}
	return &projection, nil
}

func (s *Storage) DeleteProjection(ctx context.Context, personID model.PersonID) error {
	return s.client.Del(ctx, projectionKey(personID)).Err()
}

// Process log operations

func (s *Storage) AppendProcessLog(ctx context.Context, entry *model.ProcessLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, processLogKey(), data)
	if s.cfg.ProcessLogMaxEntries > 0 {
		pipe.LTrim(ctx, processLogKey(), 0, s.cfg.ProcessLogMaxEntries-1)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListProcessLogs(ctx context.Context, limit int) ([]*model.ProcessLog, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	values, err := s.client.LRange(ctx, processLogKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.ProcessLog, 0, len(values))
	for _, v := range values {
		var entry model.ProcessLog
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// dateScore orders dates numerically as YYYYMMDD
func dateScore(d civil.Date) float64 {
	return float64(d.Year*10000 + int(d.Month)*100 + d.Day)
}
