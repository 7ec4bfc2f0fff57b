package redis

import (
	"fmt"

	"github.com/mcoot/dutyledger/internal/model"
)

// Key prefix for all registry data
const keyPrefix = "dutyledger"

// personKey returns the Redis key for a Person
func personKey(id model.PersonID) string {
	return fmt.Sprintf("%s:person:%s", keyPrefix, id)
}

// personNameIndexKey returns the Redis key for the name -> person_id index
func personNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:person_name:%s", keyPrefix, name)
}

// personsListKey returns the Redis key for the LIST of person ids in registration order
func personsListKey() string {
	return fmt.Sprintf("%s:persons", keyPrefix)
}

// dutyKey returns the Redis key for a DutyRecord
func dutyKey(id model.DutyRecordID) string {
	return fmt.Sprintf("%s:duty:%s", keyPrefix, id)
}

// dutiesForPersonIndexKey returns the Redis key for the ZSET of a person's duty keys, scored by start date
func dutiesForPersonIndexKey(personID model.PersonID) string {
	return fmt.Sprintf("%s:idx:duties_for_person:%s", keyPrefix, personID)
}

// dutyStartIndexKey returns the Redis key for the HASH of start date -> duty id for a person
func dutyStartIndexKey(personID model.PersonID) string {
	return fmt.Sprintf("%s:idx:duty_start:%s", keyPrefix, personID)
}

// projectionKey returns the Redis key for a person's Projection
func projectionKey(personID model.PersonID) string {
	return fmt.Sprintf("%s:projection:%s", keyPrefix, personID)
}

// processLogKey returns the Redis key for the process log LIST (newest at the head)
func processLogKey() string {
	return fmt.Sprintf("%s:process_log", keyPrefix)
}
