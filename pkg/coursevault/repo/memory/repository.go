package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// Repository implements coursevault.Repository using in-memory storage
type Repository struct {
	mu             sync.RWMutex
	contents       map[coursevault.ContentKind]map[uuid.UUID]*coursevault.ContentRecord
	people         map[coursevault.Role]map[uuid.UUID]*coursevault.Person
	peopleByUserID map[string]uuid.UUID // "role:user_id" -> person id
	attendance     []*coursevault.AttendanceRecord
	smsLogs        []*coursevault.SMSLog
}

// New creates a new in-memory repository
func New() coursevault.Repository {
	return &Repository{
		contents:       make(map[coursevault.ContentKind]map[uuid.UUID]*coursevault.ContentRecord),
		people:         make(map[coursevault.Role]map[uuid.UUID]*coursevault.Person),
		peopleByUserID: make(map[string]uuid.UUID),
	}
}

func userIDKey(role coursevault.Role, userID string) string {
	return fmt.Sprintf("%s:%s", role, userID)
}

// copyRecord clones a record including its blob reference so callers can
// never mutate stored state.
func copyRecord(record *coursevault.ContentRecord) *coursevault.ContentRecord {
	recordCopy := *record
	if record.FileRef != nil {
		ref := *record.FileRef
		recordCopy.FileRef = &ref
	}
	return &recordCopy
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, record *coursevault.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	partition, exists := r.contents[record.Kind]
	if !exists {
		partition = make(map[uuid.UUID]*coursevault.ContentRecord)
		r.contents[record.Kind] = partition
	}

	partition[record.ID] = copyRecord(record)
	return nil
}

func (r *Repository) GetContent(ctx context.Context, kind coursevault.ContentKind, id uuid.UUID) (*coursevault.ContentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.contents[kind][id]
	if !exists {
		return nil, coursevault.ErrContentNotFound
	}

	return copyRecord(record), nil
}

func (r *Repository) ListContent(ctx context.Context, kind coursevault.ContentKind, filter coursevault.ContentFilter) ([]*coursevault.ContentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*coursevault.ContentRecord
	for _, record := range r.contents[kind] {
		if filter.Year != "" && record.Year != filter.Year {
			continue
		}
		if filter.Department != "" && record.Department != filter.Department {
			continue
		}
		result = append(result, copyRecord(record))
	}

	// Sort by created_at descending, matching the postgres repository
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) DeleteContent(ctx context.Context, kind coursevault.ContentKind, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[kind][id]; !exists {
		return coursevault.ErrContentNotFound
	}

	delete(r.contents[kind], id)
	return nil
}

func (r *Repository) CountContent(ctx context.Context, kind coursevault.ContentKind) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.contents[kind])), nil
}

// People operations

func (r *Repository) CreatePerson(ctx context.Context, person *coursevault.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userIDKey(person.Role, person.UserID)
	if _, exists := r.peopleByUserID[key]; exists {
		return coursevault.ErrDuplicateUserID
	}

	partition, exists := r.people[person.Role]
	if !exists {
		partition = make(map[uuid.UUID]*coursevault.Person)
		r.people[person.Role] = partition
	}

	personCopy := *person
	partition[person.ID] = &personCopy
	r.peopleByUserID[key] = person.ID

	return nil
}

func (r *Repository) GetPerson(ctx context.Context, role coursevault.Role, id uuid.UUID) (*coursevault.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	person, exists := r.people[role][id]
	if !exists {
		return nil, coursevault.ErrPersonNotFound
	}

	personCopy := *person
	return &personCopy, nil
}

func (r *Repository) GetPersonByUserID(ctx context.Context, role coursevault.Role, userID string) (*coursevault.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.peopleByUserID[userIDKey(role, userID)]
	if !exists {
		return nil, coursevault.ErrPersonNotFound
	}

	person := r.people[role][id]
	personCopy := *person
	return &personCopy, nil
}

func (r *Repository) ListPeople(ctx context.Context, role coursevault.Role, filter coursevault.PersonFilter) ([]*coursevault.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*coursevault.Person
	for _, person := range r.people[role] {
		if filter.Year != "" && person.Year != filter.Year {
			continue
		}
		if filter.Department != "" && person.Department != filter.Department {
			continue
		}
		personCopy := *person
		result = append(result, &personCopy)
	}

	// Sort by user id, matching the postgres repository
	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})

	return result, nil
}

func (r *Repository) DeletePerson(ctx context.Context, role coursevault.Role, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	person, exists := r.people[role][id]
	if !exists {
		return coursevault.ErrPersonNotFound
	}

	delete(r.people[role], id)
	delete(r.peopleByUserID, userIDKey(role, person.UserID))
	return nil
}

func (r *Repository) DeletePeople(ctx context.Context, role coursevault.Role, filter coursevault.PersonFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, person := range r.people[role] {
		if filter.Year != "" && person.Year != filter.Year {
			continue
		}
		if filter.Department != "" && person.Department != filter.Department {
			continue
		}
		delete(r.people[role], id)
		delete(r.peopleByUserID, userIDKey(role, person.UserID))
		removed++
	}

	return removed, nil
}

func (r *Repository) CountPeople(ctx context.Context, role coursevault.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.people[role])), nil
}

// Attendance operations

func (r *Repository) CreateAttendance(ctx context.Context, record *coursevault.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recordCopy := *record
	r.attendance = append(r.attendance, &recordCopy)
	return nil
}

func matchAttendance(record *coursevault.AttendanceRecord, filter coursevault.AttendanceFilter) bool {
	if filter.StudentID != "" && record.StudentID != filter.StudentID {
		return false
	}
	if filter.Year != "" && record.Year != filter.Year {
		return false
	}
	if filter.Department != "" && record.Department != filter.Department {
		return false
	}
	if filter.Date != "" && record.Date != filter.Date {
		return false
	}
	if filter.Period != "" && record.Period != filter.Period {
		return false
	}
	return true
}

func (r *Repository) ListAttendance(ctx context.Context, filter coursevault.AttendanceFilter) ([]*coursevault.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*coursevault.AttendanceRecord
	for _, record := range r.attendance {
		if !matchAttendance(record, filter) {
			continue
		}
		recordCopy := *record
		result = append(result, &recordCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) DeleteAttendance(ctx context.Context, filter coursevault.AttendanceFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []*coursevault.AttendanceRecord
	var removed int64
	for _, record := range r.attendance {
		if matchAttendance(record, filter) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	r.attendance = kept

	return removed, nil
}

// SMS log operations

func (r *Repository) CreateSMSLog(ctx context.Context, entry *coursevault.SMSLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entryCopy := *entry
	r.smsLogs = append(r.smsLogs, &entryCopy)
	return nil
}

func (r *Repository) ListSMSLogs(ctx context.Context, filter coursevault.SMSFilter) ([]*coursevault.SMSLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*coursevault.SMSLog
	for _, entry := range r.smsLogs {
		if filter.Recipient != "" && entry.Recipient != filter.Recipient {
			continue
		}
		entryCopy := *entry
		result = append(result, &entryCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
