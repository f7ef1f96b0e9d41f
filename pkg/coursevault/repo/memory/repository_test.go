package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
	repoMemory "github.com/edupage-labs/coursevault/pkg/coursevault/repo/memory"
)

func TestRepository_ContentCRUD(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	ref := coursevault.BlobstoreRef("blob-1")
	record := &coursevault.ContentRecord{
		ID:        uuid.New(),
		Kind:      coursevault.ContentKindMaterial,
		Title:     "Notes",
		FileRef:   &ref,
		CreatedAt: time.Now().UTC(),
	}

	err := repo.CreateContent(ctx, record)
	assert.NoError(t, err)

	retrieved, err := repo.GetContent(ctx, coursevault.ContentKindMaterial, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, record.ID, retrieved.ID)
	assert.Equal(t, "Notes", retrieved.Title)

	// The same id does not exist in other partitions.
	_, err = repo.GetContent(ctx, coursevault.ContentKindUpdate, record.ID)
	assert.ErrorIs(t, err, coursevault.ErrContentNotFound)

	err = repo.DeleteContent(ctx, coursevault.ContentKindMaterial, record.ID)
	assert.NoError(t, err)

	_, err = repo.GetContent(ctx, coursevault.ContentKindMaterial, record.ID)
	assert.ErrorIs(t, err, coursevault.ErrContentNotFound)

	err = repo.DeleteContent(ctx, coursevault.ContentKindMaterial, record.ID)
	assert.ErrorIs(t, err, coursevault.ErrContentNotFound)
}

func TestRepository_ContentCopyIsolation(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	ref := coursevault.BlobstoreRef("blob-1")
	record := &coursevault.ContentRecord{
		ID:        uuid.New(),
		Kind:      coursevault.ContentKindMaterial,
		Title:     "Original Title",
		FileRef:   &ref,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateContent(ctx, record))

	// Mutating the caller's record after the insert must not leak into
	// stored state, and neither must mutating a retrieved copy.
	record.Title = "Mutated After Insert"
	record.FileRef.ID = "mutated"

	first, err := repo.GetContent(ctx, coursevault.ContentKindMaterial, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original Title", first.Title)
	assert.Equal(t, "blob-1", first.FileRef.ID)

	first.Title = "Mutated Copy"
	first.FileRef.ID = "mutated-copy"

	second, err := repo.GetContent(ctx, coursevault.ContentKindMaterial, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original Title", second.Title)
	assert.Equal(t, "blob-1", second.FileRef.ID)
}

func TestRepository_ListContent(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	base := time.Now().UTC()
	seed := []struct {
		title string
		year  string
		dept  string
		age   time.Duration
	}{
		{"Oldest", "2", "CSE", 3 * time.Hour},
		{"Middle", "2", "CSE", 2 * time.Hour},
		{"Newest", "3", "ECE", 1 * time.Hour},
	}
	for _, s := range seed {
		require.NoError(t, repo.CreateContent(ctx, &coursevault.ContentRecord{
			ID:         uuid.New(),
			Kind:       coursevault.ContentKindMaterial,
			Title:      s.title,
			Year:       s.year,
			Department: s.dept,
			CreatedAt:  base.Add(-s.age),
		}))
	}

	records, err := repo.ListContent(ctx, coursevault.ContentKindMaterial, coursevault.ContentFilter{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Newest first.
	assert.Equal(t, "Newest", records[0].Title)
	assert.Equal(t, "Middle", records[1].Title)
	assert.Equal(t, "Oldest", records[2].Title)

	records, err = repo.ListContent(ctx, coursevault.ContentKindMaterial, coursevault.ContentFilter{Year: "2", Department: "CSE"})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = repo.ListContent(ctx, coursevault.ContentKindMaterial, coursevault.ContentFilter{Department: "ECE"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Newest", records[0].Title)
}

func TestRepository_CountContent(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	n, err := repo.CountContent(ctx, coursevault.ContentKindMaterial)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateContent(ctx, &coursevault.ContentRecord{
			ID:        uuid.New(),
			Kind:      coursevault.ContentKindMaterial,
			Title:     "Notes",
			CreatedAt: time.Now().UTC(),
		}))
	}

	n, err = repo.CountContent(ctx, coursevault.ContentKindMaterial)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRepository_PeopleCRUD(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	person := &coursevault.Person{
		ID:        uuid.New(),
		Role:      coursevault.RoleStudent,
		UserID:    "STU001",
		Password:  "pw",
		Name:      "Asha Rao",
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.CreatePerson(ctx, person))

	// Same user id in the same role is a duplicate.
	err := repo.CreatePerson(ctx, &coursevault.Person{
		ID:        uuid.New(),
		Role:      coursevault.RoleStudent,
		UserID:    "STU001",
		Password:  "pw",
		Name:      "Other",
		CreatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, coursevault.ErrDuplicateUserID)

	// Same user id in another role is fine.
	err = repo.CreatePerson(ctx, &coursevault.Person{
		ID:        uuid.New(),
		Role:      coursevault.RoleFaculty,
		UserID:    "STU001",
		Password:  "pw",
		Name:      "Faculty With Same Id",
		CreatedAt: time.Now().UTC(),
	})
	assert.NoError(t, err)

	byID, err := repo.GetPerson(ctx, coursevault.RoleStudent, person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", byID.Name)

	byUserID, err := repo.GetPersonByUserID(ctx, coursevault.RoleStudent, "STU001")
	require.NoError(t, err)
	assert.Equal(t, person.ID, byUserID.ID)

	_, err = repo.GetPersonByUserID(ctx, coursevault.RoleAdmin, "STU001")
	assert.ErrorIs(t, err, coursevault.ErrPersonNotFound)

	require.NoError(t, repo.DeletePerson(ctx, coursevault.RoleStudent, person.ID))

	_, err = repo.GetPerson(ctx, coursevault.RoleStudent, person.ID)
	assert.ErrorIs(t, err, coursevault.ErrPersonNotFound)

	// The delete released the user id for reuse.
	err = repo.CreatePerson(ctx, &coursevault.Person{
		ID:        uuid.New(),
		Role:      coursevault.RoleStudent,
		UserID:    "STU001",
		Password:  "pw",
		Name:      "Reuses Freed Id",
		CreatedAt: time.Now().UTC(),
	})
	assert.NoError(t, err)
}

func TestRepository_ListPeopleSorted(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	for _, id := range []string{"STU003", "STU001", "STU002"} {
		require.NoError(t, repo.CreatePerson(ctx, &coursevault.Person{
			ID:        uuid.New(),
			Role:      coursevault.RoleStudent,
			UserID:    id,
			Password:  "pw",
			Name:      "Student " + id,
			CreatedAt: time.Now().UTC(),
		}))
	}

	people, err := repo.ListPeople(ctx, coursevault.RoleStudent, coursevault.PersonFilter{})
	require.NoError(t, err)
	require.Len(t, people, 3)
	assert.Equal(t, "STU001", people[0].UserID)
	assert.Equal(t, "STU002", people[1].UserID)
	assert.Equal(t, "STU003", people[2].UserID)
}

func TestRepository_DeletePeopleByFilter(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	seed := []struct {
		userID string
		year   string
		dept   string
	}{
		{"STU001", "4", "CSE"},
		{"STU002", "4", "CSE"},
		{"STU003", "4", "ECE"},
		{"STU004", "2", "CSE"},
	}
	for _, s := range seed {
		require.NoError(t, repo.CreatePerson(ctx, &coursevault.Person{
			ID:         uuid.New(),
			Role:       coursevault.RoleStudent,
			UserID:     s.userID,
			Password:   "pw",
			Name:       "Student " + s.userID,
			Year:       s.year,
			Department: s.dept,
			CreatedAt:  time.Now().UTC(),
		}))
	}

	removed, err := repo.DeletePeople(ctx, coursevault.RoleStudent, coursevault.PersonFilter{Year: "4", Department: "CSE"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := repo.ListPeople(ctx, coursevault.RoleStudent, coursevault.PersonFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "STU003", remaining[0].UserID)
	assert.Equal(t, "STU004", remaining[1].UserID)

	// The freed user ids can be registered again.
	require.NoError(t, repo.CreatePerson(ctx, &coursevault.Person{
		ID:        uuid.New(),
		Role:      coursevault.RoleStudent,
		UserID:    "STU001",
		Password:  "pw",
		Name:      "Readmitted",
		CreatedAt: time.Now().UTC(),
	}))

	// No match removes nothing.
	removed, err = repo.DeletePeople(ctx, coursevault.RoleStudent, coursevault.PersonFilter{Year: "9"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestRepository_Attendance(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	rows := []*coursevault.AttendanceRecord{
		{ID: uuid.New(), StudentID: "STU001", Date: "2024-07-01", Period: "1", Status: "present", Year: "2", Department: "CSE", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), StudentID: "STU001", Date: "2024-07-02", Period: "1", Status: "absent", Year: "2", Department: "CSE", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), StudentID: "STU002", Date: "2024-07-01", Period: "2", Status: "present", Year: "2", Department: "CSE", CreatedAt: time.Now().UTC()},
	}
	for _, row := range rows {
		require.NoError(t, repo.CreateAttendance(ctx, row))
	}

	records, err := repo.ListAttendance(ctx, coursevault.AttendanceFilter{StudentID: "STU001"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-07-02", records[0].Date)

	records, err = repo.ListAttendance(ctx, coursevault.AttendanceFilter{
		Year: "2", Department: "CSE", Date: "2024-07-01", Period: "1",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "STU001", records[0].StudentID)

	records, err = repo.ListAttendance(ctx, coursevault.AttendanceFilter{StudentID: "STU999"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRepository_DeleteAttendanceByFilter(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	rows := []*coursevault.AttendanceRecord{
		{ID: uuid.New(), StudentID: "STU001", Date: "2024-07-01", Period: "1", Status: "present", Year: "2", Department: "CSE", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), StudentID: "STU002", Date: "2024-07-01", Period: "1", Status: "absent", Year: "2", Department: "CSE", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), StudentID: "STU001", Date: "2024-07-01", Period: "2", Status: "present", Year: "2", Department: "CSE", CreatedAt: time.Now().UTC()},
	}
	for _, row := range rows {
		require.NoError(t, repo.CreateAttendance(ctx, row))
	}

	// Clearing one session leaves the other period untouched.
	removed, err := repo.DeleteAttendance(ctx, coursevault.AttendanceFilter{
		Year: "2", Department: "CSE", Date: "2024-07-01", Period: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	records, err := repo.ListAttendance(ctx, coursevault.AttendanceFilter{StudentID: "STU001"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].Period)

	removed, err = repo.DeleteAttendance(ctx, coursevault.AttendanceFilter{StudentID: "STU001"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestRepository_SMSLogs(t *testing.T) {
	repo := repoMemory.New()
	ctx := context.Background()

	entries := []*coursevault.SMSLog{
		{ID: uuid.New(), Recipient: "9876543210", Message: "first", Status: "sent", CreatedAt: time.Now().UTC().Add(-time.Hour)},
		{ID: uuid.New(), Recipient: "9876543210", Message: "second", Status: "sent", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), Recipient: "9123456780", Message: "other", Status: "sent", CreatedAt: time.Now().UTC()},
	}
	for _, entry := range entries {
		require.NoError(t, repo.CreateSMSLog(ctx, entry))
	}

	logs, err := repo.ListSMSLogs(ctx, coursevault.SMSFilter{Recipient: "9876543210"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// Newest first.
	assert.Equal(t, "second", logs[0].Message)
	assert.Equal(t, "first", logs[1].Message)

	logs, err = repo.ListSMSLogs(ctx, coursevault.SMSFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
