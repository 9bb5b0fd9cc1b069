package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/oakmontlabs/timepunch/internal/repository"
)

type mockStore struct {
	rows map[string]*repository.Settings
}

func newMockStore() *mockStore {
	return &mockStore{rows: make(map[string]*repository.Settings)}
}

func (m *mockStore) GetSettings(_ context.Context, userID string) (*repository.Settings, error) {
	return m.rows[userID], nil
}

func (m *mockStore) CreateSettings(_ context.Context, s repository.Settings) (*repository.Settings, error) {
	if _, exists := m.rows[s.UserID]; exists {
		return nil, repository.ErrDuplicate
	}
	m.rows[s.UserID] = &s
	return &s, nil
}

func (m *mockStore) UpdateSettings(_ context.Context, userID string, hourlyRate *float64, textSize *string) (*repository.Settings, error) {
	row, ok := m.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if hourlyRate != nil {
		row.HourlyRate = *hourlyRate
	}
	if textSize != nil {
		row.TextSize = *textSize
	}
	copied := *row
	return &copied, nil
}

func (m *mockStore) GetSettingsByEmployeeCode(_ context.Context, _ string) (*repository.Settings, error) {
	return nil, nil
}

func (m *mockStore) ListSettingsMissingEmployeeCode(_ context.Context) ([]repository.Settings, error) {
	return nil, nil
}

func (m *mockStore) SetEmployeeCode(_ context.Context, _, _ string) error { return nil }

func TestGetCreatesDefaults(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	got, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HourlyRate != 0 {
		t.Errorf("HourlyRate = %v, want 0", got.HourlyRate)
	}
	if got.TextSize != "medium" {
		t.Errorf("TextSize = %q, want medium", got.TextSize)
	}
	if store.rows["u1"] == nil {
		t.Error("defaults were not persisted")
	}
}

func TestGetReturnsExisting(t *testing.T) {
	store := newMockStore()
	store.rows["u1"] = &repository.Settings{UserID: "u1", HourlyRate: 42, TextSize: "large"}
	svc := NewService(store)

	got, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HourlyRate != 42 || got.TextSize != "large" {
		t.Errorf("got %+v, want stored row back", got)
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := NewService(newMockStore())
	ctx := context.Background()

	negative := -1.0
	if _, err := svc.Update(ctx, "u1", &negative, nil); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("negative rate err = %v, want ErrInvalidRate", err)
	}
	bad := "enormous"
	if _, err := svc.Update(ctx, "u1", nil, &bad); !errors.Is(err, ErrInvalidTextSize) {
		t.Errorf("bad text size err = %v, want ErrInvalidTextSize", err)
	}
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	store := newMockStore()
	store.rows["u1"] = &repository.Settings{UserID: "u1", HourlyRate: 10, TextSize: "medium"}
	svc := NewService(store)
	ctx := context.Background()

	rate := 25.5
	got, err := svc.Update(ctx, "u1", &rate, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.HourlyRate != 25.5 || got.TextSize != "medium" {
		t.Errorf("got %+v, want rate changed and text size kept", got)
	}

	size := "small"
	got, err = svc.Update(ctx, "u1", nil, &size)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.HourlyRate != 25.5 || got.TextSize != "small" {
		t.Errorf("got %+v, want text size changed and rate kept", got)
	}
}

func TestUpdateCreatesDefaultsFirst(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	rate := 12.0
	got, err := svc.Update(context.Background(), "u1", &rate, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.HourlyRate != 12 {
		t.Errorf("HourlyRate = %v, want 12", got.HourlyRate)
	}
	if got.TextSize != "medium" {
		t.Errorf("TextSize = %q, want default medium", got.TextSize)
	}
}
